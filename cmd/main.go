package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/broadcast"
	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/remote"
	"github.com/AnouckGaloppin/BookMark/internal/repositories"
	"github.com/AnouckGaloppin/BookMark/internal/services"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	catalog := services.NewCatalogClient(
		config.Catalog.OpenLibraryURL,
		config.Catalog.GoogleBooksURL,
		config.Catalog.GoogleAPIKey,
		config.Catalog.RatePerSecond,
		nil,
	)

	var auth *services.AuthClient
	var storage services.BlobStore
	if config.Remote.URL != "" {
		auth = services.NewAuthClient(config.Remote.URL+config.Remote.AuthPath, config.Remote.APIKey, nil)
	}
	if config.Remote.StorageURL != "" {
		tokenFn := func() string {
			if auth != nil {
				return auth.AccessToken()
			}
			return ""
		}
		storage = services.NewStorageClient(config.Remote.StorageURL, config.Remote.APIKey, tokenFn, nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  "config.toml",
		SessionPath: sessionPath(logger),
		Catalog:     catalog,
		Auth:        auth,
		Storage:     storage,
		Broker:      broadcast.NewBroker(),
		HTTPClient:  http.DefaultClient,
		Logger:      logger,
	})
	runner.loadSession()

	if config.Remote.URL != "" {
		client := remote.NewClient(config.Remote.URL+"/rest/v1", config.Remote.APIKey, nil)
		if runner.session != nil && runner.session.Token != nil {
			client.SetToken(runner.session.Token.AccessToken)
		}
		runner.books = client
		runner.progress = client
		runner.history = client
	} else if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		progress := repositories.NewProgressRepository(db)
		runner.books = &localBooks{repo: repositories.NewBookRepository(db)}
		runner.progress = progress
		runner.history = progress
	} else {
		logger.Warn("no backend available, run 'bookmark setup' first", "error", err)
	}

	app := &cli.Command{
		Name:     "bookmark",
		Usage:    "Track reading progress across your book shelf",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// sessionPath returns the per-user session file location, or empty when no
// home directory exists (sessions then last for one invocation).
func sessionPath(logger *log.Logger) string {
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("no home directory, session will not persist", "error", err)
		return ""
	}

	dir := filepath.Join(home, ".bookmark")
	if err := os.MkdirAll(dir, 0700); err != nil {
		logger.Warn("failed to create session directory", "error", err)
		return ""
	}
	return filepath.Join(dir, "session.json")
}

// localBooks adapts the local cache repository to the remote client's shelf
// surface for offline use.
type localBooks struct {
	repo *repositories.BookRepository
}

func (l *localBooks) ListBooks(ctx context.Context, userID string) ([]models.Book, error) {
	return l.repo.List(userID)
}

func (l *localBooks) GetBook(ctx context.Context, bookID string) (*models.Book, error) {
	return l.repo.Get(bookID)
}

func (l *localBooks) InsertBook(ctx context.Context, book models.Book) error {
	return l.repo.Create(&book)
}

func (l *localBooks) UpdateBookTotalPages(ctx context.Context, bookID string, totalPages int) error {
	return l.repo.UpdateTotalPages(bookID, totalPages)
}

func (l *localBooks) DeleteBook(ctx context.Context, bookID string) error {
	return l.repo.Delete(bookID)
}
