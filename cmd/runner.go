package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/broadcast"
	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/services"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
	"github.com/AnouckGaloppin/BookMark/internal/tracker"
)

// BookBackend is the slice of the record store covering shelf management.
//
// The remote client implements it directly; in offline mode a thin adapter
// over the local repositories provides the same surface.
type BookBackend interface {
	ListBooks(ctx context.Context, userID string) ([]models.Book, error)
	GetBook(ctx context.Context, bookID string) (*models.Book, error)
	InsertBook(ctx context.Context, book models.Book) error
	UpdateBookTotalPages(ctx context.Context, bookID string, totalPages int) error
	DeleteBook(ctx context.Context, bookID string) error
}

// HistoryBackend reads the full dated history for one book.
type HistoryBackend interface {
	History(ctx context.Context, bookID, userID string) ([]models.ProgressHistoryRecord, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	sessionPath string
	books       BookBackend
	progress    tracker.ProgressBackend
	history     HistoryBackend
	catalog     services.Catalog
	auth        *services.AuthClient
	storage     services.BlobStore
	broker      *broadcast.Broker
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer

	session *services.Session
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	SessionPath string
	Books       BookBackend
	Progress    tracker.ProgressBackend
	History     HistoryBackend
	Catalog     services.Catalog
	Auth        *services.AuthClient
	Storage     services.BlobStore
	Broker      *broadcast.Broker
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		sessionPath: opts.SessionPath,
		books:       opts.Books,
		progress:    opts.Progress,
		history:     opts.History,
		catalog:     opts.Catalog,
		auth:        opts.Auth,
		storage:     opts.Storage,
		broker:      opts.Broker,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, booksCommand, progressCommand, profileCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// userID returns the signed-in user, preferring a live auth session over the
// one restored from disk.
func (r *Runner) userID(ctx context.Context) string {
	if r.auth != nil {
		if id := r.auth.CurrentUserID(ctx); id != "" {
			return id
		}
	}
	if r.session != nil {
		return r.session.UserID
	}
	return ""
}

// requireUser is userID for commands that cannot proceed anonymously.
func (r *Runner) requireUser(ctx context.Context) (string, error) {
	id := r.userID(ctx)
	if id == "" {
		return "", fmt.Errorf("%w: run 'bookmark auth login' first", shared.ErrNotAuthenticated)
	}
	return id, nil
}

// CurrentUserID implements [tracker.IdentityProvider].
func (r *Runner) CurrentUserID(ctx context.Context) string {
	return r.userID(ctx)
}

// saveSession persists the session so later invocations stay signed in.
func (r *Runner) saveSession(session *services.Session) error {
	if r.sessionPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(r.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	r.session = session
	return nil
}

// loadSession restores a previously saved session. A missing or expired
// session file leaves the runner signed out without error.
func (r *Runner) loadSession() {
	if r.sessionPath == "" {
		return
	}

	data, err := os.ReadFile(r.sessionPath)
	if err != nil {
		return
	}

	var session services.Session
	if err := json.Unmarshal(data, &session); err != nil {
		r.logger.Warn("ignoring unreadable session file", "path", r.sessionPath, "error", err)
		return
	}
	if session.Token != nil && !session.Token.Expiry.IsZero() && session.Token.Expiry.Before(time.Now()) {
		r.logger.Debug("stored session expired", "expiry", session.Token.Expiry)
		return
	}

	r.session = &session
}

// clearSession removes the stored session.
func (r *Runner) clearSession() {
	r.session = nil
	if r.sessionPath != "" {
		os.Remove(r.sessionPath)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
