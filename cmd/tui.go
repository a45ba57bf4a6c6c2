package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/broadcast"
	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/remote"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
	"github.com/AnouckGaloppin/BookMark/internal/store"
	"github.com/AnouckGaloppin/BookMark/internal/tracker"
	"github.com/AnouckGaloppin/BookMark/internal/ui"
)

// TUI launches the interactive shelf.
//
// The view holds its own progress store, bulk-loaded from the backend and
// kept current by the cross-tab channel and, when configured, the realtime
// book feed.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	// Stderr output would corrupt the alt screen while the TUI runs.
	logger := r.logger
	if fileLogger, err := shared.NewFileLogger(filepath.Join(os.TempDir(), "bookmark-tui.log")); err == nil {
		logger = fileLogger
	}

	st := store.New(nil)
	rec := tracker.NewReconciler(r.progress, st, r, logger)
	st.SetPersister(rec)
	if err := rec.LoadAll(ctx); err != nil {
		logger.Warn("starting with empty progress", "error", err)
	}

	updates := make(chan struct{}, 1)
	tick := func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	var sendHandle *broadcast.Handle
	if r.broker != nil {
		channel := r.config.Sync.ChannelName

		sendHandle, err = r.broker.Open(channel)
		if err != nil {
			return fmt.Errorf("failed to join sync channel: %w", err)
		}
		defer sendHandle.Close()

		mirrorHandle, err := r.broker.Open(channel)
		if err != nil {
			return fmt.Errorf("failed to join sync channel: %w", err)
		}
		defer mirrorHandle.Close()
		tracker.NewCrossTabAdapter(st, mirrorHandle, logger)

		notifyHandle, err := r.broker.Open(channel)
		if err != nil {
			return fmt.Errorf("failed to join sync channel: %w", err)
		}
		defer notifyHandle.Close()
		notifyHandle.OnMessage(func(broadcast.Message) { tick() })
	}

	tr := tracker.NewTracker(st, sendHandle, r, logger)

	loadBooks := func(ctx context.Context) ([]models.Book, error) {
		return r.books.ListBooks(ctx, userID)
	}

	if r.config.Remote.RealtimeURL != "" {
		feed, err := r.openBookFeed(ctx, userID, tick, logger)
		if err != nil {
			logger.Warn("realtime feed unavailable, shelf updates on refresh only", "error", err)
		} else {
			loadBooks = func(context.Context) ([]models.Book, error) {
				return feed.Books(), nil
			}
		}
	}

	model := ui.NewModel(ctx, tr, loadBooks, updates)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

// openBookFeed seeds a book feed from the backend, then subscribes to the
// realtime change stream and applies row changes, ticking the view after
// each one.
func (r *Runner) openBookFeed(ctx context.Context, userID string, tick func(), logger *log.Logger) (*tracker.BookFeed, error) {
	books, err := r.books.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	client := remote.NewRealtimeClient(r.config.Remote.RealtimeURL, r.config.Remote.APIKey, nil)
	sub, err := client.Subscribe(ctx, "public:books", "user_id=eq."+userID)
	if err != nil {
		return nil, err
	}

	feed := tracker.NewBookFeed(books, logger)
	go func() {
		defer sub.Unsubscribe()
		if err := feed.Run(sub, tick); err != nil {
			logger.Warn("realtime feed closed", "error", err)
		}
	}()

	return feed, nil
}
