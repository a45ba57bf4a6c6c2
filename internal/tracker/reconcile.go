package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
	"github.com/AnouckGaloppin/BookMark/internal/store"
)

// ProgressBackend is the slice of the record store the reconciler consumes.
//
// Both the remote REST client and the local SQLite cache implement it.
type ProgressBackend interface {
	LoadProgress(ctx context.Context, userID string) (map[string]int, error)
	UpsertProgress(ctx context.Context, entry models.ProgressEntry) error
	HistoryForDay(ctx context.Context, bookID, userID string, day time.Time) (*models.ProgressHistoryRecord, error)
	UpdateHistory(ctx context.Context, id string, pages int) error
	InsertHistory(ctx context.Context, rec models.ProgressHistoryRecord) error
}

// IdentityProvider yields the current user, or empty when no session exists.
type IdentityProvider interface {
	CurrentUserID(ctx context.Context) string
}

// Reconciler keeps the per-tab progress store and the remote store eventually
// consistent.
//
// It implements [store.Persister], so Update transitions dispatched into the
// store schedule writes through it without blocking.
type Reconciler struct {
	backend  ProgressBackend
	store    *store.Store
	identity IdentityProvider
	logger   *log.Logger
	now      func() time.Time
}

// NewReconciler creates a Reconciler over the given backend and store.
func NewReconciler(backend ProgressBackend, st *store.Store, identity IdentityProvider, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Reconciler{
		backend:  backend,
		store:    st,
		identity: identity,
		logger:   logger,
		now:      time.Now,
	}
}

// LoadAll fetches the authoritative progress state for the current user and
// bulk-loads it into the store.
//
// Without an authenticated identity this is a no-op, not an error. On a
// failed query the store is left untouched; the error is returned so callers
// can surface a non-fatal warning.
func (r *Reconciler) LoadAll(ctx context.Context) error {
	userID := r.identity.CurrentUserID(ctx)
	if userID == "" {
		r.logger.Debug("no authenticated user, skipping progress load")
		return nil
	}

	progress, err := r.backend.LoadProgress(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to load progress", "user", userID, "error", err)
		return fmt.Errorf("failed to load progress: %w", err)
	}

	r.store.Dispatch(store.Load{Snapshot: progress})
	r.logger.Debug("loaded progress", "user", userID, "books", len(progress))
	return nil
}

// Persist writes the current pages-read for one book and maintains the day's
// history record.
//
// The current-progress upsert is last-write-wins. The history row for today
// is only ever raised: an existing record is overwritten when the new value
// is strictly greater, left alone otherwise, and created when absent. The
// caller's local state is never rolled back on failure.
func (r *Reconciler) Persist(ctx context.Context, bookID string, pages int, userID string) error {
	if userID == "" {
		return nil
	}

	entry := models.ProgressEntry{BookID: bookID, UserID: userID, PagesRead: pages}
	if err := r.backend.UpsertProgress(ctx, entry); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	today := r.now()
	existing, err := r.backend.HistoryForDay(ctx, bookID, userID, today)
	if err != nil {
		return fmt.Errorf("failed to check progress history: %w", err)
	}

	if existing != nil {
		if pages > existing.PagesRead {
			if err := r.backend.UpdateHistory(ctx, existing.ID, pages); err != nil {
				return fmt.Errorf("failed to update progress history: %w", err)
			}
		}
		return nil
	}

	rec := models.ProgressHistoryRecord{
		BookID:     bookID,
		UserID:     userID,
		PagesRead:  pages,
		RecordedAt: today,
	}
	if err := r.backend.InsertHistory(ctx, rec); err != nil {
		return fmt.Errorf("failed to record progress history: %w", err)
	}

	return nil
}

// SaveProgress implements [store.Persister].
//
// The pages value is read from the store here, at invocation time, so an
// older in-flight save can never persist a value the user has already
// replaced.
func (r *Reconciler) SaveProgress(bookID string) {
	ctx := context.Background()

	userID := r.identity.CurrentUserID(ctx)
	if userID == "" {
		return
	}

	pages := r.store.Pages(bookID)
	if err := r.Persist(ctx, bookID, pages, userID); err != nil {
		r.logger.Warn("progress not persisted, local value kept", "book", bookID, "pages", pages, "error", err)
	}
}
