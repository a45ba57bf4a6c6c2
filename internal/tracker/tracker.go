package tracker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/AnouckGaloppin/BookMark/internal/broadcast"
	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
	"github.com/AnouckGaloppin/BookMark/internal/store"
)

// Tracker is the edit boundary for reading progress.
//
// A user edit flows: validate against the book's total pages, apply an
// Update transition (which schedules persistence), then broadcast the change
// so sibling tabs can apply it without re-persisting.
type Tracker struct {
	store    *store.Store
	handle   *broadcast.Handle
	identity IdentityProvider
	logger   *log.Logger
}

// NewTracker creates a Tracker. The broadcast handle may be nil when
// cross-tab sync is unavailable; updates then stay local to this tab.
func NewTracker(st *store.Store, handle *broadcast.Handle, identity IdentityProvider, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Tracker{
		store:    st,
		handle:   handle,
		identity: identity,
		logger:   logger,
	}
}

// UpdateProgress records a user edit of the pages-read for book.
//
// Validation happens before any state mutation: a rejected edit leaves the
// store untouched. Persistence and broadcast are both fire-and-forget.
func (t *Tracker) UpdateProgress(ctx context.Context, book models.Book, pages int) error {
	if pages < 0 {
		return fmt.Errorf("%w: pages read must be non-negative", shared.ErrInvalidInput)
	}
	if book.TotalPages > 0 && pages > book.TotalPages {
		return fmt.Errorf("%w: %d > %d", shared.ErrPagesExceeded, pages, book.TotalPages)
	}

	t.store.Dispatch(store.Update{BookID: book.ID, Pages: pages})

	if t.handle != nil {
		userID := t.identity.CurrentUserID(ctx)
		if userID != "" {
			t.handle.Send(broadcast.ProgressUpdateMessage(book.ID, pages, userID))
			t.logger.Debug("progress updated", "book", book.ID, "pages", pages, "tab", t.handle.TabID())
		}
	}

	return nil
}

// Pages returns the locally displayed pages-read for a book.
func (t *Tracker) Pages(bookID string) int {
	return t.store.Pages(bookID)
}

// RequestSync asks sibling tabs for their progress snapshot.
//
// Useful before the first bulk load completes; a sibling with loaded state
// answers with a snapshot the cross-tab adapter applies locally.
func (t *Tracker) RequestSync(ctx context.Context) {
	if t.handle == nil {
		return
	}

	userID := t.identity.CurrentUserID(ctx)
	if userID == "" {
		return
	}

	t.handle.Send(broadcast.SyncRequestMessage(userID))
}
