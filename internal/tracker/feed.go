package tracker

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/remote"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// BookFeed maintains the user's shelf, kept current by realtime row-change
// notifications.
//
// Inserts append and re-sort, updates merge by ID and re-sort, deletes remove
// by ID. The shelf is always presented in case-insensitive title order.
type BookFeed struct {
	mu     sync.RWMutex
	books  []models.Book
	logger *log.Logger
}

// NewBookFeed creates a BookFeed seeded with an initial shelf.
func NewBookFeed(initial []models.Book, logger *log.Logger) *BookFeed {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	books := make([]models.Book, len(initial))
	copy(books, initial)
	models.SortBooks(books)

	return &BookFeed{books: books, logger: logger}
}

// Books returns a copy of the current shelf in title order.
func (f *BookFeed) Books() []models.Book {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Book, len(f.books))
	copy(out, f.books)
	return out
}

// Apply folds one row-change notification into the shelf.
//
// Unknown event kinds and undecodable rows are logged and skipped; a single
// malformed notification never breaks the feed.
func (f *BookFeed) Apply(event remote.ChangeEvent) {
	switch event.Event {
	case remote.EventInsert:
		var book models.Book
		if err := event.DecodeNew(&book); err != nil {
			f.logger.Warn("undecodable insert notification", "error", err)
			return
		}
		f.insert(book)

	case remote.EventUpdate:
		var book models.Book
		if err := event.DecodeNew(&book); err != nil {
			f.logger.Warn("undecodable update notification", "error", err)
			return
		}
		f.update(book)

	case remote.EventDelete:
		var book models.Book
		if err := event.DecodeOld(&book); err != nil {
			f.logger.Warn("undecodable delete notification", "error", err)
			return
		}
		f.remove(book.ID)

	default:
		f.logger.Debug("ignoring unknown change event", "event", event.Event)
	}
}

// Run applies events from the subscription until its channel closes, then
// reports any terminal feed error. onChange, when non-nil, fires after every
// applied event.
func (f *BookFeed) Run(sub *remote.Subscription, onChange func()) error {
	for event := range sub.Events() {
		f.Apply(event)
		if onChange != nil {
			onChange()
		}
	}

	select {
	case err := <-sub.Errors():
		return err
	default:
		return nil
	}
}

func (f *BookFeed) insert(book models.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.books {
		if existing.ID == book.ID {
			return
		}
	}

	f.books = append(f.books, book)
	models.SortBooks(f.books)
	f.logger.Debug("book added to shelf", "book", book.ID, "title", book.Title)
}

func (f *BookFeed) update(book models.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.books {
		if existing.ID == book.ID {
			f.books[i] = book
			models.SortBooks(f.books)
			return
		}
	}

	// An update for a book this shelf has never seen behaves as an insert.
	f.books = append(f.books, book)
	models.SortBooks(f.books)
}

func (f *BookFeed) remove(bookID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.books {
		if existing.ID == bookID {
			f.books = append(f.books[:i], f.books[i+1:]...)
			f.logger.Debug("book removed from shelf", "book", bookID)
			return
		}
	}
}
