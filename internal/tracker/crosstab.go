package tracker

import (
	"github.com/charmbracelet/log"

	"github.com/AnouckGaloppin/BookMark/internal/broadcast"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
	"github.com/AnouckGaloppin/BookMark/internal/store"
)

// CrossTabAdapter mirrors progress changes between sibling tabs.
//
// Incoming progress updates are applied with a Set transition, never Update,
// so a change already persisted by its origin tab is never persisted again
// here. The adapter also answers sync requests from tabs that have not yet
// completed their bulk load.
type CrossTabAdapter struct {
	store  *store.Store
	handle *broadcast.Handle
	logger *log.Logger
}

// NewCrossTabAdapter wires the adapter's callback into the broadcast handle.
// Messages arrive on the handle's dispatch goroutine until Detach is called.
func NewCrossTabAdapter(st *store.Store, handle *broadcast.Handle, logger *log.Logger) *CrossTabAdapter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &CrossTabAdapter{
		store:  st,
		handle: handle,
		logger: logger,
	}
	handle.OnMessage(a.receive)

	return a
}

func (a *CrossTabAdapter) receive(msg broadcast.Message) {
	switch msg.Type {
	case broadcast.ProgressUpdate:
		a.store.Dispatch(store.Set{BookID: msg.BookID, Pages: msg.Pages})
		a.logger.Debug("applied progress from sibling tab", "book", msg.BookID, "pages", msg.Pages, "tab", msg.TabID)

	case broadcast.SyncRequest:
		if !a.store.Loaded() {
			return
		}
		a.handle.Send(broadcast.SyncResponseMessage(a.store.Snapshot(), msg.UserID))

	case broadcast.SyncResponse:
		if a.store.Loaded() {
			return
		}
		for bookID, pages := range msg.Progress {
			a.store.Dispatch(store.Set{BookID: bookID, Pages: pages})
		}
		a.logger.Debug("applied sync snapshot from sibling tab", "books", len(msg.Progress), "tab", msg.TabID)
	}
}

// Detach stops the adapter from reacting to further messages. The handle
// stays open; other components may still use it to send.
func (a *CrossTabAdapter) Detach() {
	a.handle.OnMessage(nil)
}
