// package store implements the in-memory progress state machine.
//
// State is a map of book ID to pages read plus a loaded flag, mutated only
// through [Store.Dispatch] with one of three action variants:
//
//   - [Set] applies a value locally with no side effects. Cross-tab and
//     remote-originated updates use it so they never re-trigger persistence.
//   - [Update] applies a value locally and schedules asynchronous persistence
//     through the injected [Persister]. Direct user edits use it.
//   - [Load] replaces the whole map with an authoritative snapshot and marks
//     the store loaded.
//
// Transitions are serialized; reads observe the most recent completed
// transition. Persistence triggered by [Update] is fire-and-forget and never
// blocks the transition itself.
package store

import "sync"

// Persister schedules a durable write for one book's progress.
//
// Implementations must read the pages value from the store at the moment the
// remote write is issued, not from a captured copy, so an in-flight older
// save can never clobber a newer locally-displayed value.
type Persister interface {
	SaveProgress(bookID string)
}

// Action is one of the closed set of state transitions: [Set], [Update], [Load].
type Action interface {
	isAction()
}

// Set applies a pages-read value with no persistence side effect.
type Set struct {
	BookID string
	Pages  int
}

// Update applies a pages-read value and schedules persistence.
type Update struct {
	BookID string
	Pages  int
}

// Load replaces the entire progress map and marks the store loaded.
type Load struct {
	Snapshot map[string]int
}

func (Set) isAction()    {}
func (Update) isAction() {}
func (Load) isAction()   {}

// Store holds the per-tab progress state.
type Store struct {
	mu        sync.RWMutex
	progress  map[string]int
	loaded    bool
	persister Persister
}

// New creates an empty, unloaded Store.
//
// The persister may be nil, in which case [Update] behaves like [Set]; the
// reconciliation layer installs one via [Store.SetPersister] once the remote
// backend is wired up.
func New(persister Persister) *Store {
	return &Store{
		progress:  make(map[string]int),
		persister: persister,
	}
}

// SetPersister installs the persister invoked by [Update] transitions.
func (s *Store) SetPersister(p Persister) {
	s.mu.Lock()
	s.persister = p
	s.mu.Unlock()
}

// Dispatch applies a single transition.
//
// Transitions are applied synchronously and never interleave; the
// persistence side effect of [Update] runs on its own goroutine after the
// state change is visible.
func (s *Store) Dispatch(action Action) {
	var persister Persister
	var saveBook string

	s.mu.Lock()
	switch a := action.(type) {
	case Set:
		s.progress[a.BookID] = a.Pages
	case Update:
		s.progress[a.BookID] = a.Pages
		persister = s.persister
		saveBook = a.BookID
	case Load:
		snapshot := make(map[string]int, len(a.Snapshot))
		for bookID, pages := range a.Snapshot {
			snapshot[bookID] = pages
		}
		s.progress = snapshot
		s.loaded = true
	}
	s.mu.Unlock()

	if persister != nil {
		go persister.SaveProgress(saveBook)
	}
}

// Pages returns the current pages-read for a book, defaulting to 0.
func (s *Store) Pages(bookID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress[bookID]
}

// Loaded reports whether an authoritative bulk load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current progress map.
func (s *Store) Snapshot() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]int, len(s.progress))
	for bookID, pages := range s.progress {
		snapshot[bookID] = pages
	}
	return snapshot
}
