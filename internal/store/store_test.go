package store

import (
	"sync"
	"testing"
	"time"
)

// recordingPersister counts SaveProgress calls per book.
type recordingPersister struct {
	mu    sync.Mutex
	calls []string
}

func (p *recordingPersister) SaveProgress(bookID string) {
	p.mu.Lock()
	p.calls = append(p.calls, bookID)
	p.mu.Unlock()
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestStore(t *testing.T) {
	t.Run("Initial state is empty and unloaded", func(t *testing.T) {
		s := New(nil)

		if s.Loaded() {
			t.Error("new store should not be loaded")
		}
		if got := s.Pages("book-1"); got != 0 {
			t.Errorf("expected 0 pages for unknown book, got %d", got)
		}
		if n := len(s.Snapshot()); n != 0 {
			t.Errorf("expected empty snapshot, got %d entries", n)
		}
	})

	t.Run("Set applies without persistence", func(t *testing.T) {
		p := &recordingPersister{}
		s := New(p)

		s.Dispatch(Set{BookID: "book-1", Pages: 42})

		if got := s.Pages("book-1"); got != 42 {
			t.Errorf("expected 42 pages, got %d", got)
		}

		time.Sleep(20 * time.Millisecond)
		if p.count() != 0 {
			t.Errorf("Set triggered %d persistence calls", p.count())
		}
	})

	t.Run("Update applies and schedules persistence", func(t *testing.T) {
		p := &recordingPersister{}
		s := New(p)

		s.Dispatch(Update{BookID: "book-1", Pages: 10})

		if got := s.Pages("book-1"); got != 10 {
			t.Errorf("expected 10 pages, got %d", got)
		}

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) && p.count() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		if p.count() != 1 {
			t.Fatalf("expected 1 persistence call, got %d", p.count())
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.calls[0] != "book-1" {
			t.Errorf("persisted wrong book: %s", p.calls[0])
		}
	})

	t.Run("Update with nil persister does not panic", func(t *testing.T) {
		s := New(nil)
		s.Dispatch(Update{BookID: "book-1", Pages: 5})

		if got := s.Pages("book-1"); got != 5 {
			t.Errorf("expected 5 pages, got %d", got)
		}
	})

	t.Run("Load replaces state and sets loaded", func(t *testing.T) {
		s := New(nil)
		s.Dispatch(Set{BookID: "stale", Pages: 99})

		s.Dispatch(Load{Snapshot: map[string]int{"book-1": 30, "book-2": 0}})

		if !s.Loaded() {
			t.Error("store should be loaded after Load")
		}
		if got := s.Pages("book-1"); got != 30 {
			t.Errorf("expected 30 pages for book-1, got %d", got)
		}
		if got := s.Pages("book-2"); got != 0 {
			t.Errorf("expected 0 pages for book-2, got %d", got)
		}
		if got := s.Pages("stale"); got != 0 {
			t.Errorf("expected stale entry to be dropped, got %d", got)
		}
	})

	t.Run("Load copies the snapshot", func(t *testing.T) {
		s := New(nil)
		snapshot := map[string]int{"book-1": 10}
		s.Dispatch(Load{Snapshot: snapshot})

		snapshot["book-1"] = 999
		if got := s.Pages("book-1"); got != 10 {
			t.Errorf("store state aliased the caller's map: got %d", got)
		}
	})

	t.Run("Update then Set with same value is idempotent", func(t *testing.T) {
		p := &recordingPersister{}
		s := New(p)

		s.Dispatch(Update{BookID: "book-1", Pages: 42})
		s.Dispatch(Set{BookID: "book-1", Pages: 42})
		s.Dispatch(Set{BookID: "book-1", Pages: 42})

		if got := s.Pages("book-1"); got != 42 {
			t.Errorf("expected 42 pages, got %d", got)
		}
	})

	t.Run("Snapshot is detached from store state", func(t *testing.T) {
		s := New(nil)
		s.Dispatch(Set{BookID: "book-1", Pages: 1})

		snap := s.Snapshot()
		snap["book-1"] = 50

		if got := s.Pages("book-1"); got != 1 {
			t.Errorf("snapshot mutation leaked into store: got %d", got)
		}
	})
}
