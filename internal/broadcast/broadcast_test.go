package broadcast

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// collect registers a callback that appends every received message to a slice.
func collect(h *Handle) (*sync.Mutex, *[]Message) {
	var mu sync.Mutex
	msgs := []Message{}
	h.OnMessage(func(m Message) {
		mu.Lock()
		msgs = append(msgs, m)
		mu.Unlock()
	})
	return &mu, &msgs
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBroker(t *testing.T) {
	t.Run("Open generates distinct tab IDs", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		a, err := broker.Open("booktracker-progress")
		if err != nil {
			t.Fatalf("failed to open handle: %v", err)
		}
		b, err := broker.Open("booktracker-progress")
		if err != nil {
			t.Fatalf("failed to open handle: %v", err)
		}

		if a.TabID() == b.TabID() {
			t.Errorf("expected distinct tab IDs, both were %s", a.TabID())
		}
		if !strings.HasPrefix(a.TabID(), "tab_") {
			t.Errorf("unexpected tab ID format: %s", a.TabID())
		}
	})

	t.Run("Open fails on nil broker", func(t *testing.T) {
		var broker *Broker
		if _, err := broker.Open("booktracker-progress"); err == nil {
			t.Fatal("expected error opening handle on nil broker")
		}
	})

	t.Run("Open fails on closed broker", func(t *testing.T) {
		broker := NewBroker()
		broker.Close()

		if _, err := broker.Open("booktracker-progress"); err == nil {
			t.Fatal("expected error opening handle on closed broker")
		}
	})

	t.Run("Sender never receives its own message", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sender, _ := broker.Open("booktracker-progress")
		other, _ := broker.Open("booktracker-progress")

		senderMu, senderMsgs := collect(sender)
		otherMu, otherMsgs := collect(other)

		sender.Send(ProgressUpdateMessage("book-1", 42, "user-1"))

		waitFor(t, func() bool {
			otherMu.Lock()
			defer otherMu.Unlock()
			return len(*otherMsgs) == 1
		})

		senderMu.Lock()
		defer senderMu.Unlock()
		if len(*senderMsgs) != 0 {
			t.Errorf("sender received %d of its own messages", len(*senderMsgs))
		}
	})

	t.Run("Message fans out to every other handle", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sender, _ := broker.Open("booktracker-progress")

		receivers := make([]*Handle, 3)
		locks := make([]*sync.Mutex, 3)
		inboxes := make([]*[]Message, 3)
		for i := range receivers {
			receivers[i], _ = broker.Open("booktracker-progress")
			locks[i], inboxes[i] = collect(receivers[i])
		}

		sender.Send(ProgressUpdateMessage("book-1", 7, "user-1"))

		for i := range receivers {
			i := i
			waitFor(t, func() bool {
				locks[i].Lock()
				defer locks[i].Unlock()
				return len(*inboxes[i]) == 1
			})

			locks[i].Lock()
			got := (*inboxes[i])[0]
			locks[i].Unlock()

			if got.BookID != "book-1" || got.Pages != 7 {
				t.Errorf("receiver %d got %+v", i, got)
			}
			if got.TabID != sender.TabID() {
				t.Errorf("receiver %d got message stamped %s, want %s", i, got.TabID, sender.TabID())
			}
		}
	})

	t.Run("Channels are isolated by name", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sender, _ := broker.Open("booktracker-progress")
		stranger, _ := broker.Open("another-channel")
		sibling, _ := broker.Open("booktracker-progress")

		strangerMu, strangerMsgs := collect(stranger)
		siblingMu, siblingMsgs := collect(sibling)

		sender.Send(ProgressUpdateMessage("book-1", 3, "user-1"))

		waitFor(t, func() bool {
			siblingMu.Lock()
			defer siblingMu.Unlock()
			return len(*siblingMsgs) == 1
		})

		strangerMu.Lock()
		defer strangerMu.Unlock()
		if len(*strangerMsgs) != 0 {
			t.Errorf("handle on another channel received %d messages", len(*strangerMsgs))
		}
	})

	t.Run("Per-sender delivery order is preserved", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sender, _ := broker.Open("booktracker-progress")
		receiver, _ := broker.Open("booktracker-progress")
		mu, msgs := collect(receiver)

		const n = 20
		for i := 1; i <= n; i++ {
			sender.Send(ProgressUpdateMessage("book-1", i, "user-1"))
		}

		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(*msgs) == n
		})

		mu.Lock()
		defer mu.Unlock()
		for i, m := range *msgs {
			if m.Pages != i+1 {
				t.Fatalf("message %d arrived out of order: pages=%d", i, m.Pages)
			}
		}
	})

	t.Run("OnMessage re-registration replaces the callback", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sender, _ := broker.Open("booktracker-progress")
		receiver, _ := broker.Open("booktracker-progress")

		var mu sync.Mutex
		first, second := 0, 0
		receiver.OnMessage(func(Message) {
			mu.Lock()
			first++
			mu.Unlock()
		})
		receiver.OnMessage(func(Message) {
			mu.Lock()
			second++
			mu.Unlock()
		})

		sender.Send(ProgressUpdateMessage("book-1", 1, "user-1"))

		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return second == 1
		})

		mu.Lock()
		defer mu.Unlock()
		if first != 0 {
			t.Errorf("replaced callback was invoked %d times", first)
		}
	})

	t.Run("Closed handle stops receiving", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sender, _ := broker.Open("booktracker-progress")
		receiver, _ := broker.Open("booktracker-progress")
		witness, _ := broker.Open("booktracker-progress")

		recvMu, recvMsgs := collect(receiver)
		witMu, witMsgs := collect(witness)

		receiver.Close()
		sender.Send(ProgressUpdateMessage("book-1", 9, "user-1"))

		waitFor(t, func() bool {
			witMu.Lock()
			defer witMu.Unlock()
			return len(*witMsgs) == 1
		})

		recvMu.Lock()
		defer recvMu.Unlock()
		if len(*recvMsgs) != 0 {
			t.Errorf("closed handle received %d messages", len(*recvMsgs))
		}
	})
}

func TestMessageType(t *testing.T) {
	cases := []struct {
		typ  MessageType
		want string
	}{
		{ProgressUpdate, "PROGRESS_UPDATE"},
		{SyncRequest, "PROGRESS_SYNC_REQUEST"},
		{SyncResponse, "PROGRESS_SYNC_RESPONSE"},
		{MessageType(99), ""},
	}

	for _, tc := range cases {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("MessageType(%d).String() = %q, want %q", tc.typ, got, tc.want)
		}
	}
}
