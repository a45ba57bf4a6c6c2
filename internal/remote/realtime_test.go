package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// feedServer runs a realtime endpoint that acknowledges with ackStatus and
// then pushes the given frames.
func feedServer(t *testing.T, ackStatus string, pushes []frame) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var join frame
		if err := conn.ReadJSON(&join); err != nil {
			t.Errorf("failed to read join frame: %v", err)
			return
		}
		if join.Event != "subscribe" {
			t.Errorf("expected subscribe frame, got %s", join.Event)
		}

		conn.WriteJSON(frame{Event: "status", Topic: join.Topic, Status: ackStatus})

		for _, push := range pushes {
			push.Topic = join.Topic
			conn.WriteJSON(push)
		}

		// Hold the connection open until the client leaves.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestRealtimeClient(t *testing.T) {
	t.Run("Subscribe delivers change events", func(t *testing.T) {
		newRow, _ := json.Marshal(map[string]any{"id": "book-1", "title": "Dune"})
		server := feedServer(t, statusSubscribed, []frame{
			{Event: "INSERT", Table: "books", New: newRow},
			{Event: "heartbeat"},
			{Event: "DELETE", Table: "books", Old: newRow},
		})
		defer server.Close()

		client := NewRealtimeClient(wsURL(server), "test-key", nil)
		sub, err := client.Subscribe(context.Background(), "public:books", "user_id=eq.user-1")
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		defer sub.Unsubscribe()

		first := <-sub.Events()
		if first.Event != EventInsert {
			t.Errorf("expected INSERT, got %s", first.Event)
		}

		var book map[string]any
		if err := first.DecodeNew(&book); err != nil {
			t.Fatalf("DecodeNew failed: %v", err)
		}
		if book["title"] != "Dune" {
			t.Errorf("unexpected row: %v", book)
		}

		// The heartbeat frame is skipped; the next event is the DELETE.
		second := <-sub.Events()
		if second.Event != EventDelete {
			t.Errorf("expected DELETE, got %s", second.Event)
		}
	})

	t.Run("Non-subscribed acknowledgment fails", func(t *testing.T) {
		server := feedServer(t, "CHANNEL_ERROR", nil)
		defer server.Close()

		client := NewRealtimeClient(wsURL(server), "test-key", nil)
		if _, err := client.Subscribe(context.Background(), "public:books", ""); err == nil {
			t.Fatal("expected error for CHANNEL_ERROR acknowledgment")
		}
	})

	t.Run("Subscribe fails fast on unreachable endpoint", func(t *testing.T) {
		client := NewRealtimeClient("ws://127.0.0.1:1", "test-key", nil)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if _, err := client.Subscribe(ctx, "public:books", ""); err == nil {
			t.Fatal("expected dial error")
		}
	})

	t.Run("Unsubscribe ends the event stream", func(t *testing.T) {
		server := feedServer(t, statusSubscribed, nil)
		defer server.Close()

		client := NewRealtimeClient(wsURL(server), "test-key", nil)
		sub, err := client.Subscribe(context.Background(), "public:books", "")
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}

		sub.Unsubscribe()

		select {
		case _, open := <-sub.Events():
			if open {
				t.Error("expected events channel to close after Unsubscribe")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("events channel did not close")
		}
	})
}
