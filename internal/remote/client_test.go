package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnouckGaloppin/BookMark/internal/models"
)

func TestClient(t *testing.T) {
	t.Run("LoadProgress builds a book map", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			if r.URL.Path != "/reading_progress" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("user_id"); got != "eq.user-9" {
				t.Errorf("expected user filter eq.user-9, got %s", got)
			}
			if got := r.Header.Get("apikey"); got != "test-key" {
				t.Errorf("expected apikey header, got %q", got)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{"book_id": "book-1", "pages_read": 30},
				{"book_id": "book-2", "pages_read": 0},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		progress, err := client.LoadProgress(context.Background(), "user-9")
		if err != nil {
			t.Fatalf("LoadProgress failed: %v", err)
		}

		if len(progress) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(progress))
		}
		if progress["book-1"] != 30 || progress["book-2"] != 0 {
			t.Errorf("unexpected progress map: %v", progress)
		}
	})

	t.Run("LoadProgress surfaces store errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		if _, err := client.LoadProgress(context.Background(), "user-9"); err == nil {
			t.Fatal("expected error from 403 response")
		}
	})

	t.Run("UpsertProgress targets the composite key", func(t *testing.T) {
		var gotPrefer, gotConflict string
		var gotBody map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			gotPrefer = r.Header.Get("Prefer")
			gotConflict = r.URL.Query().Get("on_conflict")
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		err := client.UpsertProgress(context.Background(), models.ProgressEntry{
			BookID: "book-1", UserID: "user-1", PagesRead: 42,
		})
		if err != nil {
			t.Fatalf("UpsertProgress failed: %v", err)
		}

		if gotConflict != "book_id,user_id" {
			t.Errorf("expected on_conflict book_id,user_id, got %s", gotConflict)
		}
		if gotPrefer != "resolution=merge-duplicates,return=minimal" {
			t.Errorf("unexpected Prefer header: %s", gotPrefer)
		}
		if gotBody["pages_read"].(float64) != 42 {
			t.Errorf("unexpected body: %v", gotBody)
		}
	})

	t.Run("HistoryForDay bounds the day", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stamps := r.URL.Query()["recorded_at"]
			if len(stamps) != 2 {
				t.Errorf("expected two recorded_at filters, got %v", stamps)
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "hist-1", "book_id": "book-1", "user_id": "user-1", "pages_read": 10, "recorded_at": "2026-08-30T08:00:00Z"},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		rec, err := client.HistoryForDay(context.Background(), "book-1", "user-1", time.Now())
		if err != nil {
			t.Fatalf("HistoryForDay failed: %v", err)
		}
		if rec == nil || rec.ID != "hist-1" || rec.PagesRead != 10 {
			t.Errorf("unexpected record: %+v", rec)
		}
	})

	t.Run("HistoryForDay returns nil when empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		rec, err := client.HistoryForDay(context.Background(), "book-1", "user-1", time.Now())
		if err != nil {
			t.Fatalf("HistoryForDay failed: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})

	t.Run("SetToken adds bearer authorization", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		client.SetToken("session-token")

		if _, err := client.ListBooks(context.Background(), "user-1"); err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if gotAuth != "Bearer session-token" {
			t.Errorf("expected bearer token, got %q", gotAuth)
		}
	})

	t.Run("InsertBook rejects invalid books", func(t *testing.T) {
		client := NewClient("http://unused", "test-key", nil)

		err := client.InsertBook(context.Background(), models.Book{Title: "", UserID: "user-1"})
		if err == nil {
			t.Fatal("expected validation error for missing title")
		}
	})

	t.Run("GetBook reports missing rows", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		if _, err := client.GetBook(context.Background(), "book-404"); err == nil {
			t.Fatal("expected error for missing book")
		}
	})

	t.Run("DeleteBook filters by id", func(t *testing.T) {
		var gotMethod, gotFilter string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotFilter = r.URL.Query().Get("id")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", nil)
		if err := client.DeleteBook(context.Background(), "book-3"); err != nil {
			t.Fatalf("DeleteBook failed: %v", err)
		}
		if gotMethod != http.MethodDelete || gotFilter != "eq.book-3" {
			t.Errorf("unexpected request: %s id=%s", gotMethod, gotFilter)
		}
	})
}
