package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("routes by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected response: %d %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware wraps in order", func(t *testing.T) {
		router := NewBasicRouter()
		var order []string

		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "first")
				next.ServeHTTP(w, r)
			})
		})
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "second")
				next.ServeHTTP(w, r)
			})
		})
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
			t.Errorf("unexpected execution order: %v", order)
		}
	})
}

func TestCatalogProxy(t *testing.T) {
	t.Run("rewrites the prefix to the origin", func(t *testing.T) {
		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search.json" {
				t.Errorf("unexpected upstream path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("q"); got != "dune" {
				t.Errorf("unexpected upstream query: %s", got)
			}
			fmt.Fprint(w, `{"docs":[]}`)
		}))
		defer origin.Close()

		proxy, err := NewCatalogProxy(origin.URL, nil)
		if err != nil {
			t.Fatalf("failed to create proxy: %v", err)
		}

		router := NewBasicRouter()
		router.Handler(proxy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openlibrary/search.json?q=dune", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if string(body) != `{"docs":[]}` {
			t.Errorf("unexpected body: %s", body)
		}
	})

	t.Run("unreachable origin yields bad gateway", func(t *testing.T) {
		proxy, err := NewCatalogProxy("http://127.0.0.1:1", nil)
		if err != nil {
			t.Fatalf("failed to create proxy: %v", err)
		}

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openlibrary/search.json", nil))
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("paths outside the prefix are not proxied", func(t *testing.T) {
		proxy, err := NewCatalogProxy("http://127.0.0.1:1", nil)
		if err != nil {
			t.Fatalf("failed to create proxy: %v", err)
		}

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}
