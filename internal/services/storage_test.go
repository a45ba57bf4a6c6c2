package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStorageClient(t *testing.T) {
	ctx := context.Background()

	t.Run("upload posts the object with auth headers", func(t *testing.T) {
		var gotPath, gotType, gotAuth string
		var gotBody []byte

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		storage := NewStorageClient(server.URL, "anon-key", func() string { return "token-abc" }, nil)
		err := storage.Upload(ctx, "avatars", "user-1.png", []byte("png-bytes"), "image/png")
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		if gotPath != "/object/avatars/user-1.png" {
			t.Errorf("unexpected path: %s", gotPath)
		}
		if gotType != "image/png" {
			t.Errorf("unexpected content type: %s", gotType)
		}
		if gotAuth != "Bearer token-abc" {
			t.Errorf("unexpected authorization: %s", gotAuth)
		}
		if string(gotBody) != "png-bytes" {
			t.Errorf("unexpected body: %s", gotBody)
		}
	})

	t.Run("upload surfaces server rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		storage := NewStorageClient(server.URL, "anon-key", nil, nil)
		if err := storage.Upload(ctx, "avatars", "user-1.png", []byte("x"), ""); err == nil {
			t.Fatal("expected error from rejected upload")
		}
	})

	t.Run("public URL layout", func(t *testing.T) {
		storage := NewStorageClient("https://blobs.example.com", "", nil, nil)
		got := storage.PublicURL("avatars", "user-1.png")
		want := "https://blobs.example.com/object/public/avatars/user-1.png"
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}
