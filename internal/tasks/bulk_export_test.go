package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	tu "github.com/AnouckGaloppin/BookMark/internal/testing"
)

type fakeShelf struct {
	books []models.Book
	err   error
}

func (f *fakeShelf) ListBooks(ctx context.Context, userID string) ([]models.Book, error) {
	return f.books, f.err
}

type fakeHistory struct {
	records map[string][]models.ProgressHistoryRecord
	failFor string
}

func (f *fakeHistory) History(ctx context.Context, bookID, userID string) ([]models.ProgressHistoryRecord, error) {
	if bookID == f.failFor {
		return nil, errors.New("history unavailable")
	}
	return f.records[bookID], nil
}

func testShelf() *fakeShelf {
	return &fakeShelf{
		books: []models.Book{
			{ID: "book-1", Title: "Annihilation", TotalPages: 195, UserID: "user-1"},
			{ID: "book-2", Title: "Blindsight", TotalPages: 384, UserID: "user-1"},
			{ID: "book-3", Title: "Solaris", TotalPages: 204, UserID: "user-1"},
		},
	}
}

func testHistory() *fakeHistory {
	day := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	records := make(map[string][]models.ProgressHistoryRecord)
	for i, bookID := range []string{"book-1", "book-2", "book-3"} {
		records[bookID] = []models.ProgressHistoryRecord{
			{ID: fmt.Sprintf("rec-%d", i), BookID: bookID, UserID: "user-1", PagesRead: 40 + i, RecordedAt: day},
		}
	}
	return &fakeHistory{records: records}
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports every book on the shelf", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "export")
		engine := NewExportEngine(testShelf(), testHistory())

		progress := make(chan ProgressUpdate, 32)
		result, err := engine.BulkExport(ctx, progress, "user-1", BulkExportOpts{
			OutputDir: outDir,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TotalBooks != 3 {
			t.Errorf("expected 3 books, got %d", result.TotalBooks)
		}
		if result.SuccessfulExports != 3 {
			t.Errorf("expected 3 successful exports, got %d", result.SuccessfulExports)
		}
		if result.FailedExports != 0 {
			t.Errorf("expected no failures, got %d", result.FailedExports)
		}

		for _, bookID := range []string{"book-1", "book-2", "book-3"} {
			tu.AssertFileExists(t, filepath.Join(outDir, bookID+"_history.csv"))
			tu.AssertFileExists(t, filepath.Join(outDir, bookID+"_book.json"))
		}
		tu.AssertFileExists(t, result.ManifestPath)

		var manifest BulkExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("failed to parse manifest: %v", err)
		}
		if manifest.SuccessfulExports != 3 {
			t.Errorf("expected manifest to record 3 successes, got %d", manifest.SuccessfulExports)
		}

		close(progress)
		phases := make(map[Phase]bool)
		for update := range progress {
			phases[update.Phase] = true
		}
		for _, phase := range []Phase{FetchShelf, FetchHistory, ExportBook, WriteManifest} {
			if !phases[phase] {
				t.Errorf("expected a %s progress update", phase)
			}
		}
	})

	t.Run("records partial failures without aborting", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "export")
		history := testHistory()
		history.failFor = "book-2"
		engine := NewExportEngine(testShelf(), history)

		result, err := engine.BulkExport(ctx, nil, "user-1", BulkExportOpts{
			OutputDir: outDir,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 2 {
			t.Errorf("expected 2 successful exports, got %d", result.SuccessfulExports)
		}
		if result.FailedExports != 1 {
			t.Errorf("expected 1 failure, got %d", result.FailedExports)
		}

		var failed *BookExportResult
		for i := range result.Results {
			if !result.Results[i].Success {
				failed = &result.Results[i]
			}
		}
		if failed == nil {
			t.Fatal("expected a failed result entry")
		}
		if failed.BookID != "book-2" {
			t.Errorf("expected book-2 to fail, got %s", failed.BookID)
		}
		if failed.Error == "" {
			t.Error("expected failure reason to be recorded")
		}
	})

	t.Run("restricts export to requested books", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "export")
		engine := NewExportEngine(testShelf(), testHistory())

		result, err := engine.BulkExport(ctx, nil, "user-1", BulkExportOpts{
			OutputDir: outDir,
			BookIDs:   []string{"book-3"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TotalBooks != 1 {
			t.Errorf("expected 1 book, got %d", result.TotalBooks)
		}
		tu.AssertFileExists(t, filepath.Join(outDir, "book-3_history.csv"))
	})

	t.Run("fails without a shelf backend", func(t *testing.T) {
		engine := NewExportEngine(nil, testHistory())

		_, err := engine.BulkExport(ctx, nil, "user-1", BulkExportOpts{})
		if err == nil {
			t.Fatal("expected error without shelf backend")
		}
	})

	t.Run("propagates shelf listing failure", func(t *testing.T) {
		engine := NewExportEngine(&fakeShelf{err: errors.New("backend down")}, testHistory())

		_, err := engine.BulkExport(ctx, nil, "user-1", BulkExportOpts{})
		if err == nil {
			t.Fatal("expected error when shelf listing fails")
		}
	})
}
