package tasks

import (
	"context"

	"github.com/AnouckGaloppin/BookMark/internal/models"
)

// Shelf lists the books owned by a user.
type Shelf interface {
	ListBooks(ctx context.Context, userID string) ([]models.Book, error)
}

// HistorySource reads the full dated history for one book.
type HistorySource interface {
	History(ctx context.Context, bookID, userID string) ([]models.ProgressHistoryRecord, error)
}

// BookExportJob carries one book and its fetched history to an export worker.
type BookExportJob struct {
	Book    models.Book
	Records []models.ProgressHistoryRecord
}

// BookExportResult records the outcome of exporting a single book.
type BookExportResult struct {
	BookID  string   `json:"book_id"`
	Title   string   `json:"title"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a full shelf export.
type BulkExportResult struct {
	TotalBooks        int                `json:"total_books"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"manifest_path,omitempty"`
	Results           []BookExportResult `json:"results"`
}

// ExportEngine exports reading history for whole shelves.
type ExportEngine struct {
	shelf   Shelf
	history HistorySource
}

// NewExportEngine creates an ExportEngine over the given backends.
func NewExportEngine(shelf Shelf, history HistorySource) *ExportEngine {
	return &ExportEngine{
		shelf:   shelf,
		history: history,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
