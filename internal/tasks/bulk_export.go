package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnouckGaloppin/BookMark/internal/formatter"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// BulkExportOpts contains configuration for bulk history exports.
type BulkExportOpts struct {
	OutputDir  string   // Base output directory (default: bookmark_export_{epoch})
	NumWorkers int      // Concurrent workers (default: 4)
	RateLimit  float64  // History fetches per second (default: 5)
	BookIDs    []string // Restrict export to these books (default: whole shelf)
}

// BulkExport exports reading history for multiple books concurrently with
// rate limiting and progress tracking.
//
// History fetches are rate limited on the producer side; a worker pool writes
// the per-book files. Partial failures are recorded in the result rather than
// aborting the run, and a manifest file summarizing the export is written
// last.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	userID string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.shelf == nil || e.history == nil {
		return nil, fmt.Errorf("%w: export backend not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("bookmark_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	books, err := e.shelf.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list books: %v", shared.ErrAPIRequest, err)
	}

	if len(opts.BookIDs) > 0 {
		wanted := make(map[string]bool, len(opts.BookIDs))
		for _, id := range opts.BookIDs {
			wanted[id] = true
		}

		filtered := books[:0]
		for _, book := range books {
			if wanted[book.ID] {
				filtered = append(filtered, book)
			}
		}
		books = filtered
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalBooks:      len(books),
		OutputDirectory: opts.OutputDir,
		Results:         make([]BookExportResult, 0, len(books)),
	}

	e.sendProgress(prog, fetchingShelfUpdate(len(books)))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan BookExportJob, len(books))
	results := make(chan BookExportResult, len(books))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, book := range books {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchingHistoryUpdate(i+1, len(books), book.Title))

			records, err := e.history.History(ctx, book.ID, userID)
			if err != nil {
				results <- BookExportResult{
					BookID: book.ID,
					Title:  book.Title,
					Error:  fmt.Sprintf("failed to fetch history: %v", err),
				}
				continue
			}

			jobs <- BookExportJob{Book: book, Records: records}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(books), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(books), res.Title, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, writeManifestUpdate(manifestPath))
	if err := formatter.WriteExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes exports from the jobs channel.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan BookExportJob,
	results chan<- BookExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleBook(job, opts)
	}
}

// exportSingleBook writes one book's history and metadata files.
func exportSingleBook(j BookExportJob, opts BulkExportOpts) BookExportResult {
	result := BookExportResult{
		BookID: j.Book.ID,
		Title:  j.Book.Title,
	}

	base := filepath.Join(opts.OutputDir, j.Book.ID)
	export, err := formatter.WriteHistoryExport(j.Book, j.Records, base)
	if err != nil {
		result.Error = fmt.Sprintf("history export failed: %v", err)
		return result
	}

	result.Files = []string{export.HistoryFile, export.MetadataFile}
	result.Success = true
	return result
}
