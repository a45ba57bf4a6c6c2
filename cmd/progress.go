package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/formatter"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
	"github.com/AnouckGaloppin/BookMark/internal/store"
	"github.com/AnouckGaloppin/BookMark/internal/tasks"
	"github.com/AnouckGaloppin/BookMark/internal/tracker"
)

// ProgressSet records the pages read for a book and writes it through the
// reconciliation service, maintaining the day's history record.
func (r *Runner) ProgressSet(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	bookID := cmd.StringArg("id")
	if bookID == "" {
		return fmt.Errorf("%w: book ID", shared.ErrMissingArgument)
	}
	pages := int(cmd.Int("pages"))

	book, err := r.books.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	if pages < 0 {
		return fmt.Errorf("%w: pages read must be non-negative", shared.ErrInvalidInput)
	}
	if book.TotalPages > 0 && pages > book.TotalPages {
		return fmt.Errorf("%w: %d > %d", shared.ErrPagesExceeded, pages, book.TotalPages)
	}

	rec := tracker.NewReconciler(r.progress, store.New(nil), r, r.logger)
	if err := rec.Persist(ctx, bookID, pages, userID); err != nil {
		return err
	}

	r.writePlain("✓ %s: %d", book.Title, pages)
	if book.TotalPages > 0 {
		r.writePlain("/%d pages", book.TotalPages)
		if pages >= book.TotalPages {
			r.writePlain("  — finished!")
		}
	} else {
		r.writePlain(" pages")
	}
	r.writePlain("\n")
	return nil
}

// ProgressHistory prints the dated history for a book.
func (r *Runner) ProgressHistory(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	bookID := cmd.StringArg("id")
	if bookID == "" {
		return fmt.Errorf("%w: book ID", shared.ErrMissingArgument)
	}

	records, err := r.history.History(ctx, bookID, userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		r.writePlain("No history recorded yet.\n")
		return nil
	}

	for _, rec := range records {
		r.writePlain("%s  %d pages\n", rec.RecordedAt.Format("2006-01-02"), rec.PagesRead)
	}
	return nil
}

// ProgressChart renders the reading history as a terminal chart, optionally
// exporting the underlying records to CSV.
func (r *Runner) ProgressChart(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	bookID := cmd.StringArg("id")
	if bookID == "" {
		return fmt.Errorf("%w: book ID", shared.ErrMissingArgument)
	}

	book, err := r.books.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	records, err := r.history.History(ctx, bookID, userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	current := 0
	if progress, err := r.progress.LoadProgress(ctx, userID); err == nil {
		current = progress[bookID]
	}

	r.writePlain("%s", formatter.HistoryChart(*book, records, current))

	if base := cmd.String("export"); base != "" {
		result, err := formatter.WriteHistoryExport(*book, records, base)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("\nExported %s and %s\n", result.HistoryFile, result.MetadataFile)
	}

	return nil
}

// ProgressExport writes history CSVs for the whole shelf (or a subset of it)
// concurrently, streaming progress lines as books complete.
func (r *Runner) ProgressExport(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	engine := tasks.NewExportEngine(r.books, r.history)

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, userID, tasks.BulkExportOpts{
		OutputDir:  cmd.String("out"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		BookIDs:    cmd.StringSlice("book"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n✓ Exported %d/%d books to %s\n", result.SuccessfulExports, result.TotalBooks, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("✗ %d books failed, see %s\n", result.FailedExports, result.ManifestPath)
	}
	return nil
}
