package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// BooksSearch queries the public catalog and prints the candidates.
func (r *Runner) BooksSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: no catalog configured", shared.ErrMissingConfig)
	}

	results, err := r.catalog.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	limit := int(cmd.Int("limit"))
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	if len(results) == 0 {
		r.writePlain("No results for %q\n", query)
		return nil
	}

	for i, result := range results {
		line := fmt.Sprintf("%2d. %s", i+1, result.Title)
		if result.Author != "" {
			line += " — " + result.Author
		}
		if result.TotalPages > 0 {
			line += fmt.Sprintf(" (%d pages)", result.TotalPages)
		}
		if result.ISBN != "" {
			line += fmt.Sprintf("  [ISBN %s]", result.ISBN)
		}
		r.writePlain("%s\n", line)
	}

	return nil
}

// BooksAdd adds a book to the shelf, resolving a missing page count through
// the catalog's fallback chain.
func (r *Runner) BooksAdd(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	book := models.Book{
		ID:         shared.GenerateID(),
		Title:      cmd.String("title"),
		Author:     cmd.String("author"),
		ISBN:       cmd.String("isbn"),
		TotalPages: int(cmd.Int("pages")),
		CoverImage: cmd.String("cover"),
		UserID:     userID,
	}

	if book.TotalPages == 0 && r.catalog != nil {
		candidate := models.CatalogResult{Title: book.Title, Author: book.Author, ISBN: book.ISBN}
		pages, err := r.catalog.PageCount(ctx, candidate)
		if err != nil {
			r.logger.Warn("page count lookup failed, storing book without a total", "error", err)
		} else if pages > 0 {
			book.TotalPages = pages
			r.logger.Debug("resolved page count from catalog", "pages", pages)
		}
	}

	if err := r.books.InsertBook(ctx, book); err != nil {
		return fmt.Errorf("failed to add book: %w", err)
	}

	r.writePlain("✓ Added %q", book.Title)
	if book.TotalPages > 0 {
		r.writePlain(" (%d pages)", book.TotalPages)
	}
	r.writePlain("\n  ID: %s\n", book.ID)
	return nil
}

// BooksList prints the shelf in title order with current progress.
func (r *Runner) BooksList(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	books, err := r.books.ListBooks(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, true)
	}

	if len(books) == 0 {
		r.writePlain("The shelf is empty. Add a book with 'bookmark books add'.\n")
		return nil
	}

	progress, err := r.progress.LoadProgress(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to load progress, listing without it", "error", err)
		progress = map[string]int{}
	}

	for _, book := range books {
		pages := progress[book.ID]
		line := fmt.Sprintf("%s  %s", book.ID, book.Title)
		if book.Author != "" {
			line += " — " + book.Author
		}
		if book.TotalPages > 0 {
			line += fmt.Sprintf("  (%d/%d)", pages, book.TotalPages)
		} else if pages > 0 {
			line += fmt.Sprintf("  (%d pages read)", pages)
		}
		r.writePlain("%s\n", line)
	}

	return nil
}

// BooksPages corrects a book's total page count.
//
// The new total may not undercut pages already read; fix the progress first.
func (r *Runner) BooksPages(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	bookID := cmd.StringArg("id")
	if bookID == "" {
		return fmt.Errorf("%w: book ID", shared.ErrMissingArgument)
	}
	total := int(cmd.Int("total"))
	if total < 0 {
		return fmt.Errorf("%w: total pages must be non-negative", shared.ErrInvalidInput)
	}

	progress, err := r.progress.LoadProgress(ctx, userID)
	if err == nil {
		if read := progress[bookID]; total > 0 && read > total {
			return fmt.Errorf("%w: %d pages already read", shared.ErrInvalidInput, read)
		}
	}

	if err := r.books.UpdateBookTotalPages(ctx, bookID, total); err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	r.writePlain("✓ Total pages set to %d\n", total)
	return nil
}

// BooksRemove removes a book from the shelf.
func (r *Runner) BooksRemove(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(ctx); err != nil {
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

	if err := r.books.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("failed to remove book: %w", err)
	}

	r.writePlain("✓ Removed %q\n", book.Title)
	return nil
}

// BooksOpen opens the book's catalog page in the system browser.
func (r *Runner) BooksOpen(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(ctx); err != nil {
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
	if book.ISBN == "" {
		return fmt.Errorf("%w: book has no ISBN to look up", shared.ErrInvalidInput)
	}

	url := fmt.Sprintf("%s/isbn/%s", r.config.Catalog.OpenLibraryURL, book.ISBN)
	r.logger.Debug("opening catalog page", "url", url)
	return shared.OpenBrowser(url)
}
