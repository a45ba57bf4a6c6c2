package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// BookRepository persists [models.Book] rows in the local cache database.
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new BookRepository with the given database connection.
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book. A missing ID is generated; the caller may supply
// one to keep local and remote copies keyed identically.
func (r *BookRepository) Create(book *models.Book) error {
	if book.ID == "" {
		book.ID = shared.GenerateID()
	}

	if err := book.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "books")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO books (id, sequence, title, author, cover_image, total_pages, isbn, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, book.ID, sequence, book.Title, book.Author, book.CoverImage,
		book.TotalPages, book.ISBN, book.UserID, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// Get retrieves a book by ID, excluding soft-deleted rows.
func (r *BookRepository) Get(id string) (*models.Book, error) {
	query := `
		SELECT id, title, author, cover_image, total_pages, isbn, user_id
		FROM books
		WHERE id = ? AND deleted_at IS NULL
	`

	var book models.Book
	var author, cover, isbn sql.NullString

	err := r.db.QueryRow(query, id).Scan(&book.ID, &book.Title, &author, &cover,
		&book.TotalPages, &isbn, &book.UserID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}

	book.Author = author.String
	book.CoverImage = cover.String
	book.ISBN = isbn.String

	return &book, nil
}

// List retrieves a user's books ordered by title, excluding soft-deleted rows.
func (r *BookRepository) List(userID string) ([]models.Book, error) {
	query := `
		SELECT id, title, author, cover_image, total_pages, isbn, user_id
		FROM books
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY title COLLATE NOCASE ASC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		var author, cover, isbn sql.NullString

		if err := rows.Scan(&book.ID, &book.Title, &author, &cover,
			&book.TotalPages, &isbn, &book.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}

		book.Author = author.String
		book.CoverImage = cover.String
		book.ISBN = isbn.String
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return books, nil
}

// UpdateTotalPages changes a book's page count.
func (r *BookRepository) UpdateTotalPages(id string, totalPages int) error {
	if totalPages < 0 {
		return fmt.Errorf("%w: total pages must be non-negative", shared.ErrInvalidInput)
	}

	query := `
		UPDATE books
		SET total_pages = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, totalPages, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
	}

	return nil
}

// Delete soft-deletes a book by ID.
func (r *BookRepository) Delete(id string) error {
	query := `
		UPDATE books
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
	}

	return nil
}
