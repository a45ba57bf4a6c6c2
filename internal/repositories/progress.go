package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// ProgressRepository persists current progress and dated history rows in the
// local cache database.
//
// It exposes the same operations as the remote record-store client so the
// reconciliation service can run against either backend.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository with the given database connection.
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// LoadProgress returns every current-progress record owned by userID as a
// bookID to pages-read map.
func (r *ProgressRepository) LoadProgress(ctx context.Context, userID string) (map[string]int, error) {
	query := `SELECT book_id, pages_read FROM reading_progress WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	progress := make(map[string]int)
	for rows.Next() {
		var bookID string
		var pages int
		if err := rows.Scan(&bookID, &pages); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		progress[bookID] = pages
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return progress, nil
}

// UpsertProgress writes the current pages-read for a (book, user) pair,
// last-write-wins on the composite key.
func (r *ProgressRepository) UpsertProgress(ctx context.Context, entry models.ProgressEntry) error {
	if entry.PagesRead < 0 {
		return fmt.Errorf("%w: pages read must be non-negative", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO reading_progress (book_id, user_id, pages_read, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(book_id, user_id) DO UPDATE SET pages_read = excluded.pages_read, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, entry.BookID, entry.UserID, entry.PagesRead, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}

// HistoryForDay returns the history record for the given calendar day, or
// nil when none exists.
func (r *ProgressRepository) HistoryForDay(ctx context.Context, bookID, userID string, day time.Time) (*models.ProgressHistoryRecord, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	query := `
		SELECT id, book_id, user_id, pages_read, recorded_at
		FROM progress_history
		WHERE book_id = ? AND user_id = ? AND recorded_at >= ? AND recorded_at < ?
	`

	var rec models.ProgressHistoryRecord
	err := r.db.QueryRowContext(ctx, query, bookID, userID, start, end).Scan(
		&rec.ID, &rec.BookID, &rec.UserID, &rec.PagesRead, &rec.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	return &rec, nil
}

// UpdateHistory overwrites the pages-read of an existing history record.
func (r *ProgressRepository) UpdateHistory(ctx context.Context, id string, pages int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE progress_history SET pages_read = ? WHERE id = ?`, pages, id)
	if err != nil {
		return fmt.Errorf("failed to update history: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: history %s", shared.ErrRecordNotFound, id)
	}

	return nil
}

// InsertHistory creates a new dated history record.
func (r *ProgressRepository) InsertHistory(ctx context.Context, rec models.ProgressHistoryRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	query := `
		INSERT INTO progress_history (id, book_id, user_id, pages_read, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.BookID, rec.UserID, rec.PagesRead, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}

	return nil
}

// History returns all history records for a (book, user) pair in
// chronological order.
func (r *ProgressRepository) History(ctx context.Context, bookID, userID string) ([]models.ProgressHistoryRecord, error) {
	query := `
		SELECT id, book_id, user_id, pages_read, recorded_at
		FROM progress_history
		WHERE book_id = ? AND user_id = ?
		ORDER BY recorded_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bookID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []models.ProgressHistoryRecord
	for rows.Next() {
		var rec models.ProgressHistoryRecord
		if err := rows.Scan(&rec.ID, &rec.BookID, &rec.UserID, &rec.PagesRead, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
