// REST client for the hosted record store.
//
// Request/response shapes follow the PostgREST conventions the hosted
// platform exposes: filters are query parameters like `user_id=eq.<id>`,
// upserts are POSTs with a merge-duplicates preference keyed by a uniqueness
// constraint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// Client is a record-store client bound to one project URL and API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client for the record store at baseURL (the project's
// /rest/v1 root).
func NewClient(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
	}
}

// SetToken installs the bearer token used for row-level authorization.
//
// An empty token reverts to anonymous access.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// do performs one store round trip. A non-2xx response is reported as
// [shared.ErrAPIRequest] with the response body attached.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, prefer string, body, out any) error {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, table, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// eq builds an equality filter value.
func eq(v string) string { return "eq." + v }

// LoadProgress fetches every current-progress record owned by userID and
// returns it as a bookID to pages-read map.
func (c *Client) LoadProgress(ctx context.Context, userID string) (map[string]int, error) {
	query := url.Values{}
	query.Set("user_id", eq(userID))
	query.Set("select", "book_id,pages_read")

	var rows []models.ProgressEntry
	if err := c.do(ctx, http.MethodGet, "reading_progress", query, "", nil, &rows); err != nil {
		return nil, err
	}

	progress := make(map[string]int, len(rows))
	for _, row := range rows {
		progress[row.BookID] = row.PagesRead
	}
	return progress, nil
}

// UpsertProgress writes the current pages-read for a (book, user) pair,
// last-write-wins on the composite key.
func (c *Client) UpsertProgress(ctx context.Context, entry models.ProgressEntry) error {
	query := url.Values{}
	query.Set("on_conflict", "book_id,user_id")

	record := map[string]any{
		"book_id":    entry.BookID,
		"user_id":    entry.UserID,
		"pages_read": entry.PagesRead,
	}

	return c.do(ctx, http.MethodPost, "reading_progress", query, "resolution=merge-duplicates,return=minimal", record, nil)
}

// HistoryForDay returns the history record for the given calendar day, or
// nil when none exists.
func (c *Client) HistoryForDay(ctx context.Context, bookID, userID string, day time.Time) (*models.ProgressHistoryRecord, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Second)

	query := url.Values{}
	query.Set("book_id", eq(bookID))
	query.Set("user_id", eq(userID))
	query.Add("recorded_at", "gte."+start.Format(time.RFC3339))
	query.Add("recorded_at", "lte."+end.Format(time.RFC3339))
	query.Set("select", "id,book_id,user_id,pages_read,recorded_at")

	var rows []models.ProgressHistoryRecord
	if err := c.do(ctx, http.MethodGet, "progress_history", query, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateHistory overwrites the pages-read of an existing history record.
func (c *Client) UpdateHistory(ctx context.Context, id string, pages int) error {
	query := url.Values{}
	query.Set("id", eq(id))

	patch := map[string]any{"pages_read": pages}
	return c.do(ctx, http.MethodPatch, "progress_history", query, "return=minimal", patch, nil)
}

// InsertHistory creates a new dated history record.
func (c *Client) InsertHistory(ctx context.Context, rec models.ProgressHistoryRecord) error {
	record := map[string]any{
		"book_id":    rec.BookID,
		"user_id":    rec.UserID,
		"pages_read": rec.PagesRead,
	}
	if rec.ID != "" {
		record["id"] = rec.ID
	}

	return c.do(ctx, http.MethodPost, "progress_history", nil, "return=minimal", record, nil)
}

// History returns all history records for a (book, user) pair in
// chronological order.
func (c *Client) History(ctx context.Context, bookID, userID string) ([]models.ProgressHistoryRecord, error) {
	query := url.Values{}
	query.Set("book_id", eq(bookID))
	query.Set("user_id", eq(userID))
	query.Set("order", "recorded_at.asc")

	var rows []models.ProgressHistoryRecord
	if err := c.do(ctx, http.MethodGet, "progress_history", query, "", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBooks returns the user's books ordered by title.
func (c *Client) ListBooks(ctx context.Context, userID string) ([]models.Book, error) {
	query := url.Values{}
	query.Set("user_id", eq(userID))
	query.Set("order", "title.asc")

	var books []models.Book
	if err := c.do(ctx, http.MethodGet, "books", query, "", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook returns a single book by ID.
func (c *Client) GetBook(ctx context.Context, bookID string) (*models.Book, error) {
	query := url.Values{}
	query.Set("id", eq(bookID))

	var books []models.Book
	if err := c.do(ctx, http.MethodGet, "books", query, "", nil, &books); err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrBookNotFound, bookID)
	}
	return &books[0], nil
}

// InsertBook adds a book to the user's shelf.
func (c *Client) InsertBook(ctx context.Context, book models.Book) error {
	if err := book.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return c.do(ctx, http.MethodPost, "books", nil, "return=minimal", book, nil)
}

// UpdateBookTotalPages changes a book's total page count.
func (c *Client) UpdateBookTotalPages(ctx context.Context, bookID string, totalPages int) error {
	query := url.Values{}
	query.Set("id", eq(bookID))

	patch := map[string]any{"total_pages": totalPages}
	return c.do(ctx, http.MethodPatch, "books", query, "return=minimal", patch, nil)
}

// DeleteBook removes a book by ID.
func (c *Client) DeleteBook(ctx context.Context, bookID string) error {
	query := url.Values{}
	query.Set("id", eq(bookID))

	return c.do(ctx, http.MethodDelete, "books", query, "return=minimal", nil, nil)
}

// UpdateProfile merges profile fields for the given user.
func (c *Client) UpdateProfile(ctx context.Context, profile models.Profile) error {
	query := url.Values{}
	query.Set("id", eq(profile.ID))

	patch := map[string]any{}
	if profile.Username != "" {
		patch["username"] = profile.Username
	}
	if profile.AvatarURL != "" {
		patch["avatar_url"] = profile.AvatarURL
	}
	if len(patch) == 0 {
		return nil
	}

	return c.do(ctx, http.MethodPatch, "profiles", query, "return=minimal", patch, nil)
}

// GetProfile fetches a user's profile row.
func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := url.Values{}
	query.Set("id", eq(userID))

	var rows []models.Profile
	if err := c.do(ctx, http.MethodGet, "profiles", query, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: profile %s", shared.ErrRecordNotFound, userID)
	}
	return &rows[0], nil
}
