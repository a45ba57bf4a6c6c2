// package models defines the data model for the reading tracker
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Book represents a book on a user's shelf.
//
// The remote store owns the durable copy; instances held by the UI or the
// local cache are refreshed by bulk loads and realtime push notifications.
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	CoverImage string `json:"cover_image,omitempty"`
	TotalPages int    `json:"total_pages"`
	ISBN       string `json:"isbn,omitempty"`
	UserID     string `json:"user_id"`
}

// Validate checks that the book has the fields required before persistence.
func (b *Book) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("book title is required")
	}
	if b.UserID == "" {
		return fmt.Errorf("book owner is required")
	}
	if b.TotalPages < 0 {
		return fmt.Errorf("total pages must be non-negative")
	}
	return nil
}

// SortBooks orders books by title, case-insensitively.
//
// The shelf is always presented in title order, including after realtime
// insert and update notifications.
func SortBooks(books []Book) {
	sort.SliceStable(books, func(i, j int) bool {
		return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
	})
}

// ProgressEntry is the current pages-read for a (book, user) pair.
type ProgressEntry struct {
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	PagesRead int       `json:"pages_read"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ProgressHistoryRecord is the day-maximum pages-read for a (book, user) pair.
//
// At most one record exists per calendar day; within a day the stored value
// never decreases.
type ProgressHistoryRecord struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	UserID     string    `json:"user_id"`
	PagesRead  int       `json:"pages_read"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CatalogResult represents a bibliographic candidate from a catalog search.
type CatalogResult struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn,omitempty"`
	Cover      string `json:"cover,omitempty"`
	TotalPages int    `json:"total_pages"`
}

// Profile represents user profile metadata held in the remote store.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
