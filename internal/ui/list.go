package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/AnouckGaloppin/BookMark/internal/models"
)

var _ list.Item = bookItem{}

const itemBarWidth = 20

// bookItem wraps [models.Book] with its current progress to implement [list.Item].
type bookItem struct {
	book  models.Book
	pages int
}

func (i bookItem) FilterValue() string { return i.book.Title }
func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string {
	bar := progressBar(i.pages, i.book.TotalPages, itemBarWidth)
	if i.book.Author != "" {
		return fmt.Sprintf("%s • %s", bar, i.book.Author)
	}
	return bar
}

// progressBar renders pages/total as a fixed-width bar with a counter.
// Unknown totals render the counter alone.
func progressBar(pages, total, width int) string {
	if total <= 0 {
		return fmt.Sprintf("%d pages", pages)
	}

	filled := pages * width / total
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▮", filled) + strings.Repeat("▯", width-filled)
	return fmt.Sprintf("%s %d/%d", bar, pages, total)
}
