// package formatter renders reading history as a terminal chart and exports
// it to CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AnouckGaloppin/BookMark/internal/models"
)

const (
	chartBarWidth = 40
	dateLayout    = "2006-01-02"
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("105"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// HistoryChart renders one bar per history record, scaled to the book's total
// pages when known and to the largest recorded value otherwise.
//
// A book with no history yet is charted from its current progress alone, so
// the command always has something to show.
func HistoryChart(book models.Book, records []models.ProgressHistoryRecord, currentPages int) string {
	var buf strings.Builder

	buf.WriteString(titleStyle.Render(book.Title))
	buf.WriteString("\n\n")

	if len(records) == 0 {
		buf.WriteString(renderBar("today", currentPages, scaleMax(book, currentPages)))
		buf.WriteString("\n")
		return buf.String()
	}

	max := book.TotalPages
	if max <= 0 {
		for _, rec := range records {
			if rec.PagesRead > max {
				max = rec.PagesRead
			}
		}
	}

	for _, rec := range records {
		buf.WriteString(renderBar(rec.RecordedAt.Format(dateLayout), rec.PagesRead, max))
		buf.WriteString("\n")
	}

	return buf.String()
}

func scaleMax(book models.Book, current int) int {
	if book.TotalPages > 0 {
		return book.TotalPages
	}
	return current
}

func renderBar(label string, pages, max int) string {
	filled := 0
	if max > 0 {
		filled = pages * chartBarWidth / max
	}
	if filled > chartBarWidth {
		filled = chartBarWidth
	}

	bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", chartBarWidth-filled)
	return fmt.Sprintf("%s %s %s", labelStyle.Render(fmt.Sprintf("%-10s", label)), bar, labelStyle.Render(strconv.Itoa(pages)))
}

// ExportHistoryCSV converts history records to CSV with columns: Date, PagesRead
func ExportHistoryCSV(records []models.ProgressHistoryRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Date", "PagesRead"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		record := []string{
			rec.RecordedAt.Format(dateLayout),
			strconv.Itoa(rec.PagesRead),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryExportResult contains the paths of files created by WriteHistoryExport
type HistoryExportResult struct {
	HistoryFile  string
	MetadataFile string
}

// WriteHistoryExport exports a book's history to CSV with an accompanying
// metadata JSON file.
//
// Defaults to the book ID as the base filename & creates {base}_history.csv
// and {base}_book.json
func WriteHistoryExport(book models.Book, records []models.ProgressHistoryRecord, baseFilepath string) (*HistoryExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = book.ID
	}

	csvData, err := ExportHistoryCSV(records)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	historyFile := baseFilepath + "_history.csv"
	if err := os.WriteFile(historyFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_book.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &HistoryExportResult{
		HistoryFile:  historyFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteExportManifest writes a JSON summary of a bulk export to path.
func WriteExportManifest(manifest any, path string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
