package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchShelf Phase = iota
	FetchHistory
	ExportBook
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchShelf:
		return "fetch_shelf"
	case FetchHistory:
		return "fetch_history"
	case ExportBook:
		return "export_book"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingShelfUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchShelf,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exporting history for %d books...", total),
	}
}

func fetchingHistoryUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching history: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, errMsg string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, title, errMsg),
	}
}

func writeManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest: %s", path),
	}
}
