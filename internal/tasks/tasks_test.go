package tasks

import "testing"

func TestPhaseString(t *testing.T) {
	tc := []struct {
		phase Phase
		want  string
	}{
		{FetchShelf, "fetch_shelf"},
		{FetchHistory, "fetch_history"},
		{ExportBook, "export_book"},
		{WriteManifest, "write_manifest"},
		{Phase(99), ""},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("Phase.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendProgress(t *testing.T) {
	engine := NewExportEngine(nil, nil)

	t.Run("nil channel does not block", func(t *testing.T) {
		engine.sendProgress(nil, fetchingShelfUpdate(3))
	})

	t.Run("full channel does not block", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 1)
		progress <- fetchingShelfUpdate(1)

		engine.sendProgress(progress, fetchingShelfUpdate(2))

		first := <-progress
		if first.Message != "Exporting history for 1 books..." {
			t.Errorf("expected first update preserved, got %q", first.Message)
		}
	})

	t.Run("delivers to open channel", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 1)

		engine.sendProgress(progress, fetchingHistoryUpdate(2, 5, "Solaris"))

		update := <-progress
		if update.Phase != FetchHistory {
			t.Errorf("expected FetchHistory phase, got %v", update.Phase)
		}
		if update.Step != 2 || update.Total != 5 {
			t.Errorf("expected step 2/5, got %d/%d", update.Step, update.Total)
		}
	})
}
