package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello")

		if buf.Len() == 0 {
			t.Error("expected log output in buffer")
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected logger")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Run("creates log file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		logger.Info("line one")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file to exist: %v", err)
		}
		if !bytes.Contains(data, []byte("line one")) {
			t.Errorf("expected log line in file, got %q", data)
		}
	})
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(logger, log.ErrorLevel)
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed at error level, got %q", buf.String())
	}

	SetLogLevel(logger, log.DebugLevel)
	logger.Debug("visible")
	if buf.Len() == 0 {
		t.Error("expected debug output at debug level")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	child := WithLogger(logger, "component", "proxy")
	child.Info("tagged")

	if !bytes.Contains(buf.Bytes(), []byte("component")) {
		t.Errorf("expected key-value pair in output, got %q", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("expected non-empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
