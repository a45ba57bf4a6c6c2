package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "bookmark.db" {
			t.Errorf("expected database path bookmark.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Catalog.OpenLibraryURL != "https://openlibrary.org" {
			t.Errorf("expected catalog URL https://openlibrary.org, got %s", config.Catalog.OpenLibraryURL)
		}

		if config.Sync.ChannelName != "booktracker-progress" {
			t.Errorf("expected sync channel booktracker-progress, got %s", config.Sync.ChannelName)
		}

		if config.Remote.AuthPath != "/auth/v1" {
			t.Errorf("expected auth path /auth/v1, got %s", config.Remote.AuthPath)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[remote]
url = "https://project.example.co"
api_key = "anon_key"
auth_path = "/auth/v1"
storage_url = "https://project.example.co/storage/v1"
realtime_url = "wss://project.example.co/realtime/v1/websocket"

[catalog]
openlibrary_url = "https://openlibrary.example.org"
googlebooks_url = "https://books.example.com/v1"
rate_per_second = 4.0

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090

[sync]
channel_name = "custom-channel"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}

		if config.Remote.RealtimeURL != "wss://project.example.co/realtime/v1/websocket" {
			t.Errorf("expected realtime URL to be set, got %s", config.Remote.RealtimeURL)
		}

		if config.Catalog.RatePerSecond != 4.0 {
			t.Errorf("expected catalog rate 4.0, got %f", config.Catalog.RatePerSecond)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
