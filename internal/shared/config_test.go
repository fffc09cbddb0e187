package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./setlist.db" {
			t.Errorf("expected database path ./setlist.db, got %s", config.Database.Path)
		}

		if config.Enrich.BatchSize != 5 {
			t.Errorf("expected batch size 5, got %d", config.Enrich.BatchSize)
		}

		if config.Enrich.BatchDelay() != 5*time.Second {
			t.Errorf("expected batch delay 5s, got %s", config.Enrich.BatchDelay())
		}

		if config.Enrich.MaxAttempts != 5 {
			t.Errorf("expected 5 attempts, got %d", config.Enrich.MaxAttempts)
		}

		if config.Enrich.Threshold != 0.8 {
			t.Errorf("expected threshold 0.8, got %v", config.Enrich.Threshold)
		}

		if config.Report.Path != "setlist.csv" || config.Report.Format != "csv" {
			t.Errorf("unexpected report defaults: %+v", config.Report)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
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

		testConfig := `[database]
path = "/custom/path.db"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[enrich]
batch_size = 3
algorithm = "levenshtein"
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

		if config.Enrich.BatchSize != 3 {
			t.Errorf("expected batch size 3, got %d", config.Enrich.BatchSize)
		}

		if config.Enrich.BatchDelayMS != 5000 {
			t.Errorf("expected unset batch delay to keep default 5000, got %d", config.Enrich.BatchDelayMS)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if !config.HasSpotifyCredentials() {
			t.Error("expected spotify credentials to be present")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Enrich.BatchSize = 7

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Enrich.BatchSize != 7 {
			t.Errorf("expected batch size 7, got %d", loaded.Enrich.BatchSize)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "zero batch size", mutate: func(c *Config) { c.Enrich.BatchSize = 0 }},
			{name: "negative delay", mutate: func(c *Config) { c.Enrich.BatchDelayMS = -1 }},
			{name: "zero attempts", mutate: func(c *Config) { c.Enrich.MaxAttempts = 0 }},
			{name: "threshold above one", mutate: func(c *Config) { c.Enrich.Threshold = 1.5 }},
			{name: "unknown algorithm", mutate: func(c *Config) { c.Enrich.Algorithm = "soundex" }},
			{name: "unknown format", mutate: func(c *Config) { c.Report.Format = "xlsx" }},
			{name: "empty tunebat url", mutate: func(c *Config) { c.Tunebat.BaseURL = "" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("Env overlay", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		content := "SPOTIFY_CLIENT_ID=from_dotenv\nSPOTIFY_CLIENT_SECRET=dotenv_secret\n"
		if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		t.Setenv(EnvSpotifyClientID, "")
		t.Setenv(EnvSpotifyClientSecret, "")
		os.Unsetenv(EnvSpotifyClientID)
		os.Unsetenv(EnvSpotifyClientSecret)
		t.Setenv(EnvTunebatBaseURL, "http://127.0.0.1:9999")

		if err := LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("failed to load env: %v", err)
		}

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "from_dotenv" {
			t.Errorf("expected client id from .env, got %q", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "dotenv_secret" {
			t.Errorf("expected client secret from .env, got %q", config.Credentials.Spotify.ClientSecret)
		}
		if config.Tunebat.BaseURL != "http://127.0.0.1:9999" {
			t.Errorf("expected tunebat base url from env, got %q", config.Tunebat.BaseURL)
		}
	})
}
