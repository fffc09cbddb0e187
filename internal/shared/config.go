package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables read by [Config.ApplyEnv].
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvTunebatBaseURL      = "TUNEBAT_BASE_URL"
)

// Known report formats and similarity algorithms.
var (
	ReportFormats = []string{"csv", "json", "markdown", "txt"}
	Algorithms    = []string{"dice", "jaro-winkler", "levenshtein"}
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Tunebat     TunebatConfig     `toml:"tunebat"`
	Enrich      EnrichConfig      `toml:"enrich"`
	Report      ReportConfig      `toml:"report"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Map returns the credentials in the shape expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
	}
}

// TunebatConfig contains Tunebat search API settings.
type TunebatConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (t TunebatConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// EnrichConfig tunes the enrichment pipeline.
type EnrichConfig struct {
	BatchSize    int     `toml:"batch_size"`
	BatchDelayMS int     `toml:"batch_delay_ms"`
	BaseDelayMS  int     `toml:"base_delay_ms"`
	JitterMS     int     `toml:"jitter_ms"`
	MaxAttempts  int     `toml:"max_attempts"`
	Threshold    float64 `toml:"threshold"`
	Algorithm    string  `toml:"algorithm"`
}

func (e EnrichConfig) BatchDelay() time.Duration {
	return time.Duration(e.BatchDelayMS) * time.Millisecond
}

func (e EnrichConfig) BaseDelay() time.Duration {
	return time.Duration(e.BaseDelayMS) * time.Millisecond
}

func (e EnrichConfig) Jitter() time.Duration {
	return time.Duration(e.JitterMS) * time.Millisecond
}

// ReportConfig sets the default report destination.
type ReportConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnv loads variables from the given .env files into the process environment.
//
// Missing files are skipped; variables already set are not overridden.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays credentials and endpoints found in the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvSpotifyClientID)); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSpotifyClientSecret)); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTunebatBaseURL)); v != "" {
		c.Tunebat.BaseURL = v
	}
}

// Validate checks the enrichment and report settings.
func (c *Config) Validate() error {
	e := c.Enrich
	switch {
	case e.BatchSize <= 0:
		return fmt.Errorf("%w: enrich.batch_size must be positive, got %d", ErrInvalidConfig, e.BatchSize)
	case e.BatchDelayMS < 0:
		return fmt.Errorf("%w: enrich.batch_delay_ms must not be negative", ErrInvalidConfig)
	case e.BaseDelayMS < 0 || e.JitterMS < 0:
		return fmt.Errorf("%w: enrich delays must not be negative", ErrInvalidConfig)
	case e.MaxAttempts <= 0:
		return fmt.Errorf("%w: enrich.max_attempts must be positive, got %d", ErrInvalidConfig, e.MaxAttempts)
	case e.Threshold <= 0 || e.Threshold > 1:
		return fmt.Errorf("%w: enrich.threshold must be in (0, 1], got %v", ErrInvalidConfig, e.Threshold)
	case !contains(Algorithms, e.Algorithm):
		return fmt.Errorf("%w: unknown enrich.algorithm %q", ErrInvalidConfig, e.Algorithm)
	case !contains(ReportFormats, c.Report.Format):
		return fmt.Errorf("%w: unknown report.format %q", ErrInvalidConfig, c.Report.Format)
	case c.Tunebat.BaseURL == "":
		return fmt.Errorf("%w: tunebat.base_url is required", ErrInvalidConfig)
	}
	return nil
}

// HasSpotifyCredentials reports whether both client ID and secret are set.
func (c *Config) HasSpotifyCredentials() bool {
	return c.Credentials.Spotify.ClientID != "" && c.Credentials.Spotify.ClientSecret != ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
