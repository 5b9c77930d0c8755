// Package config provides configuration types, defaults and persistence
// for regview.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/tracing"
)

// DefaultBaseURL is where the registry explorer service listens by default.
const DefaultBaseURL = "http://127.0.0.1:8080/api/"

// Config holds all configuration options for regview.
type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Search  SearchConfig   `mapstructure:"search"`
	History HistoryConfig  `mapstructure:"history"`
	UI      UIConfig       `mapstructure:"ui"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// ServerConfig locates the registry service.
type ServerConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// SearchConfig tunes searching and result paging.
type SearchConfig struct {
	MinQueryLength int           `mapstructure:"min_query_length"`
	BatchSize      int           `mapstructure:"batch_size"` // rows per "show more"
	Debounce       time.Duration `mapstructure:"debounce"`   // quiet period after typing before searching
}

// HistoryConfig controls back/forward restoration.
type HistoryConfig struct {
	// SnapshotTTL is how long a visited object can be restored without a
	// request.
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	ShowCounts    bool   `mapstructure:"show_counts"`    // per-category counts on the main view
	Mouse         bool   `mapstructure:"mouse"`          // clickable results and links
	MarkdownStyle string `mapstructure:"markdown_style"` // glamour style for the info modal, "dark" (default) or "light"
}

// DefaultTracesFilePath returns ~/.config/regview/traces/traces.jsonl, or
// "" when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "regview", "traces", "traces.jsonl")
}

// Defaults returns a Config with the default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Server: ServerConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   30 * time.Second,
			UserAgent: "regview",
		},
		Search: SearchConfig{
			MinQueryLength: 2,
			BatchSize:      100,
			Debounce:       150 * time.Millisecond,
		},
		History: HistoryConfig{
			SnapshotTTL: 30 * time.Minute,
		},
		UI: UIConfig{
			ShowCounts: true,
			Mouse:      true,
		},
		Tracing: tc,
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := ValidateServer(c.Server); err != nil {
		return err
	}
	if err := ValidateSearch(c.Search); err != nil {
		return err
	}
	if err := ValidateHistory(c.History); err != nil {
		return err
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateServer requires an absolute http(s) base URL.
func ValidateServer(s ServerConfig) error {
	if s.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.base_url must be an absolute http(s) URL, got %q", s.BaseURL)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative, got %v", s.Timeout)
	}
	return nil
}

func ValidateSearch(s SearchConfig) error {
	if s.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be at least 1, got %d", s.MinQueryLength)
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("search.batch_size must be at least 1, got %d", s.BatchSize)
	}
	if s.Debounce < 0 || s.Debounce > 5*time.Second {
		return fmt.Errorf("search.debounce must be between 0 and 5s, got %v", s.Debounce)
	}
	return nil
}

func ValidateHistory(h HistoryConfig) error {
	if h.SnapshotTTL <= 0 {
		return fmt.Errorf("history.snapshot_ttl must be positive, got %v", h.SnapshotTTL)
	}
	return nil
}

func ValidateUI(u UIConfig) error {
	switch u.MarkdownStyle {
	case "", "dark", "light":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\", \"light\" or empty, got %q", u.MarkdownStyle)
	}
}

// ValidateTracing checks tracing configuration for errors. Empty values
// fall back to defaults.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as commented YAML.
func DefaultConfigTemplate() string {
	return `# regview configuration

# Registry explorer service
server:
  base_url: ` + DefaultBaseURL + `
  timeout: 30s
  # user_agent: regview

# Searching
search:
  min_query_length: 2   # Shorter queries show the category overview
  batch_size: 100       # Rows shown before "show more"
  debounce: 150ms       # Quiet period after typing before searching

# Back/forward restores visited objects without refetching for this long
history:
  snapshot_ttl: 30m

# UI settings
ui:
  show_counts: true     # Object counts next to each category
  mouse: true           # Click results and links
  # markdown_style: dark  # Session info modal style: "dark" or "light"

# Fetch tracing (OpenTelemetry)
# tracing:
#   enabled: true
#   exporter: file      # none, file, stdout or otlp
#   file_path: ~/.config/regview/traces/traces.jsonl
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1
`
}

// WriteDefaultConfig writes the commented template to configPath, creating
// the parent directory.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
