package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"csync-go/internal/csync"
)

// ErrMissing marks a required configuration value that is absent.
// Validation runs once at startup, before any network call.
var ErrMissing = errors.New("missing required configuration")

// Environment variables that override token values in the config file.
const (
	EnvCanvasToken = "CANVAS_API_TOKEN"
	EnvNotionToken = "NOTION_API_KEY"
)

// Config is the main configuration for csync.
type Config struct {
	LogDir   string         `toml:"log_dir"`
	Canvas   CanvasConfig   `toml:"canvas"`
	Notion   NotionConfig   `toml:"notion"`
	Sync     SyncConfig     `toml:"sync"`
	Database DatabaseConfig `toml:"database"`
}

// CanvasConfig identifies the source instance and which courses to mirror.
type CanvasConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token,omitempty"`
	// CourseIDs is the allow-list; empty means all active courses.
	CourseIDs []int64 `toml:"course_ids,omitempty"`
}

// APIToken returns the Canvas token, preferring the environment.
func (c CanvasConfig) APIToken() string {
	if t := os.Getenv(EnvCanvasToken); t != "" {
		return t
	}
	return c.Token
}

// NotionConfig identifies the target container and store.
type NotionConfig struct {
	Token         string `toml:"token,omitempty"`
	ParentPageID  string `toml:"parent_page_id"`
	DatabaseTitle string `toml:"database_title"`
}

// APIToken returns the Notion token, preferring the environment.
func (n NotionConfig) APIToken() string {
	if t := os.Getenv(EnvNotionToken); t != "" {
		return t
	}
	return n.Token
}

// SyncConfig controls the reconciliation behavior.
type SyncConfig struct {
	Mode string `toml:"mode"` // "recreate" or "incremental"

	// Window bounds accept "2006-01-02" (midnight UTC) or RFC 3339.
	WindowStart string `toml:"window_start,omitempty"`
	WindowEnd   string `toml:"window_end,omitempty"`
	// WindowDays derives a ±N-day window at run start when explicit
	// bounds are unset.
	WindowDays     int  `toml:"window_days"`
	IncludeUndated bool `toml:"include_undated"`

	// MigrateSchema forces the schema swap before incremental runs.
	MigrateSchema bool `toml:"migrate_schema"`
}

// DatabaseConfig configures the local run-history database.
// The Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Canvas: CanvasConfig{
			BaseURL: "https://canvas.instructure.com",
		},
		Notion: NotionConfig{
			DatabaseTitle: "Canvas Course - Track Assignments",
		},
		Sync: SyncConfig{
			Mode:       string(csync.ModeRecreate),
			WindowDays: 7,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
	}
}

// Validate checks required values and converts the file shape into typed
// run options. It is the only place configuration is interpreted.
func (c *Config) Validate() (csync.Options, error) {
	var opts csync.Options

	if c.Canvas.BaseURL == "" {
		return opts, fmt.Errorf("%w: canvas.base_url", ErrMissing)
	}
	if c.Canvas.APIToken() == "" {
		return opts, fmt.Errorf("%w: canvas.token (or %s)", ErrMissing, EnvCanvasToken)
	}
	if c.Notion.APIToken() == "" {
		return opts, fmt.Errorf("%w: notion.token (or %s)", ErrMissing, EnvNotionToken)
	}
	if c.Notion.ParentPageID == "" {
		return opts, fmt.Errorf("%w: notion.parent_page_id", ErrMissing)
	}
	if c.Notion.DatabaseTitle == "" {
		return opts, fmt.Errorf("%w: notion.database_title", ErrMissing)
	}

	mode := csync.Mode(c.Sync.Mode)
	if mode != csync.ModeRecreate && mode != csync.ModeIncremental {
		return opts, fmt.Errorf("sync.mode must be %q or %q, got %q",
			csync.ModeRecreate, csync.ModeIncremental, c.Sync.Mode)
	}

	window := csync.Window{IncludeUndated: c.Sync.IncludeUndated}
	if c.Sync.WindowStart != "" {
		t, err := parseBound(c.Sync.WindowStart)
		if err != nil {
			return opts, fmt.Errorf("sync.window_start: %w", err)
		}
		window.Start = t
	}
	if c.Sync.WindowEnd != "" {
		t, err := parseBound(c.Sync.WindowEnd)
		if err != nil {
			return opts, fmt.Errorf("sync.window_end: %w", err)
		}
		window.End = t
	}
	if window.Start != nil && window.End != nil && window.End.Before(*window.Start) {
		return opts, fmt.Errorf("sync.window_end is before sync.window_start")
	}
	if c.Sync.WindowDays < 0 {
		return opts, fmt.Errorf("sync.window_days must not be negative")
	}

	opts = csync.Options{
		Mode:          mode,
		Window:        window,
		WindowDays:    c.Sync.WindowDays,
		CourseIDs:     c.Canvas.CourseIDs,
		ParentID:      c.Notion.ParentPageID,
		StoreTitle:    c.Notion.DatabaseTitle,
		MigrateSchema: c.Sync.MigrateSchema,
	}
	return opts, nil
}

// parseBound accepts a bare calendar date (interpreted as midnight UTC) or
// a full RFC 3339 timestamp.
func parseBound(s string) (*time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("not a date (2006-01-02) or RFC 3339 timestamp: %q", s)
	}
	return &t, nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path. The file is
// created 0600 because it may hold API tokens.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
