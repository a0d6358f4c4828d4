// Package config handles configuration loading and validation for vibeplanner.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/vibeplanner/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Actor     ActorConfig     `yaml:"actor"`
	Database  DatabaseConfig  `yaml:"database"`
	Review    ReviewConfig    `yaml:"review"`
	TUI       TUIConfig       `yaml:"tui"`
	Assistant AssistantConfig `yaml:"assistant"`
	VarsFiles []string        `yaml:"vars_files"`
	Vars      map[string]any  `yaml:"vars"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// ActorConfig identifies who is acting and in which team. Every write is
// authorized against the team's membership table.
type ActorConfig struct {
	UserID string `yaml:"user_id"`
	TeamID string `yaml:"team_id"`
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// ReviewConfig holds settings for confirming pending items.
type ReviewConfig struct {
	// Concurrency bounds how many items confirm-all applies at once.
	Concurrency int `yaml:"concurrency"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	// Terminal cells are converted to pixels before choosing items per page.
	CellWidthPx  int    `yaml:"cell_width_px"`
	CellHeightPx int    `yaml:"cell_height_px"`
	Theme        string `yaml:"theme"`
	// MarkdownStyle is a glamour standard style name for note bodies, or
	// "theme" to derive one from the active palette.
	MarkdownStyle string `yaml:"markdown_style"`
}

// AssistantConfig configures the Gemini-backed chat assistant.
type AssistantConfig struct {
	Model             string `yaml:"model"`
	APIKeyEnv         string `yaml:"api_key_env"`
	MaxContextRecords int    `yaml:"max_context_records"`
	// PromptTemplate overrides the built-in system prompt. Rendered with
	// pkg/tmpl; empty uses the default.
	PromptTemplate string `yaml:"prompt_template"`
}

// APIKey returns the key read from the configured environment variable.
func (a AssistantConfig) APIKey() string {
	return os.Getenv(a.APIKeyEnv)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Actor: ActorConfig{
			UserID: "local",
			TeamID: "default",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Review: ReviewConfig{
			Concurrency: 4,
		},
		TUI: TUIConfig{
			CellWidthPx:   8,
			CellHeightPx:  16,
			Theme:         styles.DefaultTheme,
			MarkdownStyle: "theme",
		},
		Assistant: AssistantConfig{
			Model:             "gemini-2.5-flash",
			APIKeyEnv:         "GEMINI_API_KEY",
			MaxContextRecords: 50,
		},
		Vars: map[string]any{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Vars files load first so inline vars win for the same keys.
	if len(cfg.VarsFiles) > 0 {
		fileVars, err := loadVarsFiles(filepath.Dir(configPath), cfg.VarsFiles)
		if err != nil {
			return nil, err
		}
		mergeMaps(fileVars, cfg.Vars)
		cfg.Vars = fileVars
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Actor.UserID == "" {
		c.Actor.UserID = defaults.Actor.UserID
	}
	if c.Actor.TeamID == "" {
		c.Actor.TeamID = defaults.Actor.TeamID
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Review.Concurrency == 0 {
		c.Review.Concurrency = defaults.Review.Concurrency
	}
	if c.TUI.CellWidthPx == 0 {
		c.TUI.CellWidthPx = defaults.TUI.CellWidthPx
	}
	if c.TUI.CellHeightPx == 0 {
		c.TUI.CellHeightPx = defaults.TUI.CellHeightPx
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.MarkdownStyle == "" {
		c.TUI.MarkdownStyle = defaults.TUI.MarkdownStyle
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = defaults.Assistant.Model
	}
	if c.Assistant.APIKeyEnv == "" {
		c.Assistant.APIKeyEnv = defaults.Assistant.APIKeyEnv
	}
	if c.Assistant.MaxContextRecords == 0 {
		c.Assistant.MaxContextRecords = defaults.Assistant.MaxContextRecords
	}
	if c.Vars == nil {
		c.Vars = map[string]any{}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Actor.UserID == "" {
		return fmt.Errorf("actor.user_id cannot be empty")
	}

	if c.Actor.TeamID == "" {
		return fmt.Errorf("actor.team_id cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.Review.Concurrency < 1 {
		return fmt.Errorf("review.concurrency must be at least 1")
	}

	if c.TUI.CellWidthPx < 1 || c.TUI.CellHeightPx < 1 {
		return fmt.Errorf("tui.cell_width_px and tui.cell_height_px must be at least 1")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not one of %s", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	if c.Assistant.MaxContextRecords < 0 {
		return fmt.Errorf("assistant.max_context_records cannot be negative")
	}

	return nil
}

// PromptVars returns a copy of the user vars exposed to prompt templates.
func (c *Config) PromptVars() map[string]any {
	return maps.Clone(c.Vars)
}
