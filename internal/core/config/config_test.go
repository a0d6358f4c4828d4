package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Review.Concurrency)
	assert.Equal(t, 8, cfg.TUI.CellWidthPx)
	assert.Equal(t, 16, cfg.TUI.CellHeightPx)
	assert.Equal(t, "tokyo-night", cfg.TUI.Theme)
	assert.Equal(t, "theme", cfg.TUI.MarkdownStyle)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, writeTestFile(path, `
actor:
  user_id: u-42
  team_id: crew-1
review:
  concurrency: 2
tui:
  cell_width_px: 10
assistant:
  model: gemini-2.5-pro
`))

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "u-42", cfg.Actor.UserID)
	assert.Equal(t, "crew-1", cfg.Actor.TeamID)
	assert.Equal(t, 2, cfg.Review.Concurrency)
	assert.Equal(t, 10, cfg.TUI.CellWidthPx)
	assert.Equal(t, 16, cfg.TUI.CellHeightPx, "unset fields fall back to defaults")
	assert.Equal(t, "gemini-2.5-pro", cfg.Assistant.Model)
	assert.Equal(t, "GEMINI_API_KEY", cfg.Assistant.APIKeyEnv)
	assert.Equal(t, 5000, cfg.Database.BusyTimeout)
}

func TestLoad_VarsFilesMergeUnderInlineVars(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeTestFile(filepath.Join(dir, "vars.yaml"), "crew: demo\nregion: north\n"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, writeTestFile(path, `
vars_files: [vars.yaml]
vars:
  crew: framing
`))

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"crew": "framing", "region": "north"}, cfg.Vars)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, writeTestFile(path, "review: [\n"))

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, writeTestFile(path, "review:\n  concurrency: -1\n"))

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review.concurrency")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "empty user", mutate: func(c *Config) { c.Actor.UserID = "" }, wantErr: "actor.user_id"},
		{name: "empty team", mutate: func(c *Config) { c.Actor.TeamID = "" }, wantErr: "actor.team_id"},
		{name: "no connections", mutate: func(c *Config) { c.Database.MaxOpenConns = 0 }, wantErr: "max_open_conns"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 50 }, wantErr: "max_idle_conns"},
		{name: "negative busy timeout", mutate: func(c *Config) { c.Database.BusyTimeout = -1 }, wantErr: "busy_timeout"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Review.Concurrency = 0 }, wantErr: "review.concurrency"},
		{name: "zero cell size", mutate: func(c *Config) { c.TUI.CellHeightPx = 0 }, wantErr: "cell_height_px"},
		{name: "unknown theme", mutate: func(c *Config) { c.TUI.Theme = "neon" }, wantErr: "tui.theme"},
		{name: "negative context", mutate: func(c *Config) { c.Assistant.MaxContextRecords = -5 }, wantErr: "max_context_records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPromptVars_ReturnsCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vars = map[string]any{"crew": "framing"}

	vars := cfg.PromptVars()
	vars["crew"] = "changed"

	assert.Equal(t, "framing", cfg.Vars["crew"])
}
