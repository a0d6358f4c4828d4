// Package initcmd writes a first-run vibeplanner configuration.
package initcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/vibeplanner/internal/core/config"
	"github.com/colonyops/vibeplanner/internal/core/styles"
	"github.com/colonyops/vibeplanner/internal/core/validate"
	"github.com/colonyops/vibeplanner/internal/printer"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	Yes        bool // skip prompts, use defaults
	Force      bool // overwrite existing config

	// Preset answers; empty values are prompted for or defaulted.
	UserID string
	TeamID string
}

// Answers are the values the wizard writes into the config.
type Answers struct {
	UserID    string
	TeamID    string
	Theme     string
	APIKeyEnv string
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	p := printer.Ctx(ctx)

	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if errors.Is(err, huh.ErrUserAborted) {
			p.Infof("Init cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		if !overwrite {
			p.Infof("Init cancelled")
			return nil
		}
	}

	answers := w.defaults()
	if !w.opts.Yes {
		if err := w.prompt(&answers); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				p.Infof("Init cancelled")
				return nil
			}
			return err
		}
	}

	if ConfigExists(w.opts.ConfigPath) {
		backupPath, err := BackupConfig(w.opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
		if backupPath != "" {
			p.Successf("Backed up config to: %s", backupPath)
		}
	}

	if err := WriteConfig(GenerateConfig(answers), w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	p.Successf("Created config: %s", w.opts.ConfigPath)

	if os.Getenv(answers.APIKeyEnv) == "" {
		p.Warnf("%s is not set; 'vibeplanner chat' needs a Gemini API key", answers.APIKeyEnv)
	}

	w.printNextSteps(p)
	return nil
}

func (w *Wizard) defaults() Answers {
	def := config.DefaultConfig()
	a := Answers{
		UserID:    def.Actor.UserID,
		TeamID:    def.Actor.TeamID,
		Theme:     def.TUI.Theme,
		APIKeyEnv: def.Assistant.APIKeyEnv,
	}
	if u := os.Getenv("USER"); u != "" {
		a.UserID = u
	}
	if w.opts.UserID != "" {
		a.UserID = w.opts.UserID
	}
	if w.opts.TeamID != "" {
		a.TeamID = w.opts.TeamID
	}
	return a
}

func (w *Wizard) prompt(a *Answers) error {
	themes := make([]huh.Option[string], 0, len(styles.ThemeNames()))
	for _, name := range styles.ThemeNames() {
		themes = append(themes, huh.NewOption(name, name))
	}


	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("User ID").
				Description("Recorded as the author of confirmed records").
				Value(&a.UserID).
				Validate(validate.Identifier),
			huh.NewInput().
				Title("Team ID").
				Description("Records and proposals are scoped to this team").
				Value(&a.TeamID).
				Validate(validate.Identifier),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(themes...).
				Value(&a.Theme),
			huh.NewInput().
				Title("Gemini API key variable").
				Description("Environment variable holding the key for 'vibeplanner chat'").
				Value(&a.APIKeyEnv).
				Validate(validate.EnvVarName),
		),
	)

	return form.Run()
}

func (w *Wizard) printNextSteps(p *printer.Printer) {
	p.Printf("")
	p.Section("Next Steps")
	p.Printf("  1. Validate the config: vibeplanner config validate")
	p.Printf("  2. Ask for changes:     vibeplanner chat \"plan next week's site visits\"")
	p.Printf("  3. Review proposals:    vibeplanner review")
}

// GenerateConfig builds a config from the default with a's values applied.
func GenerateConfig(a Answers) config.Config {
	cfg := config.DefaultConfig()
	cfg.Actor.UserID = strings.TrimSpace(a.UserID)
	cfg.Actor.TeamID = strings.TrimSpace(a.TeamID)
	if a.Theme != "" {
		cfg.TUI.Theme = a.Theme
	}
	if a.APIKeyEnv != "" {
		cfg.Assistant.APIKeyEnv = strings.TrimSpace(a.APIKeyEnv)
	}
	return cfg
}

// WriteConfig writes cfg as YAML, creating parent directories.
func WriteConfig(cfg config.Config, path string) error {
	// DataDir is not part of the file; any value satisfies Validate.
	check := cfg
	check.DataDir = filepath.Dir(path)
	if err := check.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
