package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/vibeplanner/internal/core/validate"
	"github.com/colonyops/vibeplanner/pkg/tmpl"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax and file accessibility. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validate.IdentifierField("actor.user_id", c.Actor.UserID),
		validate.IdentifierField("actor.team_id", c.Actor.TeamID),
		criterio.Run("assistant.api_key_env", c.Assistant.APIKeyEnv, validate.EnvVarName),
		c.validateFileAccess(configPath),
		c.validateVarsFiles(configPath),
		c.validatePromptTemplate(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Assistant.APIKey() == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Assistant",
			Item:     c.Assistant.APIKeyEnv,
			Message:  "environment variable is not set; the chat command will not work",
		})
	}

	if c.Review.Concurrency > c.Database.MaxOpenConns {
		warnings = append(warnings, ValidationWarning{
			Category: "Review",
			Item:     "concurrency",
			Message:  fmt.Sprintf("exceeds database.max_open_conns (%d); extra workers will wait on the pool", c.Database.MaxOpenConns),
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateVarsFiles(configPath string) error {
	if len(c.VarsFiles) == 0 {
		return nil
	}

	configDir := filepath.Dir(configPath)
	var errs criterio.FieldErrorsBuilder

	for i, file := range c.VarsFiles {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}

		if _, err := os.Stat(path); err != nil {
			errs = errs.Append(fmt.Sprintf("vars_files[%d]", i), fmt.Errorf("file not found: %s", file))
		}
	}

	return errs.ToError()
}

// validatePromptTemplate checks the assistant prompt override parses.
func (c *Config) validatePromptTemplate() error {
	if c.Assistant.PromptTemplate == "" {
		return nil
	}
	return criterio.Run("assistant.prompt_template", c.Assistant.PromptTemplate, tmpl.Check)
}
