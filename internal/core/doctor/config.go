package doctor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/colonyops/vibeplanner/internal/core/config"
)

// ConfigCheck validates the loaded configuration and the file it came from.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new config check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.configPath); {
	case errors.Is(err, fs.ErrNotExist):
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusWarn,
			Detail: "not found, using defaults (run 'vibeplanner init')",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusFail,
			Detail: err.Error(),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusPass,
			Detail: c.configPath,
		})
	}

	if err := c.cfg.ValidateDeep(c.configPath); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			result.Items = append(result.Items, CheckItem{
				Label:  "Validation",
				Status: StatusFail,
				Detail: line,
			})
		}
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "Validation",
			Status: StatusPass,
		})
	}

	for _, w := range c.cfg.Warnings() {
		result.Items = append(result.Items, CheckItem{
			Label:  w.Category,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	return result
}
