package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/styles"
)

const (
	minToastWidth = 20
	maxToastWidth = 200
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration,
// reporting every offending field instead of stopping at the first one. The
// configPath argument specifies the config file location to check (empty
// string skips the file check).
func (c *Config) ValidateDeep(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		c.validateToasts(),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Toasts.Max > notify.MaxNotifications {
		warnings = append(warnings, ValidationWarning{
			Category: "Toasts",
			Item:     "max",
			Message:  fmt.Sprintf("%d toasts may not fit on small terminals (default %d)", c.Toasts.Max, notify.MaxNotifications),
		})
	}

	if d, ok := notify.ParseDuration(c.Toasts.DefaultDuration); ok && d == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Toasts",
			Item:     "default_duration",
			Message:  "notifications never expire unless posted with an explicit duration",
		})
	}

	return warnings
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

func (c *Config) validateToasts() error {
	var errs criterio.FieldErrorsBuilder

	if c.Toasts.Max < 1 {
		errs = errs.Append("toasts.max", fmt.Errorf("must be at least 1, got %d", c.Toasts.Max))
	}

	if _, ok := notify.ParseDuration(c.Toasts.DefaultDuration); !ok {
		errs = errs.Append("toasts.default_duration", fmt.Errorf("invalid duration %q", c.Toasts.DefaultDuration))
	}

	if c.Toasts.Width < minToastWidth || c.Toasts.Width > maxToastWidth {
		errs = errs.Append("toasts.width", fmt.Errorf("must be between %d and %d, got %d", minToastWidth, maxToastWidth, c.Toasts.Width))
	}

	return errs.ToError()
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}
