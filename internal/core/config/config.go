// Package config handles configuration loading and validation for tray.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Toasts ToastsConfig `yaml:"toasts"`
	TUI    TUIConfig    `yaml:"tui"`
}

// ToastsConfig controls the notification engine.
type ToastsConfig struct {
	// Max is the number of notifications kept on screen at once.
	Max int `yaml:"max"`
	// DefaultDuration is the lifetime of notifications posted without an
	// explicit duration. Bare integers are milliseconds; "0" disables
	// auto-expiry.
	DefaultDuration string `yaml:"default_duration"`
	// Width is the rendered width of a single toast in cells.
	Width int `yaml:"width"`
}

// TUIConfig holds presentation settings for the tray.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// Duration returns the parsed default duration. Unparseable values yield 0;
// Validate rejects them before they reach this point.
func (t ToastsConfig) Duration() time.Duration {
	d, _ := notify.ParseDuration(t.DefaultDuration)
	return d
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Toasts: ToastsConfig{
			Max:             notify.MaxNotifications,
			DefaultDuration: notify.DefaultDuration.String(),
			Width:           50,
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and validates it.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read parses the config file and applies defaults without validating, so
// callers can report every problem through ValidateDeep.
func Read(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Toasts.Max == 0 {
		c.Toasts.Max = defaults.Toasts.Max
	}
	if c.Toasts.DefaultDuration == "" {
		c.Toasts.DefaultDuration = defaults.Toasts.DefaultDuration
	}
	if c.Toasts.Width == 0 {
		c.Toasts.Width = defaults.Toasts.Width
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Toasts.Max < 1 {
		return fmt.Errorf("toasts.max must be at least 1")
	}

	if _, ok := notify.ParseDuration(c.Toasts.DefaultDuration); !ok {
		return fmt.Errorf("toasts.default_duration %q is not a duration (use milliseconds or values like 5s)", c.Toasts.DefaultDuration)
	}

	if c.Toasts.Width < minToastWidth || c.Toasts.Width > maxToastWidth {
		return fmt.Errorf("toasts.width must be between %d and %d", minToastWidth, maxToastWidth)
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not a known theme (available: %v)", c.TUI.Theme, styles.ThemeNames())
	}

	return nil
}
