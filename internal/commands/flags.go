package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/tray/internal/core/config"
	"github.com/colonyops/tray/internal/core/notify"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded on first use by LoadConfig.
	Config *config.Config
}

// LoadConfig loads and validates the config file once and caches it.
func (f *Flags) LoadConfig() (*config.Config, error) {
	if f.Config != nil {
		return f.Config, nil
	}

	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f.Config = cfg
	return cfg, nil
}

// NewManager builds a notification manager sized by cfg.
func NewManager(cfg *config.Config) *notify.Manager {
	return notify.NewManager(
		notify.WithCapacity(cfg.Toasts.Max),
		notify.WithDefaultDuration(cfg.Toasts.Duration()),
	)
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tray", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/tray/tray.log
// On Linux: $XDG_STATE_HOME/tray/tray.log (defaults to ~/.local/state/tray/tray.log)
func DefaultLogFile() string {
	// Check XDG_STATE_HOME first (works on both macOS and Linux)
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "tray", "tray.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "tray", "tray.log")
	}

	return filepath.Join(home, ".local", "state", "tray", "tray.log")
}
