package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tray/internal/core/config"
	"github.com/colonyops/tray/internal/core/styles"
	"github.com/colonyops/tray/pkg/iojson"
)

var errInvalidConfig = errors.New("configuration is invalid")

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tray config validate [options]",
				Description: "Validates the configuration file, reporting every invalid field and non-fatal warnings.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validateResult struct {
	Valid    bool                       `json:"valid"`
	Path     string                     `json:"path"`
	Error    string                     `json:"error,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	result := cmd.validate()
	w := c.Root().Writer

	if cmd.format == "json" {
		if !result.Valid {
			if err := iojson.WriteErrorTo(w, "configuration is invalid", map[string]any{
				"path":  result.Path,
				"error": result.Error,
			}); err != nil {
				return err
			}
			return errInvalidConfig
		}
		return iojson.WriteWith(w, c.Root().ErrWriter, result)
	}

	return cmd.outputText(w, result)
}

func (cmd *ConfigValidateCmd) validate() validateResult {
	result := validateResult{Path: cmd.flags.ConfigPath}

	cfg, err := config.Read(cmd.flags.ConfigPath)
	if err == nil {
		err = cfg.ValidateDeep(cmd.flags.ConfigPath)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Valid = true
	result.Warnings = cfg.Warnings()
	return result
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, result validateResult) error {
	var (
		okStyle   = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Success)
		warnStyle = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Warning)
		errStyle  = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Error)
	)

	for _, warn := range result.Warnings {
		_, _ = fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%s: %s", warn.Category, warn.Message)))
		if warn.Item != "" {
			_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}

	if !result.Valid {
		_, _ = fmt.Fprintln(w, errStyle.Render(result.Error))
		return errInvalidConfig
	}

	_, _ = fmt.Fprintln(w, okStyle.Render("Configuration is valid: "+result.Path))
	return nil
}
