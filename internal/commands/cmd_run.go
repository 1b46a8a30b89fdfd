package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tray/internal/script"
	"github.com/colonyops/tray/pkg/iojson"
)

type RunCmd struct {
	flags *Flags

	waitExpiry   bool
	quiet        bool
	examples     []string
	listExamples bool
	input        iojson.FileReader[script.Script]
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{
		flags: flags,
		input: iojson.FileReader[script.Script]{
			Decode: func(data []byte, s *script.Script) error {
				parsed, err := script.Parse(data)
				if err != nil {
					return err
				}
				*s = parsed
				return nil
			},
		},
	}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Play notification scripts without a terminal",
		UsageText: "tray run [options] <script-or-glob>...",
		Description: `Plays YAML scripts against a fresh notification manager and prints every
published snapshot as JSON. Arguments may be doublestar globs such as
'examples/**/*.yaml'. With no arguments and no --example the script is read
from --file or stdin.

Steps:
  - notify: {kind: info, message: Saved, duration: 5000}
  - notify: [error, Disk full, 0]
  - remove: 0
  - clear: true
  - wait: 1.5s
  - snapshot: true`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "wait-expiry",
				Usage:       "keep running until every timed notification has expired",
				Destination: &cmd.waitExpiry,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "only print snapshots requested by snapshot steps",
				Destination: &cmd.quiet,
			},
			&cli.StringSliceFlag{
				Name:        "example",
				Aliases:     []string{"e"},
				Usage:       "play a bundled example script (repeatable)",
				Destination: &cmd.examples,
			},
			&cli.BoolFlag{
				Name:        "list-examples",
				Usage:       "list bundled example scripts and exit",
				Destination: &cmd.listExamples,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.listExamples {
		names, err := script.Examples()
		if err != nil {
			return err
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(c.Root().Writer, name)
		}
		return nil
	}

	cfg, err := cmd.flags.LoadConfig()
	if err != nil {
		return err
	}

	scripts, err := cmd.load(c.Args().Slice())
	if err != nil {
		return err
	}

	mgr := NewManager(cfg)
	defer mgr.Close()

	printer := script.NewPrinter(c.Root().Writer, c.Root().ErrWriter)
	if !cmd.quiet {
		unsubscribe := mgr.Subscribe(printer.Print)
		defer unsubscribe()
	}

	runner := script.NewRunner(mgr, printer, script.Sleep)
	for _, s := range scripts {
		if err := runner.Run(ctx, s); err != nil {
			return fmt.Errorf("run script: %w", err)
		}
	}

	if cmd.waitExpiry {
		log.Debug().Int("pending", mgr.Pending()).Msg("waiting for expiry")
		if err := runner.WaitExpiry(ctx); err != nil {
			return fmt.Errorf("wait for expiry: %w", err)
		}
	}

	return nil
}

func (cmd *RunCmd) load(args []string) ([]script.Script, error) {
	var scripts []script.Script
	for _, name := range cmd.examples {
		s, err := script.Example(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}

	if len(args) == 0 && len(scripts) > 0 {
		return scripts, nil
	}

	if len(args) == 0 {
		s, err := cmd.input.Read()
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		if s.Name == "" {
			s.Name = cmd.input.Source()
		}
		return []script.Script{s}, nil
	}

	paths, err := script.Expand(args)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		s, err := script.Load(path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
