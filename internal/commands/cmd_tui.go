package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tray/internal/core/config"
	"github.com/colonyops/tray/internal/tui"
)

type TuiCmd struct {
	flags *Flags

	mu      sync.Mutex
	program *tea.Program
	config  *config.Config
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Open the interactive notification tray",
		UsageText:   "tray tui",
		Description: "Opens the demo tray. Press ? inside the tray for key bindings.",
		Action:      cmd.run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tray tui requires an interactive terminal; use 'tray run' for headless playback")
	}

	cfg, err := cmd.flags.LoadConfig()
	if err != nil {
		return err
	}
	cmd.setConfig(cfg)

	mgr := NewManager(cfg)
	defer mgr.Close()

	buffer := tui.NewSnapshotBuffer()
	unsubscribe := mgr.Subscribe(buffer.Push)
	defer unsubscribe()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := config.NewWatcher(cmd.flags.ConfigPath).Watch(watchCtx, cmd.reload); err != nil {
			log.Warn().Err(err).Msg("config hot reload disabled")
		}
	}()

	for {
		m := tui.New(tui.Deps{
			Manager:   mgr,
			Buffer:    buffer,
			Config:    cmd.currentConfig(),
			Clipboard: clipboard.WriteAll,
		})
		p := tea.NewProgram(m)
		cmd.setProgram(p)

		finalModel, err := p.Run()
		cmd.setProgram(nil)
		if err != nil {
			return fmt.Errorf("run tui: %w", err)
		}

		model := finalModel.(tui.Model)

		// Timers keep running against the shared manager while the form is up.
		if model.PendingCompose() {
			draft := tui.NewCompose(cmd.currentConfig().Toasts.Duration())
			ok, err := draft.Run()
			if err != nil {
				log.Error().Err(err).Msg("compose form failed")
				mgr.Error(fmt.Sprintf("Compose failed: %v", err))
			} else if ok {
				draft.Post(mgr)
			}
			continue // Restart TUI
		}

		break // Normal exit
	}

	return nil
}

func (cmd *TuiCmd) reload(cfg *config.Config) {
	cmd.mu.Lock()
	cmd.config = cfg
	p := cmd.program
	cmd.mu.Unlock()

	if p != nil {
		p.Send(tui.ConfigReloadedMsg{Config: cfg})
	}
}

func (cmd *TuiCmd) setProgram(p *tea.Program) {
	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	cmd.program = p
}

func (cmd *TuiCmd) setConfig(cfg *config.Config) {
	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	cmd.config = cfg
}

func (cmd *TuiCmd) currentConfig() *config.Config {
	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	return cmd.config
}
