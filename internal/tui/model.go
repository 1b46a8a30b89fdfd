// Package tui implements the interactive notification tray.
package tui

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/tray/internal/core/config"
	"github.com/colonyops/tray/internal/core/logging"
	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/styles"
)

const copiedToastDuration = 1500 * time.Millisecond

// noSelection is never allocated by the manager.
const noSelection notify.ID = -1

var samples = map[notify.Kind][]string{
	notify.KindSuccess: {"Profile saved", "Upload complete", "Settings applied"},
	notify.KindError:   {"Failed to save changes", "Connection refused", "Permission denied"},
	notify.KindInfo:    {"New message received", "Sync started", "3 updates available"},
	notify.KindWarning: {"Disk space is low", "Session expires soon", "Unsaved changes"},
	notify.KindDefault: {"Hello from the tray", "Something happened", "Ping"},
}

// ConfigReloadedMsg carries a freshly validated config into the tray.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Deps are the collaborators of the tray model.
type Deps struct {
	Manager   *notify.Manager
	Buffer    *SnapshotBuffer
	Config    *config.Config
	Clipboard func(string) error
}

// Model is the bubbletea model of the notification tray.
type Model struct {
	mgr       *notify.Manager
	buffer    *SnapshotBuffer
	clipboard func(string) error
	log       zerolog.Logger

	keys   keyMap
	help   help.Model
	toasts *ToastView

	snapshot notify.Snapshot
	cursor   int
	sample   int

	width  int
	height int

	showHelp       bool
	pendingCompose bool
	quitting       bool
}

// New creates a tray model bound to the manager in deps.
func New(deps Deps) Model {
	width := defaultToastWidth
	if deps.Config != nil {
		width = deps.Config.Toasts.Width
	}

	m := Model{
		mgr:       deps.Manager,
		buffer:    deps.Buffer,
		clipboard: deps.Clipboard,
		log:       logging.Component("tui"),
		keys:      defaultKeyMap(),
		help:      help.New(),
		toasts:    NewToastView(width),
	}
	m.snapshot = m.mgr.Snapshot()
	m.applyConfig(deps.Config)
	return m
}

// PendingCompose reports whether the tray quit to open the compose form.
func (m Model) PendingCompose() bool {
	return m.pendingCompose
}

// Snapshot returns the snapshot the tray currently renders.
func (m Model) Snapshot() notify.Snapshot {
	return m.snapshot
}

// Selected returns the id under the cursor, or false when the tray is empty.
func (m Model) Selected() (notify.ID, bool) {
	if len(m.snapshot.Items) == 0 {
		return noSelection, false
	}
	return m.snapshot.Items[m.cursor].ID, true
}

func (m Model) Init() tea.Cmd {
	if m.buffer == nil {
		return nil
	}
	return m.buffer.WaitForSignal()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case snapshotReadyMsg:
		if snap, ok := m.buffer.Take(); ok {
			m.apply(snap)
		}
		return m, m.buffer.WaitForSignal()
	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Close):
			m.showHelp = false
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Compose):
		m.pendingCompose = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Success):
		m.fire(notify.KindSuccess)
	case key.Matches(msg, m.keys.Error):
		m.fire(notify.KindError)
	case key.Matches(msg, m.keys.Info):
		m.fire(notify.KindInfo)
	case key.Matches(msg, m.keys.Warning):
		m.fire(notify.KindWarning)
	case key.Matches(msg, m.keys.Default):
		m.fire(notify.KindDefault)
	case key.Matches(msg, m.keys.Persistent):
		m.mgr.Info("Pinned until dismissed", notify.Persistent())
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snapshot.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Dismiss):
		if id, ok := m.Selected(); ok {
			m.mgr.Remove(id)
		}
	case key.Matches(msg, m.keys.DismissTop):
		if n := len(m.snapshot.Items); n > 0 {
			m.mgr.Remove(m.snapshot.Items[n-1].ID)
		}
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Clear):
		m.mgr.ClearAll()
	default:
		return m, nil
	}

	m.apply(m.mgr.Snapshot())
	return m, nil
}

func (m *Model) fire(kind notify.Kind) {
	msgs := samples[kind]
	m.mgr.NotifyKind(kind, msgs[m.sample%len(msgs)])
	m.sample++
}

func (m *Model) copySelected() {
	if m.clipboard == nil || len(m.snapshot.Items) == 0 {
		return
	}

	text := m.snapshot.Items[m.cursor].Message
	if err := m.clipboard(text); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		m.mgr.Error(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	m.mgr.Success(styles.IconCopied+" Copied to clipboard", notify.WithDuration(copiedToastDuration))
}

// apply installs snap if it is newer than the rendered one and keeps the
// cursor on the same notification when it survived.
func (m *Model) apply(snap notify.Snapshot) {
	if snap.Version < m.snapshot.Version {
		return
	}

	selected, hadSelection := m.Selected()
	m.snapshot = snap

	if hadSelection {
		for i, n := range snap.Items {
			if n.ID == selected {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = min(m.cursor, max(len(snap.Items)-1, 0))
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if p, ok := styles.GetPalette(cfg.TUI.Theme); ok {
		styles.SetTheme(p)
	}
	m.toasts.SetWidth(cfg.Toasts.Width)
	m.mgr.SetDefaultDuration(cfg.Toasts.Duration())

	if cfg.Toasts.Max != m.mgr.Capacity() {
		m.log.Info().
			Int("configured", cfg.Toasts.Max).
			Int("active", m.mgr.Capacity()).
			Msg("toasts.max takes effect after restart")
	}
}
