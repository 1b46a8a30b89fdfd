package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/colonyops/tray/internal/tui/components"
)

type keyMap struct {
	Success    key.Binding
	Error      key.Binding
	Info       key.Binding
	Warning    key.Binding
	Default    key.Binding
	Persistent key.Binding
	Compose    key.Binding
	Up         key.Binding
	Down       key.Binding
	Dismiss    key.Binding
	DismissTop key.Binding
	Copy       key.Binding
	Clear      key.Binding
	Help       key.Binding
	Close      key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Success:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "success")),
		Error:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "error")),
		Info:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Warning:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warning")),
		Default:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "plain")),
		Persistent: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "sticky")),
		Compose:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "compose")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		DismissTop: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss newest")),
		Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Clear:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Info, k.Compose, k.Dismiss, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	sections := k.helpSections()
	out := make([][]key.Binding, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Bindings)
	}
	return out
}

func (k keyMap) helpSections() []components.HelpSection {
	return []components.HelpSection{
		{Title: "Post", Bindings: []key.Binding{k.Success, k.Error, k.Info, k.Warning, k.Default, k.Persistent, k.Compose}},
		{Title: "Navigate", Bindings: []key.Binding{k.Up, k.Down}},
		{Title: "Manage", Bindings: []key.Binding{k.Dismiss, k.DismissTop, k.Copy, k.Clear}},
		{Title: "General", Bindings: []key.Binding{k.Help, k.Quit}},
	}
}
