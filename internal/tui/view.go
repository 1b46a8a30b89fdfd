package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tray/internal/core/styles"
	"github.com/colonyops/tray/internal/tui/components"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting || m.pendingCompose {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	selected := noSelection
	if id, ok := m.Selected(); ok {
		selected = id
	}

	content := m.toasts.Overlay(m.renderBackground(w, h), m.snapshot.Items, selected, w)
	if m.showHelp {
		content = components.NewHelpDialog("Keys", m.keys.helpSections()).Overlay(content, w, h)
	}
	return content
}

func (m Model) renderBackground(w, h int) string {
	header := styles.HeaderStyle.Render(styles.IconTray + " tray")
	status := styles.StatusStyle.Render(fmt.Sprintf("%d/%d", len(m.snapshot.Items), m.mgr.Capacity()))

	var body string
	if len(m.snapshot.Items) == 0 {
		body = styles.EmptyStyle.Render("No notifications. Press i to post one.")
	}

	helpView := m.help.View(m.keys)

	top := lipgloss.JoinVertical(lipgloss.Left, header, status, "", body)
	gap := max(h-lipgloss.Height(top)-lipgloss.Height(helpView), 0)

	return lipgloss.NewStyle().
		Width(w).
		Render(top + strings.Repeat("\n", gap) + "\n" + helpView)
}
