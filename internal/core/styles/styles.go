// Package styles provides shared lipgloss v2 styles for the tray.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/colonyops/tray/internal/core/notify"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

var (
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	EmptyStyle         lipgloss.Style
	StatusStyle        lipgloss.Style
	ToastCloseStyle    lipgloss.Style
	ToastDurationStyle lipgloss.Style

	DialogStyle        lipgloss.Style
	DialogTitleStyle   lipgloss.Style
	DialogSectionStyle lipgloss.Style
	DialogKeyStyle     lipgloss.Style
	DialogDescStyle    lipgloss.Style

	toastStyles map[string]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	EmptyStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)
	StatusStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	ToastCloseStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ToastDurationStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)

	DialogStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	DialogTitleStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Bold(true)
	DialogSectionStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)
	DialogKeyStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DialogDescStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)

	toastStyles = map[string]lipgloss.Style{
		notify.StyleSuccess: toastStyle(p.Success),
		notify.StyleError:   toastStyle(p.Error),
		notify.StyleInfo:    toastStyle(p.Primary),
		notify.StyleWarning: toastStyle(p.Warning),
		notify.StyleMuted:   toastStyle(p.Muted),
	}
}

func toastStyle(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Foreground(c).
		Padding(0, 1)
}

// ToastStyle resolves a notification style role into a lipgloss style.
// Unknown roles use the muted style.
func ToastStyle(role string) lipgloss.Style {
	if s, ok := toastStyles[role]; ok {
		return s
	}
	return toastStyles[notify.StyleMuted]
}

// SelectedToastStyle is ToastStyle with a heavier border marking the cursor.
func SelectedToastStyle(role string) lipgloss.Style {
	return ToastStyle(role).Border(lipgloss.ThickBorder()).Bold(true)
}

// Hex returns the #rrggbb form of c, or an empty string if c is nil.
func Hex(c color.Color) string {
	if c == nil {
		return ""
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return ""
	}
	return cc.Hex()
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
