package styles

import (
	"github.com/charmbracelet/huh"
	lipglossv1 "github.com/charmbracelet/lipgloss"
)

// FormTheme returns a huh theme derived from the active palette. huh still
// renders with lipgloss v1, so colors are passed as hex strings.
func FormTheme() *huh.Theme {
	var (
		primary = lipglossv1.Color(Hex(CurrentPalette.Primary))
		muted   = lipglossv1.Color(Hex(CurrentPalette.Muted))
		success = lipglossv1.Color(Hex(CurrentPalette.Success))
		errc    = lipglossv1.Color(Hex(CurrentPalette.Error))
	)

	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(primary)
	t.Focused.Title = t.Focused.Title.Foreground(primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(muted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(primary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(success)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(errc)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(errc)

	t.Blurred.Title = t.Blurred.Title.Foreground(muted)
	t.Blurred.Description = t.Blurred.Description.Foreground(muted)

	return t
}
