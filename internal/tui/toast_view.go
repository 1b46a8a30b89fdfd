package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/styles"
)

const defaultToastWidth = 50

// ToastView renders a notification snapshot as a stack of toasts and
// composites it as an overlay.
type ToastView struct {
	width int
}

func NewToastView(width int) *ToastView {
	if width <= 0 {
		width = defaultToastWidth
	}
	return &ToastView{width: width}
}

// SetWidth changes the rendered width of each toast.
func (v *ToastView) SetWidth(width int) {
	if width > 0 {
		v.width = width
	}
}

// View renders items stacked vertically in store order. The toast whose id
// equals selected is drawn with the heavier selection border; pass a
// negative id for no selection.
func (v *ToastView) View(items []notify.Notification, selected notify.ID) string {
	if len(items) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(items))
	for _, n := range items {
		rendered = append(rendered, v.renderToast(n, n.ID == selected))
	}

	return strings.Join(rendered, "\n")
}

func (v *ToastView) renderToast(n notify.Notification, selected bool) string {
	style := styles.ToastStyle(n.Style)
	if selected {
		style = styles.SelectedToastStyle(n.Style)
	}

	content := n.Icon + " " + n.Message
	if n.Persistent() {
		content += " " + styles.ToastDurationStyle.Render(styles.IconPin)
	}

	return style.Width(v.width).Render(content)
}

// Overlay composites the toast stack over background in the upper-right corner.
func (v *ToastView) Overlay(background string, items []notify.Notification, selected notify.ID, width int) string {
	toastContent := v.View(items, selected)
	if toastContent == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(toastContent)

	toastW := lipgloss.Width(toastContent)
	rightX := max(width-toastW-1, 0)

	toastLayer.X(rightX).Y(0).Z(2)

	compositor := lipgloss.NewCompositor(bgLayer, toastLayer)
	return compositor.Render()
}
