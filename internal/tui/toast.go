package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ToastDismissMsg is sent when the toast should be dismissed.
type ToastDismissMsg struct{}

// Toast is a minimal notification component. Shows a message in the
// bottom-right corner that auto-dismisses after 3 seconds.
type Toast struct {
	message   string
	visible   bool
	dismissAt time.Time
}

// NewToast creates a new Toast component.
func NewToast() *Toast {
	return &Toast{}
}

// Show displays a toast with the given message.
func (t *Toast) Show(msg string) tea.Cmd {
	t.message = msg
	t.visible = true
	t.dismissAt = time.Now().Add(3 * time.Second)
	return t.dismissCmd()
}

// IsVisible returns whether the toast is showing.
func (t *Toast) IsVisible() bool {
	return t.visible
}

func (t *Toast) dismissCmd() tea.Cmd {
	remaining := time.Until(t.dismissAt)
	if remaining <= 0 {
		remaining = 1 * time.Millisecond
	}
	return tea.Tick(remaining, func(time.Time) tea.Msg {
		return ToastDismissMsg{}
	})
}

// Update handles dismissal.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(ToastDismissMsg); ok {
		// A later Show may have extended the deadline.
		if time.Now().Before(t.dismissAt) {
			return t.dismissCmd()
		}
		t.visible = false
		t.message = ""
	}
	return nil
}

// View renders the toast, or an empty string when hidden.
func (t *Toast) View(width, height int) string {
	if !t.visible || t.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(colorBase).
		Background(colorWarning).
		Padding(0, 1)

	msg := t.message
	maxWidth := width - 4
	if maxWidth > 0 {
		msg = truncateString(msg, maxWidth)
	}
	return style.Render(msg)
}
