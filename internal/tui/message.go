package tui

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/aymanbagabas/go-udiff"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/editor"
)

// MessagePane holds the editable commit message. While the confirmation is
// pending the operator can rework the text inline, open it in $EDITOR, or
// review a diff against the tool's suggestion.
type MessagePane struct {
	textarea textarea.Model
	original string
	prompt   string
	controls bool
	showDiff bool
	width    int
	height   int
	focused  bool
	tmpFile  string
}

// NewMessagePane creates an empty message pane.
func NewMessagePane() *MessagePane {
	ta := textarea.New()
	ta.Placeholder = "No message proposed yet"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	return &MessagePane{textarea: ta}
}

// Draw renders the message editor, the diff toggle, and the commit prompt.
func (m *MessagePane) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	title := "Commit message"
	if m.Edited() {
		title = "Commit message " + styleMessageEdited.Render("(edited)")
	}
	inner := DrawPanel(scr, area, title, m.focused)

	if m.showDiff && m.Edited() {
		DrawText(scr, inner, m.renderDiff())
		return nil
	}

	footerHeight := 0
	if m.controls && m.prompt != "" {
		footerHeight = 1
	}

	editArea := uv.Rectangle{
		Min: inner.Min,
		Max: uv.Position{X: inner.Max.X, Y: inner.Max.Y - footerHeight},
	}
	DrawText(scr, editArea, m.textarea.View())

	if footerHeight > 0 {
		promptArea := uv.Rectangle{
			Min: uv.Position{X: inner.Min.X, Y: inner.Max.Y - 1},
			Max: inner.Max,
		}
		hint := m.prompt + "  " +
			styleFooterKey.Render("enter") + styleFooterLabel.Render(" commit  ") +
			styleFooterKey.Render("esc") + styleFooterLabel.Render(" cancel")
		DrawText(scr, promptArea, truncateString(hint, promptArea.Dx()))
	}
	return nil
}

// Update handles textarea input while focused.
func (m *MessagePane) Update(msg tea.Msg) tea.Cmd {
	if edited, ok := msg.(MessageEditedMsg); ok {
		m.SetValue(edited.Content)
		if m.tmpFile != "" {
			_ = os.Remove(m.tmpFile)
			m.tmpFile = ""
		}
		return nil
	}
	if !m.focused {
		return nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return cmd
}

// SetSize updates the component dimensions.
func (m *MessagePane) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(width)
	innerHeight := height - 2 // panel header + prompt line
	if innerHeight < 1 {
		innerHeight = 1
	}
	m.textarea.SetHeight(innerHeight)
}

// SetFocus updates the focus state and the textarea cursor.
func (m *MessagePane) SetFocus(focused bool) tea.Cmd {
	m.focused = focused
	if focused {
		return m.textarea.Focus()
	}
	m.textarea.Blur()
	return nil
}

// IsFocused returns the focus state.
func (m *MessagePane) IsFocused() bool { return m.focused }

// SetMessage fills the pane with the proposed message.
func (m *MessagePane) SetMessage(current, original string) {
	m.original = original
	m.textarea.SetValue(current)
	m.showDiff = false
}

// SetValue replaces the message text, keeping the original for diffing.
func (m *MessagePane) SetValue(text string) {
	m.textarea.SetValue(text)
}

// Value returns the current message text.
func (m *MessagePane) Value() string {
	return m.textarea.Value()
}

// Edited reports whether the text differs from the tool's suggestion.
func (m *MessagePane) Edited() bool {
	return strings.TrimSpace(m.textarea.Value()) != strings.TrimSpace(m.original) &&
		strings.TrimSpace(m.textarea.Value()) != ""
}

// ShowControls reveals the commit prompt.
func (m *MessagePane) ShowControls(prompt string) {
	m.controls = true
	m.prompt = prompt
}

// HideControls hides the commit prompt.
func (m *MessagePane) HideControls() {
	m.controls = false
	m.prompt = ""
}

// ControlsVisible reports whether the commit prompt is showing.
func (m *MessagePane) ControlsVisible() bool { return m.controls }

// ToggleDiff flips the suggested-vs-edited diff view.
func (m *MessagePane) ToggleDiff() {
	m.showDiff = !m.showDiff
}

// Clear resets the pane for a fresh workflow.
func (m *MessagePane) Clear() {
	m.original = ""
	m.textarea.SetValue("")
	m.controls = false
	m.prompt = ""
	m.showDiff = false
}

// renderDiff renders a unified diff of the suggestion against the edit.
func (m *MessagePane) renderDiff() string {
	diff := udiff.Unified("suggested", "edited", m.original+"\n", m.textarea.Value()+"\n")
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = styleDiffAdd.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = styleDiffDel.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = styleDim.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// OpenEditor hands the message to $EDITOR through a temp file.
func (m *MessagePane) OpenEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "seshat_message_*.txt")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(m.textarea.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	m.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("seshat-tui", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		m.tmpFile = ""
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return MessageEditedMsg{Content: strings.TrimRight(string(content), "\n")}
	})
}
