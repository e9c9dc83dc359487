package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// ConfirmResolvedMsg reports the operator's answer to a yes/no prompt.
type ConfirmResolvedMsg struct {
	Yes bool
}

// ConfirmDismissedMsg reports that the prompt was dismissed without an
// answer.
type ConfirmDismissedMsg struct{}

// ConfirmDialog is a modal yes/no prompt for the tool's generic
// confirmations.
type ConfirmDialog struct {
	prompt     string
	defaultYes bool
	selected   bool // true = yes highlighted
	visible    bool
}

// NewConfirmDialog creates a hidden confirm dialog.
func NewConfirmDialog() *ConfirmDialog {
	return &ConfirmDialog{}
}

// Show displays the prompt with the given default answer highlighted.
func (d *ConfirmDialog) Show(prompt string, defaultYes bool) {
	d.prompt = prompt
	d.defaultYes = defaultYes
	d.selected = defaultYes
	d.visible = true
}

// Hide closes the dialog.
func (d *ConfirmDialog) Hide() { d.visible = false }

// IsVisible returns whether the dialog is showing.
func (d *ConfirmDialog) IsVisible() bool { return d.visible }

// Update handles dialog input.
func (d *ConfirmDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.visible {
		return nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "y":
		d.Hide()
		return func() tea.Msg { return ConfirmResolvedMsg{Yes: true} }
	case "n":
		d.Hide()
		return func() tea.Msg { return ConfirmResolvedMsg{Yes: false} }
	case "left", "right", "tab":
		d.selected = !d.selected
	case "enter":
		d.Hide()
		yes := d.selected
		return func() tea.Msg { return ConfirmResolvedMsg{Yes: yes} }
	case "esc":
		d.Hide()
		return func() tea.Msg { return ConfirmDismissedMsg{} }
	}
	return nil
}

// Draw renders the dialog centered on screen.
func (d *ConfirmDialog) Draw(scr uv.Screen, area uv.Rectangle) {
	if !d.visible {
		return
	}

	yes, no := "Yes", "No"
	activeStyle := lipgloss.NewStyle().
		Foreground(colorBase).
		Background(colorPrimary).
		Padding(0, 2)
	idleStyle := lipgloss.NewStyle().
		Foreground(colorTextDim).
		Padding(0, 2)

	if d.selected {
		yes, no = activeStyle.Render(yes), idleStyle.Render(no)
	} else {
		yes, no = idleStyle.Render(yes), activeStyle.Render(no)
	}

	drawModal(scr, area, "Confirm", d.prompt, yes+"  "+no)
}

// ChoiceResolvedMsg reports the operator's selection from a choice prompt.
type ChoiceResolvedMsg struct {
	Choice string
}

// ChoiceDismissedMsg reports that the choice prompt was dismissed.
type ChoiceDismissedMsg struct{}

// ChoiceDialog is a modal single-select list for the tool's choice prompts.
type ChoiceDialog struct {
	prompt  string
	choices []string
	index   int
	visible bool
}

// NewChoiceDialog creates a hidden choice dialog.
func NewChoiceDialog() *ChoiceDialog {
	return &ChoiceDialog{}
}

// Show displays the prompt with the default choice preselected.
func (d *ChoiceDialog) Show(prompt string, choices []string, defaultChoice string) {
	d.prompt = prompt
	d.choices = choices
	d.index = 0
	for i, c := range choices {
		if c == defaultChoice {
			d.index = i
			break
		}
	}
	d.visible = true
}

// Hide closes the dialog.
func (d *ChoiceDialog) Hide() { d.visible = false }

// IsVisible returns whether the dialog is showing.
func (d *ChoiceDialog) IsVisible() bool { return d.visible }

// Update handles dialog input.
func (d *ChoiceDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.visible {
		return nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if d.index > 0 {
			d.index--
		}
	case "down", "j":
		if d.index < len(d.choices)-1 {
			d.index++
		}
	case "enter":
		d.Hide()
		choice := d.choices[d.index]
		return func() tea.Msg { return ChoiceResolvedMsg{Choice: choice} }
	case "esc":
		d.Hide()
		return func() tea.Msg { return ChoiceDismissedMsg{} }
	}
	return nil
}

// Draw renders the dialog centered on screen.
func (d *ChoiceDialog) Draw(scr uv.Screen, area uv.Rectangle) {
	if !d.visible {
		return
	}

	var b strings.Builder
	for i, c := range d.choices {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == d.index {
			b.WriteString(styleHeaderTitle.Render("› " + c))
		} else {
			b.WriteString(styleDim.Render("  " + c))
		}
	}

	drawModal(scr, area, "Choose", d.prompt, b.String())
}

// drawModal renders a bordered, centered modal box with a title, a message,
// and a body block.
func drawModal(scr uv.Screen, area uv.Rectangle, title, message, body string) {
	contentWidth := lipgloss.Width(message)
	if w := lipgloss.Width(body); w > contentWidth {
		contentWidth = w
	}
	if w := lipgloss.Width(title); w > contentWidth {
		contentWidth = w
	}
	maxWidth := area.Dx() - 8
	if contentWidth > maxWidth && maxWidth > 0 {
		contentWidth = maxWidth
		message = wrapText(message, contentWidth)
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Width(contentWidth).
		Align(lipgloss.Center)
	messageStyle := lipgloss.NewStyle().
		Foreground(colorText).
		Width(contentWidth).
		Align(lipgloss.Center)
	bodyStyle := lipgloss.NewStyle().
		Width(contentWidth).
		Align(lipgloss.Center)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render(title),
		"",
		messageStyle.Render(message),
		"",
		bodyStyle.Render(body),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 3).
		Render(content)

	boxWidth := lipgloss.Width(box)
	boxHeight := lipgloss.Height(box)
	x := (area.Dx() - boxWidth) / 2
	y := (area.Dy() - boxHeight) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	modalArea := uv.Rectangle{
		Min: uv.Position{X: area.Min.X + x, Y: area.Min.Y + y},
		Max: uv.Position{X: area.Min.X + x + boxWidth, Y: area.Min.Y + y + boxHeight},
	}
	uv.NewStyledString(box).Draw(scr, modalArea)
}
