package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/juniormartinxo/seshat-tui/internal/orchestrator"
)

// StatusBar displays workspace info (left) and workflow status (right).
type StatusBar struct {
	width     int
	height    int
	workspace string
	provider  string
	language  string
	kind      orchestrator.StatusKind
	text      string
	progress  string
	spinner   spinner.Model
	ticking   bool
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(workspace string) *StatusBar {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(colorPrimary)),
	)
	return &StatusBar{
		workspace: workspace,
		spinner:   s,
	}
}

// Draw renders the status bar.
// Format: seshat | workspace | provider/lang     [spinner] status text
func (s *StatusBar) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return nil
	}

	left := s.buildLeft()
	right := s.buildRight()

	totalWidth := area.Dx() - 2 // padding
	padding := totalWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	spacer := ""
	for i := 0; i < padding; i++ {
		spacer += " "
	}

	DrawStyled(scr, area, styleStatusBar, left+spacer+right)
	return nil
}

func (s *StatusBar) buildLeft() string {
	title := styleHeaderTitle.Render("seshat")
	sep := styleHeaderSeparator.Render(" | ")
	left := title + sep + styleHeaderInfo.Render(s.workspace)

	if s.provider != "" {
		meta := s.provider
		if s.language != "" {
			meta += "/" + s.language
		}
		left += sep + styleDim.Render(meta)
	}
	return left
}

func (s *StatusBar) buildRight() string {
	var right string
	if s.kind == orchestrator.StatusRunning {
		right = s.spinner.View() + " "
	}

	text := s.text
	if s.kind == orchestrator.StatusRunning && s.progress != "" {
		text = s.progress
	}
	if text == "" {
		text = s.kind.String()
	}

	switch s.kind {
	case orchestrator.StatusRunning:
		right += styleStatusRunning.Render(text)
	case orchestrator.StatusSuccess:
		right += styleStatusSuccess.Render("✓ " + text)
	case orchestrator.StatusError:
		right += styleStatusError.Render("✗ " + text)
	default:
		right += styleStatusIdle.Render(text)
	}
	return right
}

// SetSize updates the component dimensions.
func (s *StatusBar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetStatus updates the workflow status. Starting to run kicks off the
// spinner tick chain.
func (s *StatusBar) SetStatus(kind orchestrator.StatusKind, text string) tea.Cmd {
	s.kind = kind
	s.text = text
	if kind != orchestrator.StatusRunning {
		s.progress = ""
		s.ticking = false
		return nil
	}
	if !s.ticking {
		s.ticking = true
		return s.spinner.Tick
	}
	return nil
}

// SetProgress updates the transient progress text shown while running.
func (s *StatusBar) SetProgress(text string) {
	s.progress = text
}

// SetSummary records the tool run metadata.
func (s *StatusBar) SetSummary(provider, language string) {
	s.provider = provider
	s.language = language
}

// Reset clears per-workflow state, keeping the workspace name.
func (s *StatusBar) Reset() {
	s.kind = orchestrator.StatusIdle
	s.text = ""
	s.progress = ""
	s.provider = ""
	s.language = ""
	s.ticking = false
}

// Update advances the spinner while running.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.kind != orchestrator.StatusRunning {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}
