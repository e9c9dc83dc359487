package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// Sidebar lists the staged files the workflow is committing.
type Sidebar struct {
	viewport viewport.Model
	files    []string
	width    int
	height   int
	focused  bool
}

// NewSidebar creates an empty sidebar.
func NewSidebar() *Sidebar {
	return &Sidebar{viewport: viewport.New()}
}

// Draw renders the staged file list.
func (s *Sidebar) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	title := "Staged"
	if len(s.files) > 0 {
		title = fmt.Sprintf("Staged %s", styleFileCount.Render(fmt.Sprintf("(%d)", len(s.files))))
	}
	inner := DrawPanel(scr, area, title, s.focused)

	if len(s.files) == 0 {
		DrawText(scr, inner, styleEmptyState.Render("No staged files"))
		return nil
	}

	DrawText(scr, inner, s.viewport.View())
	return nil
}

// Update handles scroll input when focused.
func (s *Sidebar) Update(msg tea.Msg) tea.Cmd {
	if !s.focused {
		return nil
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// SetSize updates the component dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.SetWidth(width)
	innerHeight := height - 1
	if innerHeight < 1 {
		innerHeight = 1
	}
	s.viewport.SetHeight(innerHeight)
	s.refresh()
}

// SetFocus updates the focus state.
func (s *Sidebar) SetFocus(focused bool) { s.focused = focused }

// IsFocused returns the focus state.
func (s *Sidebar) IsFocused() bool { return s.focused }

// SetFiles replaces the staged file list.
func (s *Sidebar) SetFiles(files []string) {
	s.files = files
	s.refresh()
}

// Clear empties the file list.
func (s *Sidebar) Clear() {
	s.files = nil
	s.viewport.SetContent("")
}

func (s *Sidebar) refresh() {
	var b strings.Builder
	for i, f := range s.files {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styleFileEntry.Render(truncateString(f, s.width)))
	}
	s.viewport.SetContent(b.String())
}
