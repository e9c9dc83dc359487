package tui

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// LayoutMode selects between the two-column desktop arrangement and the
// stacked compact one.
type LayoutMode int

const (
	LayoutDesktop LayoutMode = iota
	LayoutCompact
)

// CompactWidthBreakpoint is the terminal width below which the sidebar is
// dropped.
const CompactWidthBreakpoint = 100

// SidebarWidth is the fixed sidebar column width in desktop mode.
const SidebarWidth = 32

// messagePaneHeight is the fixed height of the commit message editor.
const messagePaneHeight = 8

// Layout holds the screen rectangles for each region.
type Layout struct {
	Mode    LayoutMode
	Header  uv.Rectangle
	Feed    uv.Rectangle
	Sidebar uv.Rectangle
	Message uv.Rectangle
	Status  uv.Rectangle
	Footer  uv.Rectangle
}

// CalculateLayout splits the terminal into header, feed+sidebar, message
// editor, status bar, and footer.
func CalculateLayout(width, height int) Layout {
	mode := LayoutDesktop
	if width < CompactWidthBreakpoint {
		mode = LayoutCompact
	}

	headerH := 1
	statusH := 1
	footerH := 1
	messageH := messagePaneHeight

	bodyTop := headerH
	bodyBottom := height - statusH - footerH - messageH
	if bodyBottom < bodyTop+3 {
		bodyBottom = bodyTop + 3
	}

	l := Layout{
		Mode:   mode,
		Header: uv.Rect(0, 0, width, headerH),
	}

	feedWidth := width
	if mode == LayoutDesktop {
		feedWidth = width - SidebarWidth - 1
		l.Sidebar = uv.Rect(feedWidth+1, bodyTop, SidebarWidth, bodyBottom-bodyTop)
	}
	l.Feed = uv.Rect(0, bodyTop, feedWidth, bodyBottom-bodyTop)
	l.Message = uv.Rect(0, bodyBottom, width, messageH)
	l.Status = uv.Rect(0, bodyBottom+messageH, width, statusH)
	l.Footer = uv.Rect(0, bodyBottom+messageH+statusH, width, footerH)

	return l
}
