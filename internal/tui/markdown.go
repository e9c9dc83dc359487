package tui

import (
	"strings"

	"charm.land/glamour/v2"
)

// Prose wider than this is hard to scan in the feed, whatever the terminal
// width.
const maxProseWidth = 96

// proseRenderer renders the tool's markdown blocks (panels and review
// findings) for the activity feed. Glamour renderers are expensive to
// build, so one is cached and recreated only when the wrap width changes.
type proseRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

func (p *proseRenderer) render(content string, width int) string {
	if width > maxProseWidth {
		width = maxProseWidth
	}

	if p.renderer == nil || width != p.width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrapText(content, width)
		}
		p.renderer = r
		p.width = width
	}

	out, err := p.renderer.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	return strings.TrimSuffix(out, "\n")
}
