package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// feedEntry is one rendered block in the activity feed.
type feedEntry struct {
	timestamp time.Time
	body      string
}

// ActivityFeed displays the scrolling workflow narrative: log lines,
// markdown panels, tool output, and review findings.
type ActivityFeed struct {
	viewport viewport.Model
	prose    proseRenderer
	entries  []feedEntry
	width    int
	height   int
	focused  bool
	pinned   bool // follow the tail unless the operator scrolled up
}

// NewActivityFeed creates an empty activity feed.
func NewActivityFeed() *ActivityFeed {
	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return &ActivityFeed{
		viewport: vp,
		pinned:   true,
	}
}

// Draw renders the feed inside a titled panel.
func (f *ActivityFeed) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	inner := DrawPanel(scr, area, "Activity", f.focused)

	if len(f.entries) == 0 {
		DrawText(scr, inner, styleEmptyState.Render("Press s to start a commit workflow"))
		return nil
	}

	DrawText(scr, inner, f.viewport.View())

	if f.viewport.TotalLineCount() > f.viewport.Height() {
		DrawScrollIndicator(scr, area, f.viewport.ScrollPercent())
	}
	return nil
}

// Update handles scroll input when the feed is focused.
func (f *ActivityFeed) Update(msg tea.Msg) tea.Cmd {
	if !f.focused {
		return nil
	}
	before := f.viewport.AtBottom()
	var cmd tea.Cmd
	f.viewport, cmd = f.viewport.Update(msg)
	if before != f.viewport.AtBottom() {
		f.pinned = f.viewport.AtBottom()
	}
	return cmd
}

// SetSize updates the component dimensions.
func (f *ActivityFeed) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.viewport.SetWidth(width)
	innerHeight := height - 1 // panel header
	if innerHeight < 1 {
		innerHeight = 1
	}
	f.viewport.SetHeight(innerHeight)
	f.refresh()
}

// SetFocus updates the focus state.
func (f *ActivityFeed) SetFocus(focused bool) { f.focused = focused }

// IsFocused returns the focus state.
func (f *ActivityFeed) IsFocused() bool { return f.focused }

// AddLog appends one classified log line.
func (f *ActivityFeed) AddLog(kind, text string) {
	style := styleLogInfo
	label := "INFO"
	switch kind {
	case protocol.KindStep:
		style, label = styleLogStep, "STEP"
	case protocol.KindWarning:
		style, label = styleLogWarning, "WARN"
	case protocol.KindError:
		style, label = styleLogError, "FAIL"
	case protocol.KindSuccess:
		style, label = styleLogSuccess, " OK "
	}
	f.append(fmt.Sprintf("%s %s", style.Render(label), text))
}

// AddPanel appends a titled markdown block.
func (f *ActivityFeed) AddPanel(title, content string) {
	rendered := f.prose.render(content, f.contentWidth())
	if title != "" {
		rendered = stylePanelTitleFocused.Render(title) + "\n" + rendered
	}
	f.append(rendered)
}

// AddToolOutput appends a highlighted tool output block.
func (f *ActivityFeed) AddToolOutput(output, language, status string) {
	marker := styleToolStatusOK.Render("✓")
	if status == "error" {
		marker = styleToolStatusErr.Render("✗")
	}
	f.append(marker + " " + styleDim.Render("tool output") + "\n" + highlightSource(output, language))
}

// AddReview appends review findings rendered as markdown, with the files
// they concern.
func (f *ActivityFeed) AddReview(text string, files []string) {
	body := f.prose.render(text, f.contentWidth())
	if len(files) > 0 {
		body += "\n" + styleDim.Render("· "+strings.Join(files, ", "))
	}
	f.append(stylePanelTitleFocused.Render("Review") + "\n" + body)
}

// AddForward appends an unrecognized event as raw JSON so nothing the tool
// says is lost.
func (f *ActivityFeed) AddForward(ev protocol.Event) {
	body := string(ev.Raw)
	var pretty map[string]any
	if err := json.Unmarshal(ev.Raw, &pretty); err == nil {
		if b, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			body = string(b)
		}
	}
	f.append(styleDim.Render(ev.Kind) + "\n" + body)
}

// Clear removes all entries.
func (f *ActivityFeed) Clear() {
	f.entries = nil
	f.pinned = true
	f.viewport.SetContent("")
	f.viewport.GotoTop()
}

func (f *ActivityFeed) append(body string) {
	f.entries = append(f.entries, feedEntry{timestamp: time.Now(), body: body})
	f.refresh()
}

func (f *ActivityFeed) refresh() {
	if len(f.entries) == 0 {
		return
	}
	var b strings.Builder
	for i, e := range f.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styleLogTimestamp.Render(e.timestamp.Format("15:04:05")))
		b.WriteByte(' ')
		b.WriteString(e.body)
	}
	f.viewport.SetContent(b.String())
	if f.pinned {
		f.viewport.GotoBottom()
	}
}

func (f *ActivityFeed) contentWidth() int {
	if f.width <= 0 {
		return 80
	}
	return f.width
}
