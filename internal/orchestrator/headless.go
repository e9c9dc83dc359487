package orchestrator

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// LogDisplay is a plain-text Display for headless runs. Output goes to a
// single writer as line-oriented text; interactive prompts are answered by
// the orchestrator's dismiss defaults since nobody is watching.
type LogDisplay struct {
	mu sync.Mutex
	w  io.Writer

	// Resolver answers prompts when no operator is present. The run
	// command wires it to the orchestrator's dismiss methods.
	Resolver func(kind string)
}

// NewLogDisplay creates a headless display writing to w.
func NewLogDisplay(w io.Writer) *LogDisplay {
	return &LogDisplay{w: w}
}

var _ Display = (*LogDisplay)(nil)

func (d *LogDisplay) line(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, format+"\n", args...)
}

func (d *LogDisplay) SetStatus(kind StatusKind, text string) {
	d.line("status: %s %s", kind, text)
}

func (d *LogDisplay) SetProgress(text string) {
	d.line("progress: %s", text)
}

func (d *LogDisplay) AppendLog(kind, text string) {
	d.line("%s: %s", kind, text)
}

func (d *LogDisplay) SetSummary(provider, language string) {
	d.line("summary: provider=%s language=%s", provider, language)
}

func (d *LogDisplay) SetFiles(files []string) {
	d.line("staged: %s", strings.Join(files, ", "))
}

func (d *LogDisplay) AppendPanel(title, content string) {
	d.line("%s:\n%s", title, content)
}

func (d *LogDisplay) AppendToolOutput(output, language, status string) {
	d.line("tool output (%s):\n%s", status, output)
}

func (d *LogDisplay) AppendReview(text string, files []string) {
	d.line("review:\n%s", text)
}

func (d *LogDisplay) SetMessage(current, original string) {
	d.line("message:\n%s", current)
}

func (d *LogDisplay) ShowCommitControls(prompt string) {
	d.line("prompt: %s", prompt)
	if d.Resolver != nil {
		d.Resolver("commit")
	}
}

func (d *LogDisplay) HideCommitControls() {}

func (d *LogDisplay) ShowConfirm(prompt string, defaultYes bool) {
	d.line("prompt: %s (default %v)", prompt, defaultYes)
	if d.Resolver != nil {
		d.Resolver("confirm")
	}
}

func (d *LogDisplay) ShowChoice(prompt string, choices []string, defaultChoice string) {
	d.line("prompt: %s [%s] (default %s)", prompt, strings.Join(choices, "/"), defaultChoice)
	if d.Resolver != nil {
		d.Resolver("choice")
	}
}

func (d *LogDisplay) Notify(text string) {
	d.line("notice: %s", text)
}

func (d *LogDisplay) Forward(ev protocol.Event) {
	d.line("%s: %s", ev.Kind, string(ev.Raw))
}

func (d *LogDisplay) Reset() {}

func (d *LogDisplay) Focus() {}
