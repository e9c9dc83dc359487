package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/juniormartinxo/seshat-tui/internal/orchestrator"
	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// Sender delivers messages into a running Bubbletea program. *tea.Program
// satisfies it; tests use a recording fake.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramDisplay adapts the orchestrator's display calls into Bubbletea
// messages. Every method is a non-blocking Send, so it is safe to call from
// the orchestrator's run loop.
type ProgramDisplay struct {
	sender Sender
}

// NewProgramDisplay creates a display bridge over the given sender.
func NewProgramDisplay(sender Sender) *ProgramDisplay {
	return &ProgramDisplay{sender: sender}
}

var _ orchestrator.Display = (*ProgramDisplay)(nil)

func (d *ProgramDisplay) SetStatus(kind orchestrator.StatusKind, text string) {
	d.sender.Send(StatusMsg{Kind: kind, Text: text})
}

func (d *ProgramDisplay) SetProgress(text string) {
	d.sender.Send(ProgressMsg{Text: text})
}

func (d *ProgramDisplay) AppendLog(kind, text string) {
	d.sender.Send(LogMsg{Kind: kind, Text: text})
}

func (d *ProgramDisplay) SetSummary(provider, language string) {
	d.sender.Send(SummaryMsg{Provider: provider, Language: language})
}

func (d *ProgramDisplay) SetFiles(files []string) {
	d.sender.Send(FilesMsg{Files: files})
}

func (d *ProgramDisplay) AppendPanel(title, content string) {
	d.sender.Send(PanelMsg{Title: title, Content: content})
}

func (d *ProgramDisplay) AppendToolOutput(output, language, status string) {
	d.sender.Send(ToolOutputMsg{Output: output, Language: language, Status: status})
}

func (d *ProgramDisplay) AppendReview(text string, files []string) {
	d.sender.Send(ReviewMsg{Text: text, Files: files})
}

func (d *ProgramDisplay) SetMessage(current, original string) {
	d.sender.Send(MessageMsg{Current: current, Original: original})
}

func (d *ProgramDisplay) ShowCommitControls(prompt string) {
	d.sender.Send(CommitControlsMsg{Show: true, Prompt: prompt})
}

func (d *ProgramDisplay) HideCommitControls() {
	d.sender.Send(CommitControlsMsg{Show: false})
}

func (d *ProgramDisplay) ShowConfirm(prompt string, defaultYes bool) {
	d.sender.Send(ConfirmPromptMsg{Prompt: prompt, DefaultYes: defaultYes})
}

func (d *ProgramDisplay) ShowChoice(prompt string, choices []string, defaultChoice string) {
	d.sender.Send(ChoicePromptMsg{Prompt: prompt, Choices: choices, Default: defaultChoice})
}

func (d *ProgramDisplay) Notify(text string) {
	d.sender.Send(NotifyMsg{Text: text})
}

func (d *ProgramDisplay) Forward(ev protocol.Event) {
	d.sender.Send(ForwardMsg{Event: ev})
}

func (d *ProgramDisplay) Reset() {
	d.sender.Send(ResetMsg{})
}

func (d *ProgramDisplay) Focus() {
	d.sender.Send(FocusMsg{})
}
