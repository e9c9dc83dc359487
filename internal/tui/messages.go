package tui

import (
	"github.com/juniormartinxo/seshat-tui/internal/orchestrator"
	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// Messages bridging the orchestrator's display calls into the Bubbletea
// update loop. Each one mirrors a Display method.

// StatusMsg updates the workflow status line.
type StatusMsg struct {
	Kind orchestrator.StatusKind
	Text string
}

// ProgressMsg updates the transient progress text.
type ProgressMsg struct {
	Text string
}

// LogMsg appends one classified entry to the activity feed.
type LogMsg struct {
	Kind string
	Text string
}

// SummaryMsg carries run metadata from the tool's summary event.
type SummaryMsg struct {
	Provider string
	Language string
}

// FilesMsg replaces the staged file list.
type FilesMsg struct {
	Files []string
}

// PanelMsg appends a titled markdown block to the feed.
type PanelMsg struct {
	Title   string
	Content string
}

// ToolOutputMsg appends captured tool output to the feed.
type ToolOutputMsg struct {
	Output   string
	Language string
	Status   string
}

// ReviewMsg appends review findings to the feed.
type ReviewMsg struct {
	Text  string
	Files []string
}

// MessageMsg fills the commit message pane.
type MessageMsg struct {
	Current  string
	Original string
}

// CommitControlsMsg shows or hides the confirm/cancel commit actions.
type CommitControlsMsg struct {
	Show   bool
	Prompt string
}

// ConfirmPromptMsg presents a generic yes/no modal.
type ConfirmPromptMsg struct {
	Prompt     string
	DefaultYes bool
}

// ChoicePromptMsg presents a single-select modal.
type ChoicePromptMsg struct {
	Prompt  string
	Choices []string
	Default string
}

// NotifyMsg raises a toast notification.
type NotifyMsg struct {
	Text string
}

// ForwardMsg carries an event of unknown kind, unmodified.
type ForwardMsg struct {
	Event protocol.Event
}

// ResetMsg clears all content for a fresh workflow.
type ResetMsg struct{}

// FocusMsg brings the display to the foreground after a rejected start.
type FocusMsg struct{}

// MessageEditedMsg returns edited content from the external editor.
type MessageEditedMsg struct {
	Content string
}
