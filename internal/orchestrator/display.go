package orchestrator

import "github.com/juniormartinxo/seshat-tui/internal/protocol"

// StatusKind classifies the workflow status shown by the display.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusRunning
	StatusSuccess
	StatusError
)

// String returns the string representation of a status kind
func (s StatusKind) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Display is the surface the orchestrator renders to. The TUI implements it;
// tests use a recording fake. All methods must be safe to call from the
// orchestrator's run loop and must not block on operator input — operator
// actions come back through the Orchestrator's action methods instead.
type Display interface {
	// SetStatus updates the workflow status line.
	SetStatus(kind StatusKind, text string)
	// SetProgress updates the transient progress text.
	SetProgress(text string)
	// AppendLog appends one classified log line (step, info, warning,
	// error, success).
	AppendLog(kind, text string)
	// SetSummary shows run metadata from the tool's summary event.
	SetSummary(provider, language string)
	// SetFiles replaces the staged file list.
	SetFiles(files []string)
	// AppendPanel appends a free-form titled detail block.
	AppendPanel(title, content string)
	// AppendToolOutput appends a captured tool invocation output block.
	AppendToolOutput(output, language, status string)
	// AppendReview appends review findings.
	AppendReview(text string, files []string)
	// SetMessage fills the editable commit-message field with the current
	// and original values.
	SetMessage(current, original string)
	// ShowCommitControls reveals the confirm/cancel commit actions with the
	// tool's prompt text.
	ShowCommitControls(prompt string)
	// HideCommitControls hides the commit actions.
	HideCommitControls()
	// ShowConfirm presents a yes/no modal for a generic confirmation.
	ShowConfirm(prompt string, defaultYes bool)
	// ShowChoice presents a single-select modal.
	ShowChoice(prompt string, choices []string, defaultChoice string)
	// Notify raises an operator-visible notification.
	Notify(text string)
	// Forward receives events of unknown kind, unmodified.
	Forward(ev protocol.Event)
	// Reset clears all content for a fresh workflow.
	Reset()
	// Focus brings the display to the foreground; used when a duplicate
	// start is rejected.
	Focus()
}
