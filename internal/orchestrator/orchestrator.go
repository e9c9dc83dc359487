// Package orchestrator implements the commit-workflow state machine. It
// consumes protocol events from a process session and operator actions from
// the display, answers the tool's interactive prompts, and falls back to a
// direct git commit when the operator edits the proposed message before
// approving it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "github.com/juniormartinxo/seshat-tui/internal/errors"
	"github.com/juniormartinxo/seshat-tui/internal/git"
	"github.com/juniormartinxo/seshat-tui/internal/hooks"
	"github.com/juniormartinxo/seshat-tui/internal/logger"
	"github.com/juniormartinxo/seshat-tui/internal/process"
	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// ErrWorkflowRunning is returned by StartWorkflow while a workflow is
// already active. Starting is rejected, never queued.
var ErrWorkflowRunning = errors.New("a commit workflow is already running")

// DefaultLinger is how long terminal status stays on screen before the
// session record resets.
const DefaultLinger = 1800 * time.Millisecond

// Phase is the workflow state. One phase at a time; transitions happen only
// on the run loop.
type Phase int

const (
	// PhaseIdle means no workflow is active.
	PhaseIdle Phase = iota
	// PhaseRunning means the tool subprocess is being driven.
	PhaseRunning
	// PhaseAwaitingConfirmation means the commit-confirmation prompt is
	// outstanding and the operator holds the next move.
	PhaseAwaitingConfirmation
	// PhaseManualFallback means the tool's commit was declined and a direct
	// git commit with the edited message is in flight.
	PhaseManualFallback
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseAwaitingConfirmation:
		return "awaiting_confirmation"
	case PhaseManualFallback:
		return "manual_fallback"
	default:
		return "unknown"
	}
}

// Recorder persists workflow outcomes. The history store implements it; a
// nil Recorder disables recording.
type Recorder interface {
	WorkflowStarted(ctx context.Context, workspace string) error
	WorkflowCommitted(ctx context.Context, workspace, message, summary string, manual bool) error
	WorkflowCancelled(ctx context.Context, workspace, reason string) error
	WorkflowFailed(ctx context.Context, workspace, detail string) error
}

// CommitFunc runs the manual commit fallback and returns combined output.
type CommitFunc func(ctx context.Context, workDir, message string) (string, error)

// Config holds configuration for creating an Orchestrator.
type Config struct {
	Binary    string        // seshat executable
	Args      []string      // tool arguments; defaults to process.CommitArgs
	WorkDir   string        // workspace root
	Workspace string        // workspace key for history recording
	Linger    time.Duration // terminal status linger; defaults to DefaultLinger
	Display   Display       // required
	Recorder  Recorder      // optional
	Hooks     *hooks.Config // optional
	Commit    CommitFunc    // defaults to git.Commit
}

// actionKind discriminates queued operator/internal actions.
type actionKind int

const (
	actionStart actionKind = iota
	actionConfirm
	actionCancel
	actionEdit
	actionConfirmResult
	actionConfirmDismiss
	actionChoiceResult
	actionChoiceDismiss
	actionManualDone
	actionReset
	actionState
)

type action struct {
	kind   actionKind
	text   string
	yes    bool
	output string
	err    error
	reply  chan error
	state  chan Snapshot
}

// Snapshot is a read-only view of the session, taken on the run loop.
type Snapshot struct {
	Phase     Phase
	Suggested string
	Edited    string
	Running   bool
}

// Orchestrator drives at most one commit workflow at a time. All state
// below the config is owned by the run loop goroutine.
type Orchestrator struct {
	cfg     Config
	actions chan action
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	// run loop state
	phase       Phase
	proc        *process.Session
	procCh      <-chan process.Notification
	suggested   string
	edited      string
	hasMessage  bool
	sawTerminal bool
	declined    bool // tool commit declined; its follow-up events are noise
	pending     *protocol.Event // outstanding generic confirm/choice prompt
	resetTimer  *time.Timer
}

// New creates an Orchestrator. Call Start to begin processing and Close to
// shut down.
func New(cfg Config) *Orchestrator {
	if cfg.Linger <= 0 {
		cfg.Linger = DefaultLinger
	}
	if cfg.Commit == nil {
		cfg.Commit = git.Commit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:     cfg,
		actions: make(chan action, 64),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start launches the run loop.
func (o *Orchestrator) Start() {
	go o.run()
}

// Close kills any live subprocess, stops the run loop, and waits for it to
// exit. Idempotent.
func (o *Orchestrator) Close() {
	o.cancel()
	<-o.done
}

// StartWorkflow begins a commit workflow. It returns ErrWorkflowRunning if
// one is active (the display is re-focused instead), or the spawn error if
// the tool could not be started.
func (o *Orchestrator) StartWorkflow() error {
	reply := make(chan error, 1)
	if !o.post(action{kind: actionStart, reply: reply}) {
		return errors.New("orchestrator closed")
	}
	select {
	case err := <-reply:
		return err
	case <-o.ctx.Done():
		return errors.New("orchestrator closed")
	}
}

// Confirm approves the proposed commit (operator confirm action).
func (o *Orchestrator) Confirm() { o.post(action{kind: actionConfirm}) }

// Cancel declines the proposed commit (operator cancel action).
func (o *Orchestrator) Cancel() { o.post(action{kind: actionCancel}) }

// EditMessage records the operator's latest edit of the commit message.
func (o *Orchestrator) EditMessage(text string) {
	o.post(action{kind: actionEdit, text: text})
}

// ResolveConfirm answers an outstanding generic yes/no prompt.
func (o *Orchestrator) ResolveConfirm(yes bool) {
	o.post(action{kind: actionConfirmResult, yes: yes})
}

// DismissConfirm dismisses a generic yes/no prompt without a choice; the
// event's declared default answers it.
func (o *Orchestrator) DismissConfirm() { o.post(action{kind: actionConfirmDismiss}) }

// ResolveChoice answers an outstanding choice prompt with the selected text.
func (o *Orchestrator) ResolveChoice(choice string) {
	o.post(action{kind: actionChoiceResult, text: choice})
}

// DismissChoice dismisses a choice prompt; the declared default or the
// first offered choice answers it.
func (o *Orchestrator) DismissChoice() { o.post(action{kind: actionChoiceDismiss}) }

// State returns a snapshot of the session, synchronized through the run
// loop. Mostly useful in tests: by the time it returns, every previously
// posted action has been applied.
func (o *Orchestrator) State() Snapshot {
	state := make(chan Snapshot, 1)
	if !o.post(action{kind: actionState, state: state}) {
		return Snapshot{}
	}
	select {
	case s := <-state:
		return s
	case <-o.ctx.Done():
		return Snapshot{}
	}
}

// post enqueues an action unless the orchestrator is closed.
func (o *Orchestrator) post(a action) bool {
	select {
	case o.actions <- a:
		return true
	case <-o.ctx.Done():
		return false
	}
}

// run is the single consumer of process notifications and operator actions.
// Transitions execute to completion before the next input is processed.
func (o *Orchestrator) run() {
	defer close(o.done)
	for {
		select {
		case <-o.ctx.Done():
			o.shutdown()
			return
		case n, ok := <-o.procCh:
			if !ok {
				o.procCh = nil
				continue
			}
			o.handleNotification(n)
		case a := <-o.actions:
			o.handleAction(a)
		}
	}
}

// shutdown is the terminal cleanup when the orchestrator closes.
func (o *Orchestrator) shutdown() {
	if o.resetTimer != nil {
		o.resetTimer.Stop()
	}
	if o.proc != nil {
		o.proc.Kill()
		drain(o.procCh)
		o.proc = nil
		o.procCh = nil
	}
	logger.Debug("Orchestrator stopped")
}

// drain discards a released session's remaining notifications in the
// background so its readers never block on a full channel.
func drain(ch <-chan process.Notification) {
	if ch == nil {
		return
	}
	go func() {
		for range ch {
		}
	}()
}

func (o *Orchestrator) handleAction(a action) {
	switch a.kind {
	case actionStart:
		a.reply <- o.startWorkflow()
	case actionConfirm:
		o.operatorConfirm()
	case actionCancel:
		o.operatorCancel()
	case actionEdit:
		if o.phase != PhaseIdle {
			o.edited = a.text
		}
	case actionConfirmResult:
		o.answerConfirm(a.yes)
	case actionConfirmDismiss:
		o.dismissConfirm()
	case actionChoiceResult:
		o.answerChoice(a.text)
	case actionChoiceDismiss:
		o.dismissChoice()
	case actionManualDone:
		o.finishManualFallback(a.output, a.err)
	case actionReset:
		o.resetSession()
	case actionState:
		a.state <- Snapshot{
			Phase:     o.phase,
			Suggested: o.suggested,
			Edited:    o.edited,
			Running:   o.proc != nil && o.proc.Running(),
		}
	}
}

// startWorkflow handles the Idle -> Running transition.
func (o *Orchestrator) startWorkflow() error {
	if o.phase == PhaseManualFallback || (o.proc != nil && o.proc.Running()) {
		logger.Info("Rejecting duplicate workflow start")
		o.cfg.Display.Focus()
		return ErrWorkflowRunning
	}

	// A lingering terminal status is superseded by the new workflow.
	if o.resetTimer != nil {
		o.resetTimer.Stop()
		o.resetTimer = nil
	}
	o.resetSession()
	drain(o.procCh)

	o.cfg.Display.Reset()
	o.cfg.Display.SetStatus(StatusRunning, "Generating commit message")

	if o.cfg.Hooks != nil {
		out, err := hooks.Execute(o.ctx, o.cfg.Hooks.Hooks.PreWorkflow, o.cfg.WorkDir, hooks.Variables{
			Workspace: o.cfg.WorkDir,
		})
		if err != nil && !ierr.IsTransient(err) {
			return err
		}
		if out != "" {
			kind := protocol.KindInfo
			if err != nil {
				kind = protocol.KindWarning
			}
			o.cfg.Display.AppendLog(kind, strings.TrimRight(out, "\n"))
		}
	}

	o.record(func(r Recorder) error {
		return r.WorkflowStarted(o.ctx, o.cfg.Workspace)
	})

	proc := process.New(process.Config{
		Binary:  o.cfg.Binary,
		Args:    o.cfg.Args,
		WorkDir: o.cfg.WorkDir,
	})
	if err := proc.Start(); err != nil {
		logger.Error("Failed to start tool: %v", err)
		o.cfg.Display.SetStatus(StatusError, fmt.Sprintf("Failed to start %s", o.cfg.Binary))
		o.cfg.Display.Notify(fmt.Sprintf("Could not start %s: %v", o.cfg.Binary, err))
		o.record(func(r Recorder) error {
			return r.WorkflowFailed(o.ctx, o.cfg.Workspace, err.Error())
		})
		drain(proc.Notifications())
		return err
	}

	o.proc = proc
	o.procCh = proc.Notifications()
	o.phase = PhaseRunning
	logger.Info("Workflow started in %s", o.cfg.WorkDir)
	return nil
}

func (o *Orchestrator) handleNotification(n process.Notification) {
	switch n.Type {
	case process.NotifyEvent:
		o.handleEvent(n.Event)
	case process.NotifyStderr:
		o.cfg.Display.AppendLog(protocol.KindWarning, n.Line)
	case process.NotifyFailed:
		o.cfg.Display.SetStatus(StatusError, "Tool transport fault")
		o.cfg.Display.Notify(fmt.Sprintf("Tool failure: %v", n.Err))
	case process.NotifyClosed:
		o.handleClose(n.Exit)
	}
}

// handleEvent applies one tool event to the session.
func (o *Orchestrator) handleEvent(ev protocol.Event) {
	if !ev.Known() {
		// Open extensibility: unknown kinds pass through untouched.
		o.cfg.Display.Forward(ev)
		return
	}

	switch ev.Kind {
	case protocol.KindSummary:
		o.cfg.Display.SetSummary(stringField(ev.Data, "provider"), stringField(ev.Data, "language"))

	case protocol.KindProgressStarted, protocol.KindProgressUpdate, protocol.KindProgressDone:
		o.cfg.Display.SetProgress(ev.Message)

	case protocol.KindStep, protocol.KindInfo, protocol.KindWarning, protocol.KindSuccess:
		o.cfg.Display.AppendLog(ev.Kind, ev.Message)

	case protocol.KindPanel:
		o.cfg.Display.AppendPanel(ev.Title, ev.Content)

	case protocol.KindFileList:
		o.cfg.Display.SetFiles(ev.Files)

	case protocol.KindToolOutput:
		o.cfg.Display.AppendToolOutput(ev.Output, ev.Language, ev.Status)

	case protocol.KindReviewOutput:
		o.cfg.Display.AppendReview(ev.Text, ev.Files)

	case protocol.KindMessageReady:
		o.suggested = ev.Message
		o.edited = ev.Message
		o.hasMessage = true
		o.cfg.Display.SetMessage(ev.Message, ev.Message)

	case protocol.KindConfirmNeeded:
		o.handleConfirmNeeded(ev)

	case protocol.KindChoiceNeeded:
		o.handleChoiceNeeded(ev)

	case protocol.KindError:
		if o.declined {
			// Expected: the tool reports an error after its commit was
			// declined.
			logger.Debug("Suppressing tool error after declined commit: %s", ev.Message)
			return
		}
		o.cfg.Display.AppendLog(protocol.KindError, ev.Message)
		o.cfg.Display.SetStatus(StatusError, ev.Message)
		o.cfg.Display.Notify(ev.Message)

	case protocol.KindCommitted:
		o.handleCommitted(ev)

	case protocol.KindCancelled:
		o.handleCancelled(ev)
	}
}

// handleConfirmNeeded routes a yes/no prompt. The commit-confirmation step
// is recognized by a proposed message being ready and the prompt mentioning
// "commit"; see the protocol notes in DESIGN.md for why this stays a
// substring test.
func (o *Orchestrator) handleConfirmNeeded(ev protocol.Event) {
	if o.hasMessage && strings.Contains(strings.ToLower(ev.Message), "commit") {
		o.phase = PhaseAwaitingConfirmation
		o.cfg.Display.ShowCommitControls(ev.Message)
		return
	}

	o.pending = &ev
	def, _ := ev.DefaultBool()
	o.cfg.Display.ShowConfirm(ev.Message, def)
}

func (o *Orchestrator) handleChoiceNeeded(ev protocol.Event) {
	if len(ev.Choices) == 0 {
		logger.Warn("Ignoring choice_needed with no choices")
		return
	}
	o.pending = &ev
	def, _ := ev.DefaultChoice()
	o.cfg.Display.ShowChoice(ev.Message, ev.Choices, def)
}

func (o *Orchestrator) handleCommitted(ev protocol.Event) {
	if o.declined {
		// The tool was told "n"; anything it claims to have committed
		// afterwards must not override the fallback's outcome.
		logger.Debug("Suppressing tool commit after declined commit")
		return
	}
	o.sawTerminal = true
	o.phase = PhaseRunning
	o.hasMessage = false
	o.cfg.Display.HideCommitControls()
	o.cfg.Display.SetStatus(StatusSuccess, ev.Summary)
	o.cfg.Display.Notify("Commit created")
	o.record(func(r Recorder) error {
		return r.WorkflowCommitted(o.ctx, o.cfg.Workspace, o.edited, ev.Summary, false)
	})
	o.runPostCommitHook(o.edited)
	o.scheduleReset()
}

func (o *Orchestrator) handleCancelled(ev protocol.Event) {
	if o.declined {
		// Declining the tool's commit makes it cancel itself; that is not
		// a real cancellation, however long the fallback takes.
		logger.Debug("Suppressing tool cancellation after declined commit")
		return
	}

	o.sawTerminal = true
	o.hasMessage = false
	o.cfg.Display.HideCommitControls()
	o.phase = PhaseRunning
	reason := ev.Reason
	if reason == "" {
		reason = "no reason given"
	}
	o.cfg.Display.SetStatus(StatusError, fmt.Sprintf("Cancelled: %s", reason))
	o.cfg.Display.Notify(fmt.Sprintf("Workflow cancelled: %s", reason))
	o.record(func(r Recorder) error {
		return r.WorkflowCancelled(o.ctx, o.cfg.Workspace, reason)
	})
	o.scheduleReset()
}

// handleClose applies the process-close transition and releases the session.
func (o *Orchestrator) handleClose(exit process.ExitStatus) {
	logger.Debug("Tool closed: code=%d signal=%q phase=%s", exit.Code, exit.Signal, o.phase)

	o.cfg.Display.HideCommitControls()
	o.proc = nil
	o.procCh = nil
	o.pending = nil

	if o.phase == PhaseManualFallback {
		// The fallback's own completion decides the outcome.
		return
	}
	if o.phase == PhaseAwaitingConfirmation {
		o.phase = PhaseRunning
	}
	if o.sawTerminal {
		return
	}

	if exit.Code == 0 {
		o.cfg.Display.SetStatus(StatusSuccess, "Done")
	} else {
		detail := fmt.Sprintf("tool exited with code %d", exit.Code)
		if exit.Signal != "" {
			detail = fmt.Sprintf("tool terminated by signal %s", exit.Signal)
		}
		o.cfg.Display.SetStatus(StatusError, detail)
		o.cfg.Display.Notify(detail)
		o.record(func(r Recorder) error {
			return r.WorkflowFailed(o.ctx, o.cfg.Workspace, detail)
		})
	}
	o.scheduleReset()
}

// operatorConfirm compares the edited message against the suggestion and
// either lets the tool commit or runs the manual fallback.
func (o *Orchestrator) operatorConfirm() {
	if o.phase != PhaseAwaitingConfirmation {
		return
	}

	edited := strings.TrimSpace(o.edited)
	suggested := strings.TrimSpace(o.suggested)

	if edited == "" || edited == suggested {
		o.phase = PhaseRunning
		o.respond("y")
		return
	}

	if o.cfg.WorkDir == "" {
		logger.Error("Manual fallback aborted: workspace root unknown")
		o.phase = PhaseRunning
		o.hasMessage = false
		o.cfg.Display.HideCommitControls()
		o.cfg.Display.SetStatus(StatusError, "Workspace root unknown; cannot commit manually")
		return
	}

	o.phase = PhaseManualFallback
	o.declined = true
	o.respond("n")
	o.cfg.Display.HideCommitControls()
	o.cfg.Display.SetStatus(StatusRunning, "Committing edited message")
	logger.Info("Manual fallback: committing edited message")

	// Joined task: the goroutine always posts a completion action, so the
	// fallback phase is guaranteed to clear even on panic.
	go func(workDir, message string) {
		var output string
		err := ierr.Recover(func() error {
			var commitErr error
			output, commitErr = o.cfg.Commit(o.ctx, workDir, message)
			return commitErr
		})
		o.post(action{kind: actionManualDone, output: output, err: err})
	}(o.cfg.WorkDir, edited)
}

// finishManualFallback applies the fallback outcome. It is the only exit
// from PhaseManualFallback.
func (o *Orchestrator) finishManualFallback(output string, err error) {
	if o.phase != PhaseManualFallback {
		return
	}
	o.phase = PhaseRunning
	o.hasMessage = false
	// The fallback decided the outcome; the process-close transition must
	// not restate it.
	o.sawTerminal = true

	if output != "" {
		status := "success"
		if err != nil {
			status = "error"
		}
		o.cfg.Display.AppendToolOutput(output, "", status)
	}

	if err != nil {
		logger.Error("Manual commit failed: %v", err)
		o.cfg.Display.SetStatus(StatusError, "Manual commit failed")
		o.cfg.Display.Notify(fmt.Sprintf("Manual commit failed: %v", err))
		o.record(func(r Recorder) error {
			return r.WorkflowFailed(o.ctx, o.cfg.Workspace, err.Error())
		})
		o.scheduleReset()
		return
	}

	o.cfg.Display.SetStatus(StatusSuccess, "Committed edited message")
	o.cfg.Display.Notify("Commit created with edited message")
	o.record(func(r Recorder) error {
		return r.WorkflowCommitted(o.ctx, o.cfg.Workspace, strings.TrimSpace(o.edited), "", true)
	})
	o.runPostCommitHook(strings.TrimSpace(o.edited))
	o.scheduleReset()
}

// operatorCancel declines the proposed commit.
func (o *Orchestrator) operatorCancel() {
	if o.phase != PhaseAwaitingConfirmation {
		return
	}
	o.phase = PhaseRunning
	o.hasMessage = false
	o.cfg.Display.HideCommitControls()
	o.respond("n")
}

// answerConfirm resolves a generic yes/no prompt.
func (o *Orchestrator) answerConfirm(yes bool) {
	if o.pending == nil || o.pending.Kind != protocol.KindConfirmNeeded {
		return
	}
	o.pending = nil
	if yes {
		o.respond("y")
	} else {
		o.respond("n")
	}
}

// dismissConfirm answers a dismissed yes/no prompt with its declared
// default.
func (o *Orchestrator) dismissConfirm() {
	if o.pending == nil || o.pending.Kind != protocol.KindConfirmNeeded {
		return
	}
	def, _ := o.pending.DefaultBool()
	o.pending = nil
	if def {
		o.respond("y")
	} else {
		o.respond("n")
	}
}

// answerChoice resolves a choice prompt with the selected text.
func (o *Orchestrator) answerChoice(choice string) {
	if o.pending == nil || o.pending.Kind != protocol.KindChoiceNeeded {
		return
	}
	o.pending = nil
	o.respond(choice)
}

// dismissChoice answers a dismissed choice prompt with its declared default
// or the first offered choice.
func (o *Orchestrator) dismissChoice() {
	if o.pending == nil || o.pending.Kind != protocol.KindChoiceNeeded {
		return
	}
	def, ok := o.pending.DefaultChoice()
	if !ok && len(o.pending.Choices) > 0 {
		def = o.pending.Choices[0]
	}
	o.pending = nil
	o.respond(def)
}

func (o *Orchestrator) respond(text string) {
	if o.proc == nil {
		logger.Debug("Dropping response %q: session released", text)
		return
	}
	if !o.proc.Respond(text) {
		logger.Debug("Response %q dropped by transport", text)
	}
}

// scheduleReset arms the linger timer that returns the session to Idle.
func (o *Orchestrator) scheduleReset() {
	if o.resetTimer != nil {
		o.resetTimer.Stop()
	}
	o.resetTimer = time.AfterFunc(o.cfg.Linger, func() {
		o.post(action{kind: actionReset})
	})
}

// resetSession clears the session record back to the empty Idle state.
func (o *Orchestrator) resetSession() {
	o.phase = PhaseIdle
	o.suggested = ""
	o.edited = ""
	o.hasMessage = false
	o.sawTerminal = false
	o.declined = false
	o.pending = nil
}

// runPostCommitHook runs the optional post_commit hook in the background
// and surfaces its output as a log entry.
func (o *Orchestrator) runPostCommitHook(message string) {
	if o.cfg.Hooks == nil || o.cfg.Hooks.Hooks.PostCommit == nil {
		return
	}
	hook := o.cfg.Hooks.Hooks.PostCommit
	go func() {
		_ = ierr.Recover(func() error {
			out, err := hooks.Execute(o.ctx, hook, o.cfg.WorkDir, hooks.Variables{
				Workspace: o.cfg.WorkDir,
				Message:   message,
			})
			if err != nil && !ierr.IsTransient(err) {
				return err
			}
			if out != "" {
				kind := protocol.KindInfo
				if err != nil {
					kind = protocol.KindWarning
				}
				o.cfg.Display.AppendLog(kind, strings.TrimRight(out, "\n"))
			}
			return nil
		})
	}()
}

// record invokes the recorder, logging failures instead of surfacing them;
// history is best effort.
func (o *Orchestrator) record(fn func(Recorder) error) {
	if o.cfg.Recorder == nil {
		return
	}
	if err := fn(o.cfg.Recorder); err != nil {
		logger.Warn("History recording failed: %v", err)
	}
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}
