package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// fakeDisplay records every render call for assertions.
type fakeDisplay struct {
	mu    sync.Mutex
	calls []displayCall
}

type displayCall struct {
	method string
	text   string
	kind   string
	yes    bool
	list   []string
	event  protocol.Event
}

func (d *fakeDisplay) record(c displayCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, c)
}

func (d *fakeDisplay) SetStatus(kind StatusKind, text string) {
	d.record(displayCall{method: "SetStatus", kind: kind.String(), text: text})
}
func (d *fakeDisplay) SetProgress(text string) {
	d.record(displayCall{method: "SetProgress", text: text})
}
func (d *fakeDisplay) AppendLog(kind, text string) {
	d.record(displayCall{method: "AppendLog", kind: kind, text: text})
}
func (d *fakeDisplay) SetSummary(provider, language string) {
	d.record(displayCall{method: "SetSummary", text: provider + "/" + language})
}
func (d *fakeDisplay) SetFiles(files []string) {
	d.record(displayCall{method: "SetFiles", list: files})
}
func (d *fakeDisplay) AppendPanel(title, content string) {
	d.record(displayCall{method: "AppendPanel", text: title})
}
func (d *fakeDisplay) AppendToolOutput(output, language, status string) {
	d.record(displayCall{method: "AppendToolOutput", text: output, kind: status})
}
func (d *fakeDisplay) AppendReview(text string, files []string) {
	d.record(displayCall{method: "AppendReview", text: text, list: files})
}
func (d *fakeDisplay) SetMessage(current, original string) {
	d.record(displayCall{method: "SetMessage", text: current})
}
func (d *fakeDisplay) ShowCommitControls(prompt string) {
	d.record(displayCall{method: "ShowCommitControls", text: prompt})
}
func (d *fakeDisplay) HideCommitControls() {
	d.record(displayCall{method: "HideCommitControls"})
}
func (d *fakeDisplay) ShowConfirm(prompt string, defaultYes bool) {
	d.record(displayCall{method: "ShowConfirm", text: prompt, yes: defaultYes})
}
func (d *fakeDisplay) ShowChoice(prompt string, choices []string, defaultChoice string) {
	d.record(displayCall{method: "ShowChoice", text: prompt, list: choices, kind: defaultChoice})
}
func (d *fakeDisplay) Notify(text string) {
	d.record(displayCall{method: "Notify", text: text})
}
func (d *fakeDisplay) Forward(ev protocol.Event) {
	d.record(displayCall{method: "Forward", kind: ev.Kind, event: ev})
}
func (d *fakeDisplay) Reset() { d.record(displayCall{method: "Reset"}) }
func (d *fakeDisplay) Focus() { d.record(displayCall{method: "Focus"}) }

// count returns how many calls to method were recorded.
func (d *fakeDisplay) count(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

// last returns the most recent call to method.
func (d *fakeDisplay) last(method string) (displayCall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].method == method {
			return d.calls[i], true
		}
	}
	return displayCall{}, false
}

// lastStatus returns the most recent SetStatus call.
func (d *fakeDisplay) lastStatus() (kind, text string) {
	c, ok := d.last("SetStatus")
	if !ok {
		return "", ""
	}
	return c.kind, c.text
}

// fakeRecorder captures history calls.
type fakeRecorder struct {
	mu        sync.Mutex
	started   int
	committed []committedRecord
	cancelled []string
	failed    []string
}

type committedRecord struct {
	message string
	summary string
	manual  bool
}

func (r *fakeRecorder) WorkflowStarted(ctx context.Context, workspace string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return nil
}

func (r *fakeRecorder) WorkflowCommitted(ctx context.Context, workspace, message, summary string, manual bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, committedRecord{message: message, summary: summary, manual: manual})
	return nil
}

func (r *fakeRecorder) WorkflowCancelled(ctx context.Context, workspace, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, reason)
	return nil
}

func (r *fakeRecorder) WorkflowFailed(ctx context.Context, workspace, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, detail)
	return nil
}

func (r *fakeRecorder) snapshot() (started int, committed []committedRecord, cancelled, failed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started, append([]committedRecord(nil), r.committed...),
		append([]string(nil), r.cancelled...), append([]string(nil), r.failed...)
}

// fakeCommitter counts manual commit invocations.
type fakeCommitter struct {
	mu       sync.Mutex
	messages []string
	output   string
	err      error
	delay    time.Duration
}

func (f *fakeCommitter) commit(ctx context.Context, workDir, message string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.output, f.err
}

func (f *fakeCommitter) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

// newTestOrchestrator wires an orchestrator to a shell script standing in
// for the tool.
func newTestOrchestrator(t *testing.T, script string, committer *fakeCommitter) (*Orchestrator, *fakeDisplay, *fakeRecorder) {
	t.Helper()
	display := &fakeDisplay{}
	recorder := &fakeRecorder{}
	cfg := Config{
		Binary:    "/bin/sh",
		Args:      []string{"-c", script},
		WorkDir:   t.TempDir(),
		Workspace: "test-workspace",
		Linger:    50 * time.Millisecond,
		Display:   display,
		Recorder:  recorder,
	}
	if committer != nil {
		cfg.Commit = committer.commit
	}
	orch := New(cfg)
	orch.Start()
	t.Cleanup(orch.Close)
	return orch, display, recorder
}

func waitPhase(t *testing.T, orch *Orchestrator, want Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return orch.State().Phase == want
	}, 3*time.Second, 10*time.Millisecond, "phase never reached %s", want)
}

func TestConfirmSuggestedMessageLetsToolCommit(t *testing.T) {
	script := `
echo '{"kind":"summary","data":{"provider":"openai","language":"en"}}'
echo '{"kind":"message_ready","message":"feat: add retry logic"}'
echo '{"kind":"confirm_needed","message":"Create commit with this message?","default":true}'
read answer
if [ "$answer" = "y" ]; then
  echo '{"kind":"committed","summary":"feat: add retry logic"}'
fi
`
	committer := &fakeCommitter{}
	orch, display, recorder := newTestOrchestrator(t, script, committer)

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)

	c, ok := display.last("ShowCommitControls")
	require.True(t, ok)
	assert.Contains(t, c.text, "Create commit")

	snap := orch.State()
	assert.Equal(t, "feat: add retry logic", snap.Suggested)
	assert.Equal(t, "feat: add retry logic", snap.Edited)

	orch.Confirm()

	require.Eventually(t, func() bool {
		kind, _ := display.lastStatus()
		return kind == "success"
	}, 3*time.Second, 10*time.Millisecond)

	_, committed, _, _ := recorder.snapshot()
	require.Len(t, committed, 1)
	assert.Equal(t, "feat: add retry logic", committed[0].message)
	assert.False(t, committed[0].manual)
	assert.Empty(t, committer.calls(), "manual commit must not run for an unedited message")
}

func TestEditedMessageTriggersManualFallback(t *testing.T) {
	script := `
echo '{"kind":"message_ready","message":"feat: original"}'
echo '{"kind":"confirm_needed","message":"Commit this message?","default":true}'
read answer
if [ "$answer" = "n" ]; then
  echo '{"kind":"cancelled","reason":"user declined"}'
fi
`
	// Delay keeps the fallback in flight while the tool exits, exercising
	// the close-during-fallback rule.
	committer := &fakeCommitter{output: "1 file changed", delay: 100 * time.Millisecond}
	orch, display, recorder := newTestOrchestrator(t, script, committer)

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)

	orch.EditMessage("feat: original, with context")
	orch.Confirm()

	require.Eventually(t, func() bool {
		_, text := display.lastStatus()
		return text == "Committed edited message"
	}, 3*time.Second, 10*time.Millisecond)

	require.Equal(t, []string{"feat: original, with context"}, committer.calls())

	_, committed, cancelled, failed := recorder.snapshot()
	require.Len(t, committed, 1)
	assert.True(t, committed[0].manual)
	assert.Equal(t, "feat: original, with context", committed[0].message)
	assert.Empty(t, cancelled, "tool's own cancellation must be suppressed during fallback")
	assert.Empty(t, failed)
}

func TestManualFallbackFailure(t *testing.T) {
	script := `
echo '{"kind":"message_ready","message":"fix: thing"}'
echo '{"kind":"confirm_needed","message":"commit?","default":true}'
read answer
echo '{"kind":"cancelled","reason":"user declined"}'
`
	committer := &fakeCommitter{output: "nothing to commit", err: assert.AnError}
	orch, display, recorder := newTestOrchestrator(t, script, committer)

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)

	orch.EditMessage("fix: the other thing")
	orch.Confirm()

	require.Eventually(t, func() bool {
		_, text := display.lastStatus()
		return text == "Manual commit failed"
	}, 3*time.Second, 10*time.Millisecond)

	_, committed, _, failed := recorder.snapshot()
	assert.Empty(t, committed)
	require.Len(t, failed, 1)

	out, ok := display.last("AppendToolOutput")
	require.True(t, ok)
	assert.Equal(t, "nothing to commit", out.text)
	assert.Equal(t, "error", out.kind)
}

func TestToolEventsAfterDeclineDoNotOverrideFallback(t *testing.T) {
	// After "n" the tool emits both a bogus committed and its cancelled
	// before exiting; neither may decide the outcome of the fallback,
	// whether they land during the fallback or after it completes.
	script := `
echo '{"kind":"message_ready","message":"fix: parser"}'
echo '{"kind":"confirm_needed","message":"commit?","default":true}'
read answer
echo '{"kind":"committed","summary":"fix: parser"}'
echo '{"kind":"cancelled","reason":"user declined"}'
`
	committer := &fakeCommitter{output: "pre-commit hook failed", err: assert.AnError, delay: 100 * time.Millisecond}
	orch, display, recorder := newTestOrchestrator(t, script, committer)

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)

	orch.EditMessage("fix: parser and lexer")
	orch.Confirm()

	require.Eventually(t, func() bool {
		_, text := display.lastStatus()
		return text == "Manual commit failed"
	}, 3*time.Second, 10*time.Millisecond)

	// The failure must survive the tool's terminal events and its exit.
	time.Sleep(150 * time.Millisecond)
	kind, text := display.lastStatus()
	assert.Equal(t, "error", kind)
	assert.Equal(t, "Manual commit failed", text)

	_, committed, cancelled, failed := recorder.snapshot()
	assert.Empty(t, committed, "the tool's committed after decline is noise")
	assert.Empty(t, cancelled, "the tool's cancelled after decline is noise")
	require.Len(t, failed, 1)
}

func TestCancelDeclinesAndRecords(t *testing.T) {
	script := `
echo '{"kind":"message_ready","message":"chore: deps"}'
echo '{"kind":"confirm_needed","message":"Commit?","default":true}'
read answer
if [ "$answer" = "n" ]; then
  echo '{"kind":"cancelled","reason":"declined by user"}'
fi
`
	orch, display, recorder := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)

	orch.Cancel()

	require.Eventually(t, func() bool {
		_, _, cancelled, _ := recorder.snapshot()
		return len(cancelled) == 1
	}, 3*time.Second, 10*time.Millisecond)

	_, _, cancelled, _ := recorder.snapshot()
	assert.Equal(t, []string{"declined by user"}, cancelled)

	kind, text := display.lastStatus()
	assert.Equal(t, "error", kind)
	assert.Contains(t, text, "declined by user")
	assert.GreaterOrEqual(t, display.count("HideCommitControls"), 1)
}

func TestDuplicateStartRejected(t *testing.T) {
	// The tool blocks on stdin until killed.
	script := `
echo '{"kind":"info","message":"working"}'
read answer
`
	orch, display, _ := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())
	require.Eventually(t, func() bool {
		return orch.State().Running
	}, 3*time.Second, 10*time.Millisecond)

	err := orch.StartWorkflow()
	require.ErrorIs(t, err, ErrWorkflowRunning)
	assert.Equal(t, 1, display.count("Focus"))
	assert.Equal(t, 1, display.count("Reset"), "rejected start must not reset the display")
}

func TestGenericConfirmPrompt(t *testing.T) {
	// No message_ready beforehand, so the prompt is generic even though a
	// later one mentioning commit would not be.
	script := `
echo '{"kind":"confirm_needed","message":"Stage all modified files?","default":false}'
read answer
if [ "$answer" = "y" ]; then
  echo '{"kind":"success","message":"staged"}'
fi
`
	orch, display, _ := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())

	require.Eventually(t, func() bool {
		return display.count("ShowConfirm") == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Zero(t, display.count("ShowCommitControls"))

	c, _ := display.last("ShowConfirm")
	assert.False(t, c.yes)

	orch.ResolveConfirm(true)

	require.Eventually(t, func() bool {
		c, ok := display.last("AppendLog")
		return ok && c.kind == protocol.KindSuccess && c.text == "staged"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestChoicePromptDefaultOnDismiss(t *testing.T) {
	script := `
echo '{"kind":"choice_needed","message":"Pick a style","choices":["conventional","plain"],"default":"conventional"}'
read answer
echo "{\"kind\":\"info\",\"message\":\"style $answer\"}"
`
	orch, display, _ := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())

	require.Eventually(t, func() bool {
		return display.count("ShowChoice") == 1
	}, 3*time.Second, 10*time.Millisecond)

	orch.DismissChoice()

	require.Eventually(t, func() bool {
		c, ok := display.last("AppendLog")
		return ok && c.text == "style conventional"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestNonZeroExitWithoutTerminalEvent(t *testing.T) {
	script := `
echo '{"kind":"info","message":"probing"}'
exit 3
`
	orch, display, recorder := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())

	require.Eventually(t, func() bool {
		kind, _ := display.lastStatus()
		return kind == "error"
	}, 3*time.Second, 10*time.Millisecond)

	_, text := display.lastStatus()
	assert.Contains(t, text, "code 3")

	_, _, _, failed := recorder.snapshot()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0], "code 3")
}

func TestZeroExitWithoutTerminalEvent(t *testing.T) {
	script := `
echo '{"kind":"info","message":"nothing staged"}'
exit 0
`
	orch, display, recorder := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())

	require.Eventually(t, func() bool {
		kind, text := display.lastStatus()
		return kind == "success" && text == "Done"
	}, 3*time.Second, 10*time.Millisecond)

	// A clean exit with no commit or cancellation records no outcome.
	_, committed, cancelled, failed := recorder.snapshot()
	assert.Empty(t, committed)
	assert.Empty(t, cancelled)
	assert.Empty(t, failed)
}

func TestEmptyEditedMessageAcceptsSuggestion(t *testing.T) {
	script := `
echo '{"kind":"message_ready","message":"feat: tidy"}'
echo '{"kind":"confirm_needed","message":"Commit?","default":true}'
read answer
if [ "$answer" = "y" ]; then
  echo '{"kind":"committed","summary":"feat: tidy"}'
fi
`
	committer := &fakeCommitter{}
	orch, display, recorder := newTestOrchestrator(t, script, committer)

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)

	// Clearing the message field is not an edit; the suggestion stands.
	orch.EditMessage("   ")
	orch.Confirm()

	require.Eventually(t, func() bool {
		kind, _ := display.lastStatus()
		return kind == "success"
	}, 3*time.Second, 10*time.Millisecond)

	assert.Empty(t, committer.calls(), "blank edit must not trigger the manual fallback")
	_, committed, _, _ := recorder.snapshot()
	require.Len(t, committed, 1)
	assert.False(t, committed[0].manual)
}

func TestLingerResetReturnsToIdle(t *testing.T) {
	script := `
echo '{"kind":"message_ready","message":"docs: readme"}'
echo '{"kind":"confirm_needed","message":"commit now?"}'
read answer
echo '{"kind":"committed","summary":"docs: readme"}'
`
	orch, _, _ := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())
	waitPhase(t, orch, PhaseAwaitingConfirmation)
	orch.Confirm()

	waitPhase(t, orch, PhaseIdle)
	snap := orch.State()
	assert.Empty(t, snap.Suggested)
	assert.Empty(t, snap.Edited)
	assert.False(t, snap.Running)

	// A fresh workflow is accepted again.
	err := orch.StartWorkflow()
	assert.NoError(t, err)
}

func TestUnknownEventForwarded(t *testing.T) {
	script := `
echo '{"kind":"telemetry","payload":{"n":1}}'
echo 'plain progress text from a legacy build'
`
	orch, display, _ := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())

	require.Eventually(t, func() bool {
		return display.count("Forward") >= 1
	}, 3*time.Second, 10*time.Millisecond)

	c, _ := display.last("Forward")
	assert.Equal(t, "telemetry", c.kind)
	assert.Contains(t, string(c.event.Raw), `"payload"`)

	// The non-JSON line degrades to an info log entry.
	require.Eventually(t, func() bool {
		c, ok := display.last("AppendLog")
		return ok && c.kind == protocol.KindInfo && strings.Contains(c.text, "legacy build")
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStderrSurfacesAsWarning(t *testing.T) {
	script := `
echo 'deprecation: --json is implied' >&2
echo '{"kind":"info","message":"ok"}'
`
	orch, display, _ := newTestOrchestrator(t, script, &fakeCommitter{})

	require.NoError(t, orch.StartWorkflow())

	require.Eventually(t, func() bool {
		d := display
		d.mu.Lock()
		defer d.mu.Unlock()
		for _, c := range d.calls {
			if c.method == "AppendLog" && c.kind == protocol.KindWarning && strings.Contains(c.text, "deprecation") {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSpawnFailureReported(t *testing.T) {
	display := &fakeDisplay{}
	recorder := &fakeRecorder{}
	orch := New(Config{
		Binary:    "/nonexistent/seshat-binary",
		WorkDir:   t.TempDir(),
		Workspace: "test-workspace",
		Display:   display,
		Recorder:  recorder,
	})
	orch.Start()
	t.Cleanup(orch.Close)

	err := orch.StartWorkflow()
	require.Error(t, err)

	kind, _ := display.lastStatus()
	assert.Equal(t, "error", kind)

	_, _, _, failed := recorder.snapshot()
	require.Len(t, failed, 1)
}
