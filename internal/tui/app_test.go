package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

// fakeController records the orchestrator calls the app makes.
type fakeController struct {
	started          int
	confirms         int
	cancels          int
	edits            []string
	resolvedConfirms []bool
	dismissConfirms  int
	resolvedChoices  []string
	dismissChoices   int
}

func (c *fakeController) StartWorkflow() error { c.started++; return nil }
func (c *fakeController) Confirm()             { c.confirms++ }
func (c *fakeController) Cancel()              { c.cancels++ }
func (c *fakeController) EditMessage(text string) { c.edits = append(c.edits, text) }
func (c *fakeController) ResolveConfirm(yes bool) {
	c.resolvedConfirms = append(c.resolvedConfirms, yes)
}
func (c *fakeController) DismissConfirm() { c.dismissConfirms++ }
func (c *fakeController) ResolveChoice(text string) {
	c.resolvedChoices = append(c.resolvedChoices, text)
}
func (c *fakeController) DismissChoice() { c.dismissChoices++ }

func newTestApp() (*App, *fakeController) {
	app := NewApp("test-workspace", "main")
	ctrl := &fakeController{}
	app.SetController(ctrl)
	return app, ctrl
}

func TestApp_EscCancelsPendingCommit(t *testing.T) {
	app, ctrl := newTestApp()

	app.Update(CommitControlsMsg{Show: true, Prompt: "Commit with this message?"})
	app.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	if ctrl.cancels != 1 {
		t.Errorf("expected one Cancel call, got %d", ctrl.cancels)
	}
}

func TestApp_EscWithoutControlsDoesNotCancel(t *testing.T) {
	app, ctrl := newTestApp()

	app.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	if ctrl.cancels != 0 {
		t.Errorf("expected no Cancel call, got %d", ctrl.cancels)
	}
}

func TestApp_EscDismissesConfirmDialog(t *testing.T) {
	app, ctrl := newTestApp()

	app.Update(ConfirmPromptMsg{Prompt: "Stage all files?", DefaultYes: false})
	_, cmd := app.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	msg := runCmd(cmd)
	if _, ok := msg.(ConfirmDismissedMsg); !ok {
		t.Fatalf("expected ConfirmDismissedMsg, got %T", msg)
	}

	app.Update(msg)
	if ctrl.dismissConfirms != 1 {
		t.Errorf("expected one DismissConfirm call, got %d", ctrl.dismissConfirms)
	}
}

func TestApp_EscDismissesChoiceDialog(t *testing.T) {
	app, ctrl := newTestApp()

	app.Update(ChoicePromptMsg{Prompt: "Style?", Choices: []string{"a", "b"}, Default: "a"})
	_, cmd := app.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	msg := runCmd(cmd)
	if _, ok := msg.(ChoiceDismissedMsg); !ok {
		t.Fatalf("expected ChoiceDismissedMsg, got %T", msg)
	}

	app.Update(msg)
	if ctrl.dismissChoices != 1 {
		t.Errorf("expected one DismissChoice call, got %d", ctrl.dismissChoices)
	}
}
