package tui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/juniormartinxo/seshat-tui/internal/logger"
)

// Controller is the slice of orchestrator behavior the TUI drives. Defined
// here so the TUI does not depend on the orchestrator's concrete type.
type Controller interface {
	StartWorkflow() error
	Confirm()
	Cancel()
	EditMessage(text string)
	ResolveConfirm(yes bool)
	DismissConfirm()
	ResolveChoice(choice string)
	DismissChoice()
}

// focusZone tracks which pane has keyboard focus.
type focusZone int

const (
	focusFeed focusZone = iota
	focusMessage
	focusSidebar
)

// App is the main Bubbletea model for the commit workflow screen.
type App struct {
	feed    *ActivityFeed
	sidebar *Sidebar
	status  *StatusBar
	message *MessagePane
	confirm *ConfirmDialog
	choice  *ChoiceDialog
	toast   *Toast

	controller Controller
	workspace  string
	branch     string

	layout      Layout
	layoutDirty bool
	focus       focusZone
	width       int
	height      int
	quitting    bool
}

// NewApp creates the TUI application. Bind the orchestrator with
// SetController before running.
func NewApp(workspace, branch string) *App {
	return &App{
		feed:        NewActivityFeed(),
		sidebar:     NewSidebar(),
		status:      NewStatusBar(workspace),
		message:     NewMessagePane(),
		confirm:     NewConfirmDialog(),
		choice:      NewChoiceDialog(),
		toast:       NewToast(),
		workspace:   workspace,
		branch:      branch,
		focus:       focusFeed,
		layoutDirty: true,
	}
}

// Init initializes the application.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = CalculateLayout(a.width, a.height)
		a.propagateSizes()
		a.layoutDirty = false
		return a, nil

	case tea.MouseWheelMsg:
		return a, a.feed.Update(msg)

	// Orchestrator display bridge

	case StatusMsg:
		return a, a.status.SetStatus(msg.Kind, msg.Text)

	case ProgressMsg:
		a.status.SetProgress(msg.Text)
		return a, nil

	case LogMsg:
		a.feed.AddLog(msg.Kind, msg.Text)
		return a, nil

	case SummaryMsg:
		a.status.SetSummary(msg.Provider, msg.Language)
		return a, nil

	case FilesMsg:
		a.sidebar.SetFiles(msg.Files)
		return a, nil

	case PanelMsg:
		a.feed.AddPanel(msg.Title, msg.Content)
		return a, nil

	case ToolOutputMsg:
		a.feed.AddToolOutput(msg.Output, msg.Language, msg.Status)
		return a, nil

	case ReviewMsg:
		a.feed.AddReview(msg.Text, msg.Files)
		return a, nil

	case MessageMsg:
		a.message.SetMessage(msg.Current, msg.Original)
		return a, nil

	case CommitControlsMsg:
		if msg.Show {
			a.message.ShowControls(msg.Prompt)
			a.focus = focusMessage
			return a, tea.Batch(a.message.SetFocus(true), a.applyFocus())
		}
		a.message.HideControls()
		return a, nil

	case ConfirmPromptMsg:
		a.confirm.Show(msg.Prompt, msg.DefaultYes)
		return a, nil

	case ChoicePromptMsg:
		a.choice.Show(msg.Prompt, msg.Choices, msg.Default)
		return a, nil

	case NotifyMsg:
		return a, a.toast.Show(msg.Text)

	case ForwardMsg:
		a.feed.AddForward(msg.Event)
		return a, nil

	case ResetMsg:
		a.feed.Clear()
		a.sidebar.Clear()
		a.message.Clear()
		a.status.Reset()
		return a, nil

	case FocusMsg:
		return a, a.toast.Show("A workflow is already running")

	// Dialog resolutions

	case ConfirmResolvedMsg:
		a.controller.ResolveConfirm(msg.Yes)
		return a, nil

	case ConfirmDismissedMsg:
		a.controller.DismissConfirm()
		return a, nil

	case ChoiceResolvedMsg:
		a.controller.ResolveChoice(msg.Choice)
		return a, nil

	case ChoiceDismissedMsg:
		a.controller.DismissChoice()
		return a, nil

	case MessageEditedMsg:
		cmd := a.message.Update(msg)
		a.controller.EditMessage(a.message.Value())
		return a, cmd

	case ToastDismissMsg:
		return a, a.toast.Update(msg)
	}

	// Spinner ticks and other component-internal messages.
	return a, a.status.Update(msg)
}

// handleKeyPress routes key input to modals, global bindings, then the
// focused pane.
func (a *App) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// Modal dialogs swallow all input while visible.
	if a.confirm.IsVisible() {
		return a, a.confirm.Update(msg)
	}
	if a.choice.IsVisible() {
		return a, a.choice.Update(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit

	case "q":
		if a.focus != focusMessage {
			a.quitting = true
			return a, tea.Quit
		}

	case "s":
		if a.focus != focusMessage {
			go func() {
				if err := a.controller.StartWorkflow(); err != nil {
					logger.Debug("Start rejected: %v", err)
				}
			}()
			return a, nil
		}

	case "tab":
		return a, a.cycleFocus()

	case "ctrl+enter":
		if a.message.ControlsVisible() {
			a.controller.EditMessage(a.message.Value())
			a.controller.Confirm()
			return a, nil
		}

	case "esc":
		if a.message.ControlsVisible() {
			a.controller.Cancel()
			return a, nil
		}

	case "ctrl+e":
		if a.focus == focusMessage {
			return a, a.message.OpenEditor()
		}

	case "ctrl+d":
		if a.focus == focusMessage {
			a.message.ToggleDiff()
			return a, nil
		}
	}

	// Route remaining keys to the focused pane.
	switch a.focus {
	case focusMessage:
		cmd := a.message.Update(msg)
		if a.message.ControlsVisible() {
			a.controller.EditMessage(a.message.Value())
		}
		return a, cmd
	case focusSidebar:
		return a, a.sidebar.Update(msg)
	default:
		return a, a.feed.Update(msg)
	}
}

// cycleFocus moves keyboard focus to the next pane.
func (a *App) cycleFocus() tea.Cmd {
	next := focusFeed
	switch a.focus {
	case focusFeed:
		next = focusMessage
	case focusMessage:
		if a.layout.Mode == LayoutDesktop {
			next = focusSidebar
		}
	case focusSidebar:
		next = focusFeed
	}
	a.focus = next
	return a.applyFocus()
}

func (a *App) applyFocus() tea.Cmd {
	a.feed.SetFocus(a.focus == focusFeed)
	a.sidebar.SetFocus(a.focus == focusSidebar)
	return a.message.SetFocus(a.focus == focusMessage)
}

// View renders the full screen.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.KeyboardEnhancements = tea.KeyboardEnhancements{
		ReportEventTypes: true, // required for ctrl+enter
	}

	if a.quitting {
		view.AltScreen = false
		view.Content = lipgloss.NewLayer("")
		return view
	}

	if a.layoutDirty {
		a.layout = CalculateLayout(a.width, a.height)
		a.propagateSizes()
		a.layoutDirty = false
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	view.Cursor = a.Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = colorCrust
	return view
}

// Draw renders all components to the screen buffer.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	a.drawHeader(scr, a.layout.Header)
	a.feed.Draw(scr, a.layout.Feed)
	if a.layout.Mode == LayoutDesktop {
		a.sidebar.Draw(scr, a.layout.Sidebar)
	}
	cursor := a.message.Draw(scr, a.layout.Message)
	a.status.Draw(scr, a.layout.Status)
	a.drawFooter(scr, a.layout.Footer)

	if a.confirm.IsVisible() {
		a.confirm.Draw(scr, area)
	}
	if a.choice.IsVisible() {
		a.choice.Draw(scr, area)
	}

	if a.toast.IsVisible() {
		toastContent := a.toast.View(area.Dx(), area.Dy())
		if toastContent != "" {
			contentWidth := lipgloss.Width(toastContent)
			contentHeight := lipgloss.Height(toastContent)
			toastX := area.Max.X - contentWidth - 1
			toastY := area.Max.Y - 2 - contentHeight
			if toastX < area.Min.X {
				toastX = area.Min.X
			}
			if toastY < area.Min.Y {
				toastY = area.Min.Y
			}
			toastArea := uv.Rectangle{
				Min: uv.Position{X: toastX, Y: toastY},
				Max: uv.Position{X: toastX + contentWidth, Y: toastY + contentHeight},
			}
			uv.NewStyledString(toastContent).Draw(scr, toastArea)
		}
	}

	return cursor
}

func (a *App) drawHeader(scr uv.Screen, area uv.Rectangle) {
	left := styleHeaderTitle.Render("seshat") +
		styleHeaderSeparator.Render(" | ") +
		styleHeaderInfo.Render(a.workspace)
	if a.branch != "" {
		left += styleHeaderSeparator.Render(" | ") + styleDim.Render(a.branch)
	}
	DrawStyled(scr, area, styleHeader, truncateString(left, area.Dx()))
}

func (a *App) drawFooter(scr uv.Screen, area uv.Rectangle) {
	bind := func(key, label string) string {
		return styleFooterKey.Render(key) + styleFooterLabel.Render(" "+label)
	}
	sep := styleHeaderSeparator.Render("  ")

	hints := bind("s", "start")
	if a.message.ControlsVisible() {
		hints = bind("ctrl+enter", "commit") + sep +
			bind("esc", "cancel") + sep +
			bind("ctrl+e", "editor") + sep +
			bind("ctrl+d", "diff")
	}
	hints += sep + bind("tab", "focus") + sep + bind("q", "quit")

	DrawStyled(scr, area, styleFooter, truncateString(hints, area.Dx()))
}

func (a *App) propagateSizes() {
	a.feed.SetSize(a.layout.Feed.Dx(), a.layout.Feed.Dy())
	if a.layout.Mode == LayoutDesktop {
		a.sidebar.SetSize(a.layout.Sidebar.Dx(), a.layout.Sidebar.Dy())
	}
	a.message.SetSize(a.layout.Message.Dx(), a.layout.Message.Dy())
	a.status.SetSize(a.layout.Status.Dx(), a.layout.Status.Dy())
}

// SetController binds the orchestrator after program construction. The
// display bridge needs the program, and the orchestrator needs the display,
// so the controller is attached last.
func (a *App) SetController(c Controller) {
	a.controller = c
}

// NewProgram builds the Bubbletea program and its display bridge without
// starting it, so the caller can wire the orchestrator first.
func NewProgram(app *App) (*tea.Program, *ProgramDisplay) {
	program := tea.NewProgram(app)
	return program, NewProgramDisplay(program)
}
