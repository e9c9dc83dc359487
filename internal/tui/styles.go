package tui

import (
	"charm.land/lipgloss/v2"
)

// Catppuccin Mocha inspired palette. Backgrounds go darkest (crust) to
// lightest (surface), text goes dimmest (subtext) to brightest.
var (
	colorBase     = lipgloss.Color("#1e1e2e")
	colorMantle   = lipgloss.Color("#181825")
	colorCrust    = lipgloss.Color("#11111b")
	colorSurface0 = lipgloss.Color("#313244")
	colorSurface1 = lipgloss.Color("#45475a")
	colorOverlay0 = lipgloss.Color("#6c7086")

	colorSubtext0   = lipgloss.Color("#a6adc8")
	colorText       = lipgloss.Color("#cdd6f4")
	colorTextBright = lipgloss.Color("#f5e0dc")

	colorPrimary   = lipgloss.Color("#cba6f7") // mauve
	colorSecondary = lipgloss.Color("#89b4fa") // blue

	colorSuccess = lipgloss.Color("#a6e3a1") // green
	colorWarning = lipgloss.Color("#f9e2af") // yellow
	colorError   = lipgloss.Color("#f38ba8") // red
	colorInfo    = lipgloss.Color("#89dceb") // sky
	colorPeach   = lipgloss.Color("#fab387")

	colorMuted   = colorOverlay0
	colorTextDim = colorSubtext0
)

// Style definitions
var (
	styleHeader = lipgloss.NewStyle().
			Foreground(colorTextBright).
			Background(colorMantle).
			Bold(true).
			Padding(0, 1)

	styleHeaderTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleHeaderSeparator = lipgloss.NewStyle().
				Foreground(colorMuted)

	styleHeaderInfo = lipgloss.NewStyle().
			Foreground(colorText)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 1)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleFooterLabel = lipgloss.NewStyle().
				Foreground(colorText)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 1)

	// Panel chrome
	stylePanelTitle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Bold(true)

	stylePanelTitleFocused = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	stylePanelRule = lipgloss.NewStyle().
			Foreground(colorSurface1)

	stylePanelRuleFocused = lipgloss.NewStyle().
				Foreground(colorPrimary)

	styleScrollIndicator = lipgloss.NewStyle().
				Foreground(colorTextDim).
				Background(colorSurface0)

	// Feed entry styles keyed by event kind
	styleLogTimestamp = lipgloss.NewStyle().Foreground(colorMuted)
	styleLogStep      = lipgloss.NewStyle().Foreground(colorSecondary)
	styleLogInfo      = lipgloss.NewStyle().Foreground(colorInfo)
	styleLogWarning   = lipgloss.NewStyle().Foreground(colorWarning)
	styleLogError     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleLogSuccess   = lipgloss.NewStyle().Foreground(colorSuccess)

	styleEmptyState = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Status line semantics
	styleStatusIdle    = lipgloss.NewStyle().Foreground(colorMuted)
	styleStatusRunning = lipgloss.NewStyle().Foreground(colorWarning)
	styleStatusSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleStatusError   = lipgloss.NewStyle().Foreground(colorError)

	// Commit message pane
	styleMessageOriginal = lipgloss.NewStyle().Foreground(colorTextDim)
	styleMessageEdited   = lipgloss.NewStyle().Foreground(colorPeach)
	styleDiffAdd         = lipgloss.NewStyle().Foreground(colorSuccess)
	styleDiffDel         = lipgloss.NewStyle().Foreground(colorError)

	// File list
	styleFileEntry = lipgloss.NewStyle().Foreground(colorText)
	styleFileCount = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	// Generic chrome
	styleDim = lipgloss.NewStyle().Foreground(colorTextDim)

	styleToolStatusOK  = lipgloss.NewStyle().Foreground(colorSuccess)
	styleToolStatusErr = lipgloss.NewStyle().Foreground(colorError)
)
