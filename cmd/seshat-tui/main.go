package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/juniormartinxo/seshat-tui/internal/logger"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seshat-tui",
	Short: "Interactive commit workflow driver for the seshat CLI",
	Long: `seshat-tui drives the seshat commit tool through its JSON event stream
and presents the workflow in a full-screen terminal UI.

It streams the tool's progress, staged files, and review findings live,
lets you edit the proposed commit message before approving it, and falls
back to committing the edited message directly with git when you change
the tool's suggestion.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
}
