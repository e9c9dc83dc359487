package main

import (
	"fmt"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/juniormartinxo/seshat-tui/internal/config"
	"github.com/juniormartinxo/seshat-tui/internal/git"
	"github.com/juniormartinxo/seshat-tui/internal/history"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past commit workflows for this repository",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum records to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	workDir, err := git.TopLevel(".")
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}
	workspace := slug.Make(filepath.Base(workDir))

	ctx := cmd.Context()
	store, closeStore, err := history.Open(ctx, filepath.Join(workDir, cfg.DataDir))
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = closeStore() }()

	records, err := store.LoadRecords(ctx, workspace)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No workflows recorded yet.")
		return nil
	}

	// Newest first.
	if historyFlags.limit > 0 && len(records) > historyFlags.limit {
		records = records[len(records)-historyFlags.limit:]
	}
	for i := len(records) - 1; i >= 0; i-- {
		printRecord(records[i])
	}
	return nil
}

func printRecord(r history.Record) {
	glyph := "?"
	switch r.Outcome {
	case "committed":
		glyph = "✓"
	case "cancelled":
		glyph = "✗"
	case "failed":
		glyph = "!"
	case "":
		glyph = "…"
	}

	when := r.StartedAt.Format("2006-01-02 15:04")

	detail := firstLine(r.Message)
	if r.Outcome == "committed" && r.Manual {
		detail += " (edited, committed via git)"
	}
	if detail == "" {
		detail = r.Outcome
	}

	fmt.Printf("%s %s  %s\n", glyph, when, detail)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
