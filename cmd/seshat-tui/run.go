package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/juniormartinxo/seshat-tui/internal/config"
	"github.com/juniormartinxo/seshat-tui/internal/git"
	"github.com/juniormartinxo/seshat-tui/internal/history"
	"github.com/juniormartinxo/seshat-tui/internal/hooks"
	"github.com/juniormartinxo/seshat-tui/internal/logger"
	"github.com/juniormartinxo/seshat-tui/internal/orchestrator"
	"github.com/juniormartinxo/seshat-tui/internal/tui"
)

var runFlags struct {
	binary   string
	dataDir  string
	lingerMs int
	headless bool
	start    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the commit workflow screen",
	Long: `Open the commit workflow screen for the current repository.

Press s to start a workflow: seshat is spawned, its progress streams into
the activity feed, and the proposed commit message lands in the editable
message pane. Approve it unchanged and seshat commits; edit it first and
the commit is made directly with git instead.

With --headless the workflow starts immediately, prompts resolve to their
defaults, and output is plain text.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.binary, "binary", "b", "", "seshat executable (default from config)")
	runCmd.Flags().StringVar(&runFlags.dataDir, "data-dir", "", "history storage directory (default from config)")
	runCmd.Flags().IntVar(&runFlags.lingerMs, "linger-ms", 0, "terminal status linger in milliseconds")
	runCmd.Flags().BoolVar(&runFlags.headless, "headless", false, "run one workflow without the TUI")
	runCmd.Flags().BoolVar(&runFlags.start, "start", false, "start a workflow immediately")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags take precedence over everything else.
	if cmd.Flags().Changed("binary") {
		cfg.Binary = runFlags.binary
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = runFlags.dataDir
	}
	if cmd.Flags().Changed("linger-ms") {
		cfg.LingerMs = runFlags.lingerMs
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = runFlags.headless
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	workDir, err := git.TopLevel(".")
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}
	workspace := slug.Make(filepath.Base(workDir))

	var branch string
	if info, err := git.GetInfo(workDir); err == nil && info != nil {
		branch = info.Branch
	}

	ctx := cmd.Context()

	// History is best effort: a broken event store must not block commits.
	var recorder orchestrator.Recorder
	store, closeStore, err := history.Open(ctx, filepath.Join(workDir, cfg.DataDir))
	if err != nil {
		logger.Warn("History disabled: %v", err)
	} else {
		recorder = store
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("History shutdown: %v", err)
			}
		}()
	}

	hooksCfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		logger.Warn("Hooks disabled: %v", err)
		hooksCfg = nil
	}

	orchCfg := orchestrator.Config{
		Binary:    cfg.Binary,
		WorkDir:   workDir,
		Workspace: workspace,
		Linger:    time.Duration(cfg.LingerMs) * time.Millisecond,
		Recorder:  recorder,
		Hooks:     hooksCfg,
	}

	if cfg.Headless {
		return runHeadless(ctx, orchCfg)
	}
	return runTUI(orchCfg, workspace, branch)
}

// runTUI wires the orchestrator to the Bubbletea program and blocks until
// the operator quits.
func runTUI(orchCfg orchestrator.Config, workspace, branch string) error {
	app := tui.NewApp(workspace, branch)
	program, display := tui.NewProgram(app)

	orchCfg.Display = display
	orch := orchestrator.New(orchCfg)
	app.SetController(orch)

	orch.Start()
	defer orch.Close()

	if runFlags.start {
		go func() {
			if err := orch.StartWorkflow(); err != nil {
				logger.Warn("Initial workflow start failed: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// runHeadless starts one workflow immediately and exits when it settles
// back to idle. Prompts resolve to their defaults; the proposed message is
// always accepted as-is.
func runHeadless(ctx context.Context, orchCfg orchestrator.Config) error {
	display := orchestrator.NewLogDisplay(os.Stdout)
	orchCfg.Display = display

	orch := orchestrator.New(orchCfg)
	display.Resolver = func(kind string) {
		switch kind {
		case "commit":
			orch.Confirm()
		case "confirm":
			orch.DismissConfirm()
		case "choice":
			orch.DismissChoice()
		}
	}

	orch.Start()
	defer orch.Close()

	if err := orch.StartWorkflow(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sigChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap := orch.State()
			if snap.Phase == orchestrator.PhaseIdle && !snap.Running {
				return nil
			}
		}
	}
}
