package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/juniormartinxo/seshat-tui/internal/config"
	"github.com/juniormartinxo/seshat-tui/internal/git"
	"github.com/juniormartinxo/seshat-tui/internal/hooks"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment is ready for commit workflows",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ok := true
	check := func(passed bool, label, detail string) {
		glyph := "✓"
		if !passed {
			glyph = "✗"
			ok = false
		}
		if detail != "" {
			fmt.Printf("%s %s — %s\n", glyph, label, detail)
		} else {
			fmt.Printf("%s %s\n", glyph, label)
		}
	}

	if path, err := exec.LookPath("git"); err == nil {
		check(true, "git", path)
	} else {
		check(false, "git", "not found in PATH")
	}

	if path, err := exec.LookPath(cfg.Binary); err == nil {
		check(true, cfg.Binary, path)
	} else {
		check(false, cfg.Binary, "not found in PATH; set binary in config or --binary")
	}

	workDir, err := git.TopLevel(".")
	if err != nil {
		check(false, "repository", "not inside a git repository")
	} else {
		check(true, "repository", workDir)

		if staged, err := git.StagedFiles(workDir); err == nil {
			if len(staged) == 0 {
				fmt.Printf("· no staged files — stage changes before running a workflow\n")
			} else {
				fmt.Printf("· %d staged file(s)\n", len(staged))
			}
		}

		if hooksCfg, err := hooks.LoadConfig(workDir); err != nil {
			check(false, "hooks", err.Error())
		} else if hooksCfg != nil {
			check(true, "hooks", hooks.ConfigFileName)
		}
	}

	if config.Exists() {
		check(true, "config", "found")
	} else {
		fmt.Printf("· no config file — defaults in effect; run setup to create one\n")
	}

	if !ok {
		return fmt.Errorf("environment is not ready")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}
