// Package git shells out to the git CLI for the small set of repository
// operations the workflow needs: status info for the header, workspace root
// discovery, staged file listing, and the manual commit fallback.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/juniormartinxo/seshat-tui/internal/logger"
)

// Info holds repository status for display.
type Info struct {
	Branch string // Current branch name
	Hash   string // Short (7-char) HEAD hash
	Dirty  bool   // Uncommitted changes present
	Ahead  int    // Commits ahead of upstream (0 if none configured)
	Behind int    // Commits behind upstream (0 if none configured)
}

// GetInfo returns repository status for dir, or nil if dir is not inside a
// git repository. Only hard git failures (binary missing) produce an error.
func GetInfo(dir string) (*Info, error) {
	if _, err := runGit(dir, "rev-parse", "--is-inside-work-tree"); err != nil {
		// Not a repository. Callers render a repo-less header.
		return nil, nil
	}

	info := &Info{}

	branch, err := runGit(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to read branch: %w", err)
	}
	info.Branch = branch

	hash, err := runGit(dir, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	info.Hash = hash

	status, err := runGit(dir, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	info.Dirty = status != ""

	// No upstream is normal; leave ahead/behind at zero.
	if counts, err := runGit(dir, "rev-list", "--left-right", "--count", "@{upstream}...HEAD"); err == nil {
		fields := strings.Fields(counts)
		if len(fields) == 2 {
			info.Behind, _ = strconv.Atoi(fields[0])
			info.Ahead, _ = strconv.Atoi(fields[1])
		}
	}

	return info, nil
}

// TopLevel returns the workspace root containing dir.
func TopLevel(dir string) (string, error) {
	root, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %s", dir)
	}
	return root, nil
}

// StagedFiles lists paths staged for the next commit.
func StagedFiles(dir string) ([]string, error) {
	out, err := runGit(dir, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Commit runs a direct commit with message as the literal message argument,
// in workDir. It returns the combined output in all cases; success is a nil
// error (exit code zero).
func Commit(ctx context.Context, workDir, message string) (string, error) {
	logger.Debug("Running manual commit in %s", workDir)

	cmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	cmd.Dir = workDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimRight(out.String(), "\n")
	if err != nil {
		logger.Warn("Manual commit failed: %v", err)
		return output, fmt.Errorf("git commit failed: %w", err)
	}
	return output, nil
}

// runGit executes a git subcommand in dir and returns trimmed stdout.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
