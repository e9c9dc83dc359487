package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a temp git repository with one initial commit.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if _, err := runGit(dir, "init"); err != nil {
		t.Fatalf("git init failed: %v", err)
	}
	if _, err := runGit(dir, "config", "user.email", "test@test.com"); err != nil {
		t.Fatalf("git config email failed: %v", err)
	}
	if _, err := runGit(dir, "config", "user.name", "Test"); err != nil {
		t.Fatalf("git config name failed: %v", err)
	}
	if _, err := runGit(dir, "commit", "--allow-empty", "-m", "initial"); err != nil {
		t.Fatalf("git commit failed: %v", err)
	}
	return dir
}

func TestGetInfo_Repo(t *testing.T) {
	dir := initRepo(t)

	info, err := GetInfo(dir)
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info == nil {
		t.Fatal("expected info for git repo, got nil")
	}

	if info.Branch != "master" && info.Branch != "main" {
		t.Errorf("expected branch master or main, got %s", info.Branch)
	}
	if len(info.Hash) != 7 {
		t.Errorf("expected 7-char hash, got %d chars: %s", len(info.Hash), info.Hash)
	}
	if info.Dirty {
		t.Error("fresh repo with empty commit should be clean")
	}
	if info.Ahead != 0 || info.Behind != 0 {
		t.Errorf("expected 0/0 ahead/behind with no upstream, got %d/%d", info.Ahead, info.Behind)
	}
}

func TestGetInfo_NonGitDir(t *testing.T) {
	info, err := GetInfo(t.TempDir())
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info != nil {
		t.Error("expected nil for non-git directory")
	}
}

func TestGetInfo_Dirty(t *testing.T) {
	dir := initRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	info, err := GetInfo(dir)
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if !info.Dirty {
		t.Error("untracked file should mark the repo dirty")
	}
}

func TestTopLevel(t *testing.T) {
	dir := initRepo(t)

	sub := filepath.Join(dir, "nested", "deep")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	root, err := TopLevel(sub)
	if err != nil {
		t.Fatalf("TopLevel failed: %v", err)
	}
	// Resolve symlinks: macOS tempdirs live under /private.
	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("expected root %s, got %s", wantRoot, gotRoot)
	}

	if _, err := TopLevel(t.TempDir()); err == nil {
		t.Error("expected error for non-repo")
	}
}

func TestStagedFiles(t *testing.T) {
	dir := initRepo(t)

	files, err := StagedFiles(dir)
	if err != nil {
		t.Fatalf("StagedFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no staged files, got %v", files)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := runGit(dir, "add", "a.txt"); err != nil {
		t.Fatalf("git add failed: %v", err)
	}

	files, err = StagedFiles(dir)
	if err != nil {
		t.Fatalf("StagedFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != "a.txt" {
		t.Errorf("expected [a.txt], got %v", files)
	}
}

func TestCommit(t *testing.T) {
	dir := initRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := runGit(dir, "add", "a.txt"); err != nil {
		t.Fatalf("git add failed: %v", err)
	}

	out, err := Commit(context.Background(), dir, "feat: add a.txt")
	if err != nil {
		t.Fatalf("Commit failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "feat: add a.txt") {
		t.Errorf("output should mention the message, got: %s", out)
	}

	subject, err := runGit(dir, "log", "-1", "--format=%s")
	if err != nil {
		t.Fatalf("git log failed: %v", err)
	}
	if subject != "feat: add a.txt" {
		t.Errorf("expected commit subject %q, got %q", "feat: add a.txt", subject)
	}
}

func TestCommit_NothingStaged(t *testing.T) {
	dir := initRepo(t)

	out, err := Commit(context.Background(), dir, "empty")
	if err == nil {
		t.Fatal("expected failure with nothing staged")
	}
	if out == "" {
		t.Error("failure should still surface git's combined output")
	}
}
