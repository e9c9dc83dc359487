// Package process owns the subprocess transport for one invocation of the
// external seshat CLI. It frames stdout into protocol events, forwards
// stderr lines, accepts single-token responses on stdin, and reports
// termination — all through a single-consumer notification channel so the
// consumer observes everything in arrival order.
package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/juniormartinxo/seshat-tui/internal/logger"
	"github.com/juniormartinxo/seshat-tui/internal/protocol"
)

// ErrAlreadyRunning is returned by Start while a previous subprocess of this
// session is still live.
var ErrAlreadyRunning = errors.New("tool subprocess already running")

// CommitArgs are the fixed arguments requesting JSON-formatted commit
// generation from the tool.
var CommitArgs = []string{"commit", "--json"}

// Buffered enough that a bursty tool never blocks on a busy consumer.
const notifyBuffer = 256

// Scanner limit for a single output line. Review output can carry whole
// diffs on one line.
const maxLineBytes = 1024 * 1024

// NotificationType discriminates Session notifications.
type NotificationType int

const (
	// NotifyEvent carries one decoded stdout line.
	NotifyEvent NotificationType = iota
	// NotifyStderr carries one non-empty stderr line.
	NotifyStderr
	// NotifyClosed reports process termination. It is the last notification;
	// the channel is closed after it.
	NotifyClosed
	// NotifyFailed reports a spawn failure or transport fault.
	NotifyFailed
)

// ExitStatus describes how the subprocess terminated.
type ExitStatus struct {
	Code   int
	Signal string
}

// Notification is one asynchronous report from the session.
type Notification struct {
	Type  NotificationType
	Event protocol.Event
	Line  string
	Exit  ExitStatus
	Err   error
}

// Config holds configuration for creating a Session.
type Config struct {
	Binary  string   // Path or name of the seshat executable
	Args    []string // Tool arguments; defaults to CommitArgs
	WorkDir string   // Working directory for the subprocess
}

// Session drives one subprocess of the external tool. A Session is single
// use: Start spawns at most one process over its lifetime, and the
// notification channel closes when that process is gone.
type Session struct {
	mu     sync.Mutex
	cfg    Config
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	notifs chan Notification
	done   bool
}

// New creates a Session. No process is spawned until Start.
func New(cfg Config) *Session {
	if len(cfg.Args) == 0 {
		cfg.Args = CommitArgs
	}
	return &Session{
		cfg:    cfg,
		notifs: make(chan Notification, notifyBuffer),
	}
}

// Notifications returns the single-consumer notification channel. It is
// closed after the NotifyClosed notification, or after NotifyFailed when the
// process never started.
func (s *Session) Notifications() <-chan Notification {
	return s.notifs
}

// Start spawns the external tool. It fails with ErrAlreadyRunning if a
// handle is already live. On spawn failure a NotifyFailed notification is
// emitted, the channel is closed, and no handle is retained.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil && !s.done {
		return ErrAlreadyRunning
	}
	if s.cmd != nil {
		return errors.New("session already used")
	}

	logger.Debug("Spawning %s %v in %s", s.cfg.Binary, s.cfg.Args, s.cfg.WorkDir)

	cmd := exec.Command(s.cfg.Binary, s.cfg.Args...)
	cmd.Dir = s.cfg.WorkDir
	cmd.Env = os.Environ()
	// Own process group, so Kill can reach the tool's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.fail(fmt.Errorf("failed to create stdin pipe: %w", err))
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.fail(fmt.Errorf("failed to create stdout pipe: %w", err))
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.fail(fmt.Errorf("failed to create stderr pipe: %w", err))
		return err
	}

	if err := cmd.Start(); err != nil {
		logger.Error("Failed to start %s: %v", s.cfg.Binary, err)
		s.fail(fmt.Errorf("failed to start %s: %w", s.cfg.Binary, err))
		return err
	}

	s.cmd = cmd
	s.stdin = stdin

	var readers sync.WaitGroup
	readers.Add(2)
	go s.readStdout(stdout, &readers)
	go s.readStderr(stderr, &readers)
	go s.wait(&readers)

	return nil
}

// fail emits a NotifyFailed notification and closes the channel. Caller
// holds the lock; the session stays unusable with no live handle.
func (s *Session) fail(err error) {
	s.done = true
	s.notifs <- Notification{Type: NotifyFailed, Err: err}
	close(s.notifs)
}

// Respond writes text (newline-appended if absent) to the subprocess input
// stream. It returns false when no live, writable handle exists or the
// write fails — a dropped write, not an error condition.
func (s *Session) Respond(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin == nil || s.done {
		logger.Debug("Dropping response %q: no live handle", text)
		return false
	}

	if len(text) == 0 || text[len(text)-1] != '\n' {
		text += "\n"
	}
	if _, err := io.WriteString(s.stdin, text); err != nil {
		logger.Warn("Failed to write response: %v", err)
		return false
	}
	return true
}

// Kill requests termination of the live subprocess. Idempotent; a no-op
// when nothing is running.
func (s *Session) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.done || s.cmd.Process == nil {
		return
	}
	pid := s.cmd.Process.Pid
	logger.Debug("Killing tool subprocess pid=%d", pid)
	// Signal the whole group: children holding the output pipes must die
	// too, or the scanners never see EOF.
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		_ = s.cmd.Process.Kill()
	}
}

// Running reports whether a handle exists and has not reported termination.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil && !s.done
}

// readStdout decodes output lines into protocol events.
func (s *Session) readStdout(r io.Reader, readers *sync.WaitGroup) {
	defer readers.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		ev, ok := protocol.Decode(scanner.Text())
		if !ok {
			continue
		}
		s.notifs <- Notification{Type: NotifyEvent, Event: ev}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stdout scanner error: %v", err)
		s.notifs <- Notification{Type: NotifyFailed, Err: fmt.Errorf("failed to read tool output: %w", err)}
	}
}

// readStderr forwards non-empty stderr lines. They are never parsed.
func (s *Session) readStderr(r io.Reader, readers *sync.WaitGroup) {
	defer readers.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		s.notifs <- Notification{Type: NotifyStderr, Line: line}
	}
}

// wait joins the readers, reaps the process, and emits the final
// NotifyClosed notification before closing the channel.
func (s *Session) wait(readers *sync.WaitGroup) {
	readers.Wait()

	err := s.cmd.Wait()
	exit := ExitStatus{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exit.Code = exitErr.ExitCode()
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				exit.Signal = ws.Signal().String()
			}
		} else {
			exit.Code = -1
		}
	}
	logger.Debug("Tool subprocess closed: code=%d signal=%q", exit.Code, exit.Signal)

	s.mu.Lock()
	s.done = true
	s.stdin = nil
	s.mu.Unlock()

	s.notifs <- Notification{Type: NotifyClosed, Exit: exit}
	close(s.notifs)
}
