// Package natsutil manages the embedded NATS server backing the workflow
// history log. The server is in-process only: no network ports, file-backed
// JetStream storage under the data directory.
package natsutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	ierr "github.com/juniormartinxo/seshat-tui/internal/errors"
	"github.com/juniormartinxo/seshat-tui/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName = "seshat_history"

	// Event types recorded on the history stream
	EventTypeWorkflow = "workflow"
)

// SubjectForWorkspace returns the wildcard subject pattern for all history
// events of a workspace. Example: "seshat.my-repo.>"
func SubjectForWorkspace(workspace string) string {
	return fmt.Sprintf("seshat.%s.>", workspace)
}

// SubjectForEvent returns the specific subject for an event type in a
// workspace. Example: "seshat.my-repo.workflow"
func SubjectForEvent(workspace, eventType string) string {
	return fmt.Sprintf("seshat.%s.%s", workspace, eventType)
}

// StartEmbedded starts an embedded NATS server with JetStream enabled using
// the specified data directory for file-based storage.
func StartEmbedded(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	opts := &server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true, // No network ports - in-process only
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		logger.Error("NATS server failed to start within 4s timeout")
		return nil, errors.New("nats server failed to start within timeout")
	}

	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess creates an in-process connection to the embedded server.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, err
	}
	return conn, nil
}

// SetupStream creates or updates the JetStream stream for history events.
// Subject pattern: seshat.> matches all workspaces and event types.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"seshat.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour, // 90 day retention
	})
}

// Shutdown gracefully shuts down the NATS connection and server.
// It drains and closes the connection first, then shuts down the server
// with a timeout so in-flight publishes can complete. Every step runs even
// when an earlier one fails; the failures come back aggregated.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	logger.Debug("Starting NATS shutdown")

	var errs ierr.MultiError

	if nc != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				errs.Append(ierr.NewTransientError("nats drain", err))
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			errs.Append(ierr.NewTransientError("nats drain", errors.New("timed out after 2s")))
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		shutdownDone := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
			logger.Debug("NATS server shut down cleanly")
		case <-time.After(5 * time.Second):
			logger.Error("NATS server shutdown timed out after 5s")
			errs.Append(errors.New("NATS server shutdown timed out"))
		}
	}

	return errs.ErrorOrNil()
}
