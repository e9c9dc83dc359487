// Package history records commit-workflow outcomes on an append-only
// JetStream event log, one subject per workspace. The log is reduced into
// per-workflow records for the history command.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/juniormartinxo/seshat-tui/internal/logger"
	"github.com/juniormartinxo/seshat-tui/internal/natsutil"
	"github.com/nats-io/nats.go/jetstream"
)

// Workflow event actions.
const (
	ActionStarted   = "started"
	ActionCommitted = "committed"
	ActionCancelled = "cancelled"
	ActionFailed    = "failed"
)

// Event is one append-only entry in the history log.
type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	Workspace string          `json:"workspace"` // slugified workspace name
	Action    string          `json:"action"`
	Data      string          `json:"data"` // message, reason, or failure detail
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// commitMeta is the Meta payload of committed events.
type commitMeta struct {
	Manual  bool   `json:"manual"`
	Summary string `json:"summary,omitempty"`
}

// Store appends and reads workflow history through JetStream.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store over an existing JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Open starts the embedded NATS server under dataDir and returns a ready
// Store plus a close function that shuts everything down.
func Open(ctx context.Context, dataDir string) (*Store, func() error, error) {
	ns, err := natsutil.StartEmbedded(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start history server: %w", err)
	}

	nc, err := natsutil.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return nil, nil, fmt.Errorf("failed to connect to history server: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		natsutil.Shutdown(nc, ns)
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := natsutil.SetupStream(ctx, js)
	if err != nil {
		natsutil.Shutdown(nc, ns)
		return nil, nil, fmt.Errorf("failed to setup history stream: %w", err)
	}

	closeFn := func() error {
		return natsutil.Shutdown(nc, ns)
	}
	return NewStore(js, stream), closeFn, nil
}

// Append publishes an event to the workspace's history subject.
func (s *Store) Append(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal history event: %w", err)
	}

	subject := natsutil.SubjectForEvent(ev.Workspace, natsutil.EventTypeWorkflow)
	logger.Debug("Appending history event: workspace=%s action=%s", ev.Workspace, ev.Action)

	if _, err := s.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish history event: %w", err)
	}
	return nil
}

// WorkflowStarted records the beginning of a workflow.
func (s *Store) WorkflowStarted(ctx context.Context, workspace string) error {
	return s.Append(ctx, Event{Workspace: workspace, Action: ActionStarted})
}

// WorkflowCommitted records a successful commit, manual or tool-driven.
func (s *Store) WorkflowCommitted(ctx context.Context, workspace, message, summary string, manual bool) error {
	meta, _ := json.Marshal(commitMeta{Manual: manual, Summary: summary})
	return s.Append(ctx, Event{Workspace: workspace, Action: ActionCommitted, Data: message, Meta: meta})
}

// WorkflowCancelled records a cancelled workflow.
func (s *Store) WorkflowCancelled(ctx context.Context, workspace, reason string) error {
	return s.Append(ctx, Event{Workspace: workspace, Action: ActionCancelled, Data: reason})
}

// WorkflowFailed records a failed workflow.
func (s *Store) WorkflowFailed(ctx context.Context, workspace, detail string) error {
	return s.Append(ctx, Event{Workspace: workspace, Action: ActionFailed, Data: detail})
}

// Record is one reduced workflow: a started event joined with its terminal
// event, if any.
type Record struct {
	StartedAt time.Time
	EndedAt   time.Time
	Outcome   string // committed, cancelled, failed, or "" while open
	Message   string // commit message, cancellation reason, or failure detail
	Summary   string
	Manual    bool
}

// LoadRecords reduces the workspace's event log into workflow records,
// oldest first. Malformed events are skipped.
func (s *Store) LoadRecords(ctx context.Context, workspace string) ([]Record, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: natsutil.SubjectForWorkspace(workspace),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create history consumer: %w", err)
	}

	var records []Record
	malformed := 0

	const batchSize = 1000
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var ev Event
			if err := json.Unmarshal(msg.Data(), &ev); err != nil {
				malformed++
				msg.Ack()
				continue
			}
			apply(&records, ev)
			msg.Ack()
		}

		if count < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed history events", malformed)
	}
	return records, nil
}

// apply reduces one event into the record list. Terminal events close the
// most recent open record; a terminal event with no open record stands
// alone (the started event may have aged out of retention).
func apply(records *[]Record, ev Event) {
	if ev.Action == ActionStarted {
		*records = append(*records, Record{StartedAt: ev.Timestamp})
		return
	}

	rec := openRecord(records)
	if rec == nil {
		*records = append(*records, Record{StartedAt: ev.Timestamp})
		rec = &(*records)[len(*records)-1]
	}
	rec.EndedAt = ev.Timestamp
	rec.Outcome = ev.Action
	rec.Message = ev.Data

	if ev.Action == ActionCommitted && len(ev.Meta) > 0 {
		var meta commitMeta
		if err := json.Unmarshal(ev.Meta, &meta); err == nil {
			rec.Manual = meta.Manual
			rec.Summary = meta.Summary
		}
	}
}

func openRecord(records *[]Record) *Record {
	for i := len(*records) - 1; i >= 0; i-- {
		if (*records)[i].Outcome == "" {
			return &(*records)[i]
		}
	}
	return nil
}
