// Package protocol defines the line-delimited JSON event protocol spoken by
// the seshat CLI on its standard output. One JSON object per line, tagged by
// a "kind" (or legacy "event") discriminator. Lines that are not valid JSON,
// or are JSON without a discriminator, degrade to Info events carrying the
// raw text; the stream never fails on malformed input.
package protocol

import (
	"encoding/json"
	"strings"
)

// Recognized event kinds. Unknown kinds are preserved and passed through to
// the display untouched, so new tool versions need no changes here unless
// the kind affects the workflow.
const (
	KindSummary         = "summary"
	KindProgressStarted = "progress_started"
	KindProgressUpdate  = "progress_update"
	KindProgressDone    = "progress_done"
	KindStep            = "step"
	KindInfo            = "info"
	KindWarning         = "warning"
	KindError           = "error"
	KindSuccess         = "success"
	KindPanel           = "panel"
	KindFileList        = "file_list"
	KindToolOutput      = "tool_output"
	KindReviewOutput    = "review_output"
	KindMessageReady    = "message_ready"
	KindConfirmNeeded   = "confirm_needed"
	KindChoiceNeeded    = "choice_needed"
	KindCommitted       = "committed"
	KindCancelled       = "cancelled"
)

// Event is one decoded unit of the tool's output protocol.
// Only the fields relevant to the event's kind are populated; Raw holds the
// original JSON so unknown kinds can be forwarded unmodified.
type Event struct {
	Kind     string          `json:"kind"`
	Message  string          `json:"message,omitempty"`
	Title    string          `json:"title,omitempty"`
	Content  string          `json:"content,omitempty"`
	Files    []string        `json:"files,omitempty"`
	Output   string          `json:"output,omitempty"`
	Language string          `json:"language,omitempty"`
	Status   string          `json:"status,omitempty"`
	Text     string          `json:"text,omitempty"`
	Choices  []string        `json:"choices,omitempty"`
	Summary  string          `json:"summary,omitempty"`
	Date     string          `json:"date,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Data     map[string]any  `json:"data,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// DefaultBool interprets the event's default field as a yes/no answer.
// confirm_needed events declare their dismissal answer this way.
func (e Event) DefaultBool() (value, ok bool) {
	if len(e.Default) == 0 {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(e.Default, &b); err != nil {
		return false, false
	}
	return b, true
}

// DefaultChoice interprets the event's default field as a choice string.
// choice_needed events declare their dismissal answer this way.
func (e Event) DefaultChoice() (value string, ok bool) {
	if len(e.Default) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(e.Default, &s); err != nil {
		return "", false
	}
	return s, true
}

// Terminal reports whether the event definitively ends a workflow.
func (e Event) Terminal() bool {
	return e.Kind == KindCommitted || e.Kind == KindCancelled
}

// Known reports whether the kind is part of the recognized protocol set.
func (e Event) Known() bool {
	switch e.Kind {
	case KindSummary, KindProgressStarted, KindProgressUpdate, KindProgressDone,
		KindStep, KindInfo, KindWarning, KindError, KindSuccess,
		KindPanel, KindFileList, KindToolOutput, KindReviewOutput,
		KindMessageReady, KindConfirmNeeded, KindChoiceNeeded,
		KindCommitted, KindCancelled:
		return true
	}
	return false
}

// Info wraps a raw output line as an informational event. Used directly for
// stderr passthrough and as the decode fallback.
func Info(text string) Event {
	return Event{Kind: KindInfo, Message: text}
}

// Warning wraps a raw stderr line as a warning event.
func Warning(text string) Event {
	return Event{Kind: KindWarning, Message: text}
}

// Decode parses one output line into an Event.
// The discriminator may arrive as "kind" or "event"; a line that parses as
// JSON but carries neither is treated identically to an unparsable line and
// wrapped as info. Decode never fails: the caller can feed it anything the
// subprocess prints. Blank lines yield ok=false and should be skipped.
func Decode(line string) (Event, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{}, false
	}

	var probe struct {
		Kind  string `json:"kind"`
		Event string `json:"event"`
	}
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return Info(trimmed), true
	}

	kind := probe.Kind
	if kind == "" {
		kind = probe.Event
	}
	if kind == "" {
		// Valid JSON, no discriminator. Same degradation as non-JSON.
		return Info(trimmed), true
	}

	var ev Event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		return Info(trimmed), true
	}
	ev.Kind = kind
	ev.Raw = json.RawMessage(trimmed)
	return ev, true
}
