package protocol

import (
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantKind    string
		wantMessage string
	}{
		{
			name:        "kind discriminator",
			line:        `{"kind":"info","message":"staging files"}`,
			wantOK:      true,
			wantKind:    KindInfo,
			wantMessage: "staging files",
		},
		{
			name:        "event discriminator",
			line:        `{"event":"message_ready","message":"fix: x"}`,
			wantOK:      true,
			wantKind:    KindMessageReady,
			wantMessage: "fix: x",
		},
		{
			name:        "plain text falls back to info",
			line:        "Analyzing staged changes...",
			wantOK:      true,
			wantKind:    KindInfo,
			wantMessage: "Analyzing staged changes...",
		},
		{
			name:        "json without discriminator falls back to info",
			line:        `{"message":"no tag here"}`,
			wantOK:      true,
			wantKind:    KindInfo,
			wantMessage: `{"message":"no tag here"}`,
		},
		{
			name:        "broken json falls back to info",
			line:        `{broken json}`,
			wantOK:      true,
			wantKind:    KindInfo,
			wantMessage: `{broken json}`,
		},
		{
			name:   "blank line skipped",
			line:   "   \t ",
			wantOK: false,
		},
		{
			name:        "surrounding whitespace trimmed",
			line:        `  {"kind":"step","message":"reviewing"}  `,
			wantOK:      true,
			wantKind:    KindStep,
			wantMessage: "reviewing",
		},
		{
			name:     "unknown kind preserved",
			line:     `{"kind":"telemetry","message":"41ms"}`,
			wantOK:   true,
			wantKind: "telemetry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Decode(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, ev.Kind)
			}
			if tt.wantMessage != "" && ev.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, ev.Message)
			}
		})
	}
}

func TestDecode_StructuredFields(t *testing.T) {
	ev, ok := Decode(`{"kind":"choice_needed","message":"Pick a style","choices":["conventional","plain"],"default":"conventional"}`)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(ev.Choices) != 2 || ev.Choices[0] != "conventional" {
		t.Errorf("unexpected choices: %v", ev.Choices)
	}
	def, ok := ev.DefaultChoice()
	if !ok || def != "conventional" {
		t.Errorf("expected default choice %q, got %q (ok=%v)", "conventional", def, ok)
	}
	if _, ok := ev.DefaultBool(); ok {
		t.Error("string default should not decode as bool")
	}

	ev, ok = Decode(`{"kind":"confirm_needed","message":"Overwrite file?","default":true}`)
	if !ok {
		t.Fatal("expected ok")
	}
	b, ok := ev.DefaultBool()
	if !ok || !b {
		t.Errorf("expected default true, got %v (ok=%v)", b, ok)
	}

	ev, ok = Decode(`{"kind":"confirm_needed","message":"Commit now?"}`)
	if !ok {
		t.Fatal("expected ok")
	}
	if _, ok := ev.DefaultBool(); ok {
		t.Error("missing default should report ok=false")
	}
}

func TestDecode_RawPreservedForUnknownKinds(t *testing.T) {
	line := `{"kind":"telemetry","spans":[{"name":"diff","ms":41}]}`
	ev, ok := Decode(line)
	if !ok {
		t.Fatal("expected ok")
	}
	if ev.Known() {
		t.Error("telemetry should not be a known kind")
	}
	if string(ev.Raw) != line {
		t.Errorf("raw JSON should be preserved, got %s", ev.Raw)
	}
}

func TestEvent_Terminal(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{KindCommitted, true},
		{KindCancelled, true},
		{KindError, false},
		{KindMessageReady, false},
	}
	for _, tt := range tests {
		if got := (Event{Kind: tt.kind}).Terminal(); got != tt.want {
			t.Errorf("Terminal(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestEvent_SummaryData(t *testing.T) {
	ev, ok := Decode(`{"kind":"summary","data":{"provider":"anthropic","language":"en"}}`)
	if !ok {
		t.Fatal("expected ok")
	}
	if ev.Data["provider"] != "anthropic" {
		t.Errorf("unexpected provider: %v", ev.Data["provider"])
	}
	if ev.Data["language"] != "en" {
		t.Errorf("unexpected language: %v", ev.Data["language"])
	}
}
