package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestPhaseMarshalJSON(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{Idle, `"idle"`},
		{Connecting, `"connecting"`},
		{Connected, `"connected"`},
		{Completed, `"completed"`},
		{Errored, `"errored"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.phase)
		if err != nil {
			t.Errorf("Marshal(%v) error: %v", tt.phase, err)
			continue
		}
		if string(data) != tt.expected {
			t.Errorf("Marshal(%v) = %s, want %s", tt.phase, data, tt.expected)
		}
	}
}

func TestPhaseUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Phase
	}{
		{`"connecting"`, Connecting},
		{`"connected"`, Connected},
		{`"errored"`, Errored},
	}

	for _, tt := range tests {
		var p Phase
		if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.input, err)
			continue
		}
		if p != tt.expected {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, p, tt.expected)
		}
	}
}

func TestApplyConnected(t *testing.T) {
	s := New()
	s.SetConnecting("sess-1")

	s.Apply(Event{Kind: KindConnected})

	if s.Phase != Connected {
		t.Errorf("Phase = %v, want Connected", s.Phase)
	}
	if !s.Connected {
		t.Error("Connected should be true")
	}
}

func TestProgressLogAppendOnly(t *testing.T) {
	s := New()
	s.Apply(Event{Kind: KindConnected})

	entries := []ProgressEntry{
		{Phase: "extraction", Status: StatusRunning},
		{Phase: "extraction", Status: StatusCompleted},
		{Phase: "compliance", Status: StatusRunning},
		// Repeated and "backward" phases are still appended verbatim.
		{Phase: "extraction", Status: StatusRunning},
	}
	for i := range entries {
		e := entries[i]
		s.Apply(Event{Kind: KindProgress, Progress: &e})
	}

	if len(s.Progress) != len(entries) {
		t.Fatalf("log length = %d, want %d", len(s.Progress), len(entries))
	}
	for i, want := range entries {
		got := s.Progress[i]
		if got.Phase != want.Phase || got.Status != want.Status {
			t.Errorf("entry %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestSecondApprovalIsProtocolViolation(t *testing.T) {
	s := New()
	s.Apply(Event{Kind: KindConnected})

	first := &ApprovalRequest{RequestID: "r1", ApprovalID: "a1", Title: "first"}
	second := &ApprovalRequest{RequestID: "r2", ApprovalID: "a2", Title: "second"}

	s.Apply(Event{Kind: KindApprovalRequired, Approval: first})
	s.Apply(Event{Kind: KindApprovalRequired, Approval: second})

	if s.Pending == nil || s.Pending.RequestID != "r1" {
		t.Fatalf("Pending = %+v, want the first request", s.Pending)
	}
	if s.Fault == nil || s.Fault.Kind != FaultProtocol {
		t.Errorf("Fault = %+v, want a %s fault", s.Fault, FaultProtocol)
	}
	if s.Phase.Terminal() {
		t.Error("protocol violation must not be terminal")
	}
}

func TestCompletedFreezesState(t *testing.T) {
	s := New()
	s.Apply(Event{Kind: KindConnected})

	done := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.Apply(Event{Kind: KindWorkflowCompleted, Result: &WorkflowResult{Result: "OK", CompletedAt: done}})

	if s.Phase != Completed {
		t.Fatalf("Phase = %v, want Completed", s.Phase)
	}
	if s.Connected {
		t.Error("Connected should be false after completion")
	}

	// Simulated late events must all be dropped.
	s.Apply(Event{Kind: KindProgress, Progress: &ProgressEntry{Phase: "late"}})
	s.Apply(Event{Kind: KindApprovalRequired, Approval: &ApprovalRequest{RequestID: "rX"}})
	s.Apply(Event{Kind: KindError, Message: "late error"})

	if len(s.Progress) != 0 {
		t.Errorf("progress appended after terminal: %+v", s.Progress)
	}
	if s.Pending != nil {
		t.Error("approval installed after terminal")
	}
	if s.Phase != Completed {
		t.Errorf("Phase = %v after late error, want Completed", s.Phase)
	}
	if s.Result == nil || s.Result.Result != "OK" || !s.Result.CompletedAt.Equal(done) {
		t.Errorf("Result = %+v, want {OK %v}", s.Result, done)
	}
}

func TestServerErrorEvent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"with message", "executor blew up", "executor blew up"},
		{"absent payload", "", fallbackErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Apply(Event{Kind: KindConnected})
			s.Apply(Event{Kind: KindError, Message: tt.message})

			if s.Phase != Errored {
				t.Errorf("Phase = %v, want Errored", s.Phase)
			}
			if s.Connected {
				t.Error("Connected should be false after a server error")
			}
			if s.Fault == nil || s.Fault.Kind != FaultServer || s.Fault.Message != tt.want {
				t.Errorf("Fault = %+v, want server fault %q", s.Fault, tt.want)
			}
		})
	}
}

func TestStreamLostIsNotTerminal(t *testing.T) {
	s := New()
	s.Apply(Event{Kind: KindConnected})

	s.StreamLost(errors.New("connection reset"))

	if s.Connected {
		t.Error("Connected should be false after a transport fault")
	}
	if s.Phase != Connected {
		t.Errorf("Phase = %v, want Connected (transport faults do not end the session)", s.Phase)
	}
	if s.Fault == nil || s.Fault.Kind != FaultTransport {
		t.Errorf("Fault = %+v, want a transport fault", s.Fault)
	}
}

func TestStartFailedStaysIdle(t *testing.T) {
	s := New()
	s.StartFailed(errors.New("503 service unavailable"))

	if s.Phase != Idle {
		t.Errorf("Phase = %v, want Idle", s.Phase)
	}
	if s.Fault == nil || s.Fault.Kind != FaultStart {
		t.Errorf("Fault = %+v, want a start fault", s.Fault)
	}
	if s.SessionID != "" {
		t.Error("no session id should be attached after a failed start")
	}
}

func TestClearPendingIsOptimistic(t *testing.T) {
	s := New()
	s.Apply(Event{Kind: KindConnected})
	s.Apply(Event{Kind: KindApprovalRequired, Approval: &ApprovalRequest{RequestID: "r1", ApprovalID: "a1"}})

	req := s.ClearPending()
	if req == nil || req.RequestID != "r1" {
		t.Fatalf("ClearPending returned %+v, want r1", req)
	}
	if s.Pending != nil {
		t.Error("pending slot should be empty immediately after ClearPending")
	}

	// A later submission failure surfaces a fault but never reopens the slot.
	s.SubmitFailed(errors.New("502 bad gateway"))
	if s.Pending != nil {
		t.Error("pending slot must not be restored on submit failure")
	}
	if s.Fault == nil || s.Fault.Kind != FaultSubmit {
		t.Errorf("Fault = %+v, want a submit fault", s.Fault)
	}
}

func TestFullRunScenario(t *testing.T) {
	s := New()
	s.SetConnecting("sess-42")

	completedAt := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)

	s.Apply(Event{Kind: KindConnected})
	s.Apply(Event{Kind: KindProgress, Progress: &ProgressEntry{Phase: "extract", Status: StatusRunning}})
	s.Apply(Event{Kind: KindProgress, Progress: &ProgressEntry{Phase: "extract", Status: StatusCompleted}})
	s.Apply(Event{Kind: KindApprovalRequired, Approval: &ApprovalRequest{RequestID: "r1", ApprovalID: "a1"}})

	if s.Pending == nil {
		t.Fatal("approval should be pending")
	}
	if req := s.ClearPending(); req.ApprovalID != "a1" {
		t.Fatalf("cleared request = %+v, want a1", req)
	}

	s.Apply(Event{Kind: KindWorkflowCompleted, Result: &WorkflowResult{Result: "OK", CompletedAt: completedAt}})

	if s.Connected {
		t.Error("Connected should be false at end state")
	}
	if len(s.Progress) != 2 {
		t.Errorf("progress log length = %d, want 2", len(s.Progress))
	}
	if s.Pending != nil {
		t.Error("pending approval should be nil at end state")
	}
	if s.Result == nil || s.Result.Result != "OK" || !s.Result.CompletedAt.Equal(completedAt) {
		t.Errorf("Result = %+v, want {OK %v}", s.Result, completedAt)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := New()
	s.Apply(Event{Kind: KindConnected})
	s.Apply(Event{Kind: KindProgress, Progress: &ProgressEntry{Phase: "extract", Status: StatusRunning}})
	s.Apply(Event{Kind: KindApprovalRequired, Approval: &ApprovalRequest{RequestID: "r1"}})

	snap := s.Snapshot()
	snap.Progress[0].Phase = "mutated"
	snap.Pending.RequestID = "mutated"

	if s.Progress[0].Phase != "extract" {
		t.Error("snapshot mutation leaked into the progress log")
	}
	if s.Pending.RequestID != "r1" {
		t.Error("snapshot mutation leaked into the pending approval")
	}
}
