package session

import (
	"encoding/json"
	"time"
)

// Phase is the lifecycle position of one observed workflow session.
type Phase int

const (
	Idle Phase = iota
	Connecting
	Connected
	Completed
	Errored
)

var phaseNames = map[Phase]string{
	Idle:       "idle",
	Connecting: "connecting",
	Connected:  "connected",
	Completed:  "completed",
	Errored:    "errored",
}

var phaseFromName = map[string]Phase{
	"idle":       Idle,
	"connecting": Connecting,
	"connected":  Connected,
	"completed":  Completed,
	"errored":    Errored,
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := phaseFromName[s]; ok {
		*p = v
	}
	return nil
}

// Terminal reports whether no further events will be applied.
func (p Phase) Terminal() bool {
	return p == Completed || p == Errored
}

// ProgressStatus is the server-reported status of a workflow phase.
type ProgressStatus string

const (
	StatusRunning   ProgressStatus = "running"
	StatusCompleted ProgressStatus = "completed"
)

// ProgressEntry is one append-only record of workflow progress. Entries are
// kept in arrival order; ObservedAt is server-assigned and may not be
// monotonic across the log.
type ProgressEntry struct {
	Phase      string         `json:"phase"`
	Status     ProgressStatus `json:"status"`
	ObservedAt time.Time      `json:"observedAt"`
}

// ApprovalRequest is the single outstanding human-in-the-loop gate.
// RequestID identifies the originating workflow step and ApprovalID the
// approval instance; both are opaque and both go on the decision.
type ApprovalRequest struct {
	RequestID  string    `json:"requestId"`
	ApprovalID string    `json:"approvalId"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	SourceURI  string    `json:"sourceUri"`
	Preview    string    `json:"preview"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// WorkflowResult is the terminal payload of a completed session.
type WorkflowResult struct {
	Result      string    `json:"result"`
	CompletedAt time.Time `json:"completedAt"`
}

// FaultKind classifies the current surfaced error.
type FaultKind string

const (
	FaultStart     FaultKind = "start_failed"
	FaultTransport FaultKind = "stream_transport"
	FaultServer    FaultKind = "server_error"
	FaultProtocol  FaultKind = "protocol_violation"
	FaultSubmit    FaultKind = "approval_submit_failed"
)

// Fault is the single current error surfaced to the UI. A new fault
// replaces the previous one; faults never stack.
type Fault struct {
	Kind    FaultKind `json:"kind"`
	Message string    `json:"message"`
}

// fallbackErrorMessage is used when a server error event carries no payload.
const fallbackErrorMessage = "workflow reported an error"

// State is the in-memory projection of one session's event stream. It is
// owned by the single event-processing path; the UI only ever reads
// snapshots. All mutation goes through Apply and the named mutators below.
type State struct {
	SessionID string          `json:"sessionId"`
	Phase     Phase           `json:"phase"`
	Connected bool            `json:"connected"`
	Progress  []ProgressEntry `json:"progress"`

	Pending *ApprovalRequest `json:"pending,omitempty"`
	Result  *WorkflowResult  `json:"result,omitempty"`
	Fault   *Fault           `json:"fault,omitempty"`

	// Informational counters from passthrough events.
	ExecutorsDone int    `json:"executorsDone"`
	LastHITL      string `json:"lastHitl,omitempty"`
}

// New returns an Idle state with no session attached.
func New() *State {
	return &State{}
}

// Apply projects one stream event onto the state. Given the current state
// and one event the next state is fully determined; once a terminal phase
// is reached every further event is dropped.
func (s *State) Apply(ev Event) {
	if s.Phase.Terminal() {
		return
	}

	switch ev.Kind {
	case KindConnected:
		s.Phase = Connected
		s.Connected = true

	case KindWorkflowStarted, KindWaitingApproval:
		// Informational only.

	case KindProgress:
		if ev.Progress != nil {
			s.Progress = append(s.Progress, *ev.Progress)
		}

	case KindExecutorCompleted:
		s.ExecutorsDone++

	case KindHITLStatus:
		s.LastHITL = ev.HITLStatus

	case KindApprovalRequired:
		if ev.Approval == nil {
			return
		}
		if s.Pending != nil {
			// The server is expected to serialize approval gates; a second
			// concurrent gate is a server defect. Keep the request the
			// human has not yet acted on.
			s.Fault = &Fault{
				Kind:    FaultProtocol,
				Message: "approval_required received while another approval is pending",
			}
			return
		}
		req := *ev.Approval
		s.Pending = &req

	case KindWorkflowCompleted:
		res := WorkflowResult{CompletedAt: ev.Timestamp}
		if ev.Result != nil {
			res = *ev.Result
		}
		s.Result = &res
		s.Pending = nil
		s.Phase = Completed
		s.Connected = false

	case KindError:
		msg := ev.Message
		if msg == "" {
			msg = fallbackErrorMessage
		}
		s.Fault = &Fault{Kind: FaultServer, Message: msg}
		s.Pending = nil
		s.Phase = Errored
		s.Connected = false
	}
}

// SetConnecting attaches a freshly started session. Only valid from Idle.
func (s *State) SetConnecting(sessionID string) {
	if s.Phase != Idle {
		return
	}
	s.SessionID = sessionID
	s.Phase = Connecting
}

// StartFailed records a failed start. The session never leaves Idle and no
// stream is ever opened.
func (s *State) StartFailed(err error) {
	s.Fault = &Fault{Kind: FaultStart, Message: err.Error()}
}

// StreamLost records a transport-level drop. Unlike a server error event it
// is not terminal: the phase is untouched and only the connection flag and
// fault slot change.
func (s *State) StreamLost(err error) {
	if s.Phase.Terminal() {
		return
	}
	s.Connected = false
	msg := "event stream disconnected"
	if err != nil {
		msg = err.Error()
	}
	s.Fault = &Fault{Kind: FaultTransport, Message: msg}
}

// ClearPending removes and returns the pending approval. Called at the
// moment a decision submission is initiated, before the request resolves.
func (s *State) ClearPending() *ApprovalRequest {
	req := s.Pending
	s.Pending = nil
	return req
}

// SubmitFailed records a failed decision submission. The pending slot is
// not restored; re-establishing it would risk acting on stale data.
func (s *State) SubmitFailed(err error) {
	s.Fault = &Fault{Kind: FaultSubmit, Message: err.Error()}
}

// Snapshot returns a deep copy safe for the UI to retain across updates.
func (s *State) Snapshot() *State {
	c := *s
	if len(s.Progress) > 0 {
		c.Progress = make([]ProgressEntry, len(s.Progress))
		copy(c.Progress, s.Progress)
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	if s.Fault != nil {
		f := *s.Fault
		c.Fault = &f
	}
	return &c
}
