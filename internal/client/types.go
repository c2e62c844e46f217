// Package client provides the HTTP and WebSocket clients for a docuflow
// workflow server. Types mirror the server wire protocol without importing
// server packages.
package client

import (
	"encoding/json"
	"time"
)

// Envelope wraps every frame on the event stream.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// StartRequest is the body of POST /api/workflow/start.
type StartRequest struct {
	DocumentURI   string `json:"document_uri"`
	DocumentTitle string `json:"document_title,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
}

// StartResponse carries the server-assigned session id.
type StartResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
}

// Decision is the body of POST /api/workflow/approval. Comment is omitted
// entirely when empty, never sent as "".
type Decision struct {
	RequestID  string `json:"request_id"`
	ApprovalID string `json:"approval_id"`
	Approved   bool   `json:"approved"`
	Comment    string `json:"comment,omitempty"`
}

// DecisionAck is the server's acknowledgment of a decision.
type DecisionAck struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	ApprovalID string `json:"approval_id,omitempty"`
}

// SessionStatus is returned by GET /api/workflow/{id}/status.
type SessionStatus struct {
	Status      string `json:"status"`
	DocumentURI string `json:"document_uri,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// --- Event payloads ---

// ConnectedPayload acks the stream subscription.
type ConnectedPayload struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressPayload reports one workflow phase transition.
type ProgressPayload struct {
	Phase     string    `json:"phase"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutorCompletedPayload reports a finished workflow executor.
type ExecutorCompletedPayload struct {
	ExecutorID string    `json:"executor_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ApprovalRequiredPayload announces a human-in-the-loop gate.
type ApprovalRequiredPayload struct {
	RequestID  string    `json:"request_id"`
	ApprovalID string    `json:"approval_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	SourceURI  string    `json:"source_uri"`
	Preview    string    `json:"preview"`
	Timestamp  time.Time `json:"timestamp"`
}

// HITLStatusPayload reports approval-gate bookkeeping.
type HITLStatusPayload struct {
	Status     string    `json:"status"`
	ApprovalID string    `json:"approval_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// WaitingPayload reports how many approvals the workflow is blocked on.
type WaitingPayload struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// CompletedPayload is the terminal workflow output.
type CompletedPayload struct {
	SessionID string    `json:"session_id,omitempty"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorPayload carries a server-reported failure. The whole payload may be
// absent on the wire.
type ErrorPayload struct {
	Message string `json:"message"`
}
