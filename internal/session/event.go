package session

import "time"

// Kind identifies a stream event. Values match the wire event names.
type Kind string

const (
	KindConnected         Kind = "connected"
	KindWorkflowStarted   Kind = "workflow_started"
	KindProgress          Kind = "progress"
	KindExecutorCompleted Kind = "executor_completed"
	KindApprovalRequired  Kind = "approval_required"
	KindHITLStatus        Kind = "hitl_status"
	KindWaitingApproval   Kind = "waiting_for_approval"
	KindWorkflowCompleted Kind = "workflow_completed"
	KindError             Kind = "error"
)

// Event is the tagged union applied to the state machine. Exactly one of
// the payload fields is set, according to Kind.
type Event struct {
	Kind Kind

	Progress *ProgressEntry   // KindProgress
	Approval *ApprovalRequest // KindApprovalRequired
	Result   *WorkflowResult  // KindWorkflowCompleted

	ExecutorID string    // KindExecutorCompleted
	HITLStatus string    // KindHITLStatus
	Message    string    // KindError; empty means no payload arrived
	Timestamp  time.Time // arrival or server timestamp, when available
}
