package mockflow

import "time"

// Scenario scripts the event sequence one session replays. The default
// mirrors a small document-intelligence run: extraction, then compliance
// gated on a human approval.
type Scenario struct {
	Phases          []string
	ApprovalPhase   string // phase whose running event is followed by the gate
	ApprovalTitle   string
	ApprovalMessage string
	Preview         string
	Result          string
	Fail            bool
	FailMessage     string
	ApprovalTimeout time.Duration
}

// DefaultScenario returns the standard two-phase approval run.
func DefaultScenario() Scenario {
	return Scenario{
		Phases:        []string{"extraction", "compliance"},
		ApprovalPhase: "compliance",
		ApprovalTitle: "Compliance review required",
		ApprovalMessage: "The compliance check needs a human decision before " +
			"the workflow can continue.",
		Preview: "## Extracted summary\n\nAll mandatory fields were found. " +
			"One clause needs review:\n\n> Liability is limited to the fee paid.",
		Result:          "Document processed successfully",
		ApprovalTimeout: 5 * time.Minute,
	}
}

// FailingScenario returns a run that ends in a server-reported error.
func FailingScenario(message string) Scenario {
	s := DefaultScenario()
	s.ApprovalPhase = "" // no gate; fail at the end of the phases
	s.Fail = true
	s.FailMessage = message
	return s
}
