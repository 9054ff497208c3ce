package workflow

// Trigger is an action applied to a requisition at an approval gate
type Trigger string

const (
	TriggerApprove Trigger = "APPROVE"
	TriggerDecline Trigger = "DECLINE"
	TriggerSplit   Trigger = "SPLIT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// IsDecision reports whether the trigger is an approve/decline decision
func (t Trigger) IsDecision() bool {
	return t == TriggerApprove || t == TriggerDecline
}
