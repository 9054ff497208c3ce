package workflow

// State is a requisition status in the approval lifecycle
type State string

const (
	StatePendingHODApproval     State = "PENDING_HOD_APPROVAL"
	StateHODApproved            State = "HOD_APPROVED"
	StateHODDeclined            State = "HOD_DECLINED"
	StatePendingFinanceApproval State = "PENDING_FINANCE_APPROVAL"
	StateFinanceApproved        State = "FINANCE_APPROVED"
	StateFinanceDeclined        State = "FINANCE_DECLINED"
	StateSplit                  State = "SPLIT"
)

var validStates = map[State]bool{
	StatePendingHODApproval:     true,
	StateHODApproved:            true,
	StateHODDeclined:            true,
	StatePendingFinanceApproval: true,
	StateFinanceApproved:        true,
	StateFinanceDeclined:        true,
	StateSplit:                  true,
}

// Terminal states never appear as the source of a transition
var terminalStates = map[State]bool{
	StateHODDeclined:     true,
	StateFinanceApproved: true,
	StateFinanceDeclined: true,
	StateSplit:           true,
}

// IsTerminal returns true if no decision or split can be applied from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsPending returns true for the two gate states that await a decision
func (s State) IsPending() bool {
	return s == StatePendingHODApproval || s == StatePendingFinanceApproval
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known requisition status
func (s State) IsValid() bool {
	return validStates[s]
}
