package workflow

import (
	"context"
	"time"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	domainwf "github.com/Ultronjnr/oversightglobal-sub000/internal/domain/workflow"
)

// Transition is the outcome of applying a trigger to a requisition.
// Updated is a modified copy; the input requisition is left untouched.
type Transition struct {
	From    domainwf.State
	To      domainwf.State
	Trigger domainwf.Trigger
	Action  string
	Updated *entity.Requisition
}

// InitialState is the starting status and mirror values of a new requisition
type InitialState struct {
	Status        string
	HODStatus     string
	FinanceStatus string
}

// WorkflowEngine applies approval-gate transitions to requisitions
type WorkflowEngine interface {
	// Initial returns the starting state; without an active HOD the HOD gate is bypassed
	Initial(hasActiveHOD bool) InitialState

	// Decide applies an APPROVE or DECLINE trigger on behalf of session
	Decide(ctx context.Context, session entity.Session, req *entity.Requisition, trigger domainwf.Trigger, comments string) (*Transition, error)

	// Split applies the SPLIT trigger on behalf of session
	Split(ctx context.Context, session entity.Session, req *entity.Requisition, details string) (*Transition, error)

	// PermittedTriggers lists what session may do to req now
	PermittedTriggers(ctx context.Context, session entity.Session, req *entity.Requisition) []domainwf.Trigger
}

// Clock returns the current time
type Clock func() time.Time
