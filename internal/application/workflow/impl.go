package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/audit"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	domainwf "github.com/Ultronjnr/oversightglobal-sub000/internal/domain/workflow"
)

// engineImpl is the concrete implementation of WorkflowEngine
type engineImpl struct {
	clock Clock
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithClock overrides the time source used for history entries
func WithClock(clock Clock) EngineOption {
	return func(e *engineImpl) {
		e.clock = clock
	}
}

// NewEngine creates a new workflow engine
func NewEngine(opts ...EngineOption) WorkflowEngine {
	e := &engineImpl{
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *engineImpl) Initial(hasActiveHOD bool) InitialState {
	if hasActiveHOD {
		return InitialState{
			Status:        entity.RequisitionStatusPendingHOD,
			HODStatus:     entity.HODStatusPending,
			FinanceStatus: entity.FinanceStatusNotStarted,
		}
	}
	return InitialState{
		Status:        entity.RequisitionStatusPendingFinance,
		HODStatus:     entity.HODStatusNotApplicable,
		FinanceStatus: entity.FinanceStatusPending,
	}
}

func (e *engineImpl) Decide(ctx context.Context, session entity.Session, req *entity.Requisition, trigger domainwf.Trigger, comments string) (*Transition, error) {
	if !trigger.IsDecision() {
		return nil, apperror.New(apperror.KindValidation, "workflow.decide", "unsupported decision %s", trigger)
	}

	t, err := e.fire(ctx, session, req, trigger)
	if err != nil {
		return nil, err
	}

	updated := req.Clone()
	updated.Status = t.To.String()

	switch {
	case t.From == domainwf.StatePendingHODApproval && trigger == domainwf.TriggerApprove:
		updated.HODStatus = entity.HODStatusApproved
		updated.FinanceStatus = entity.FinanceStatusPending
		t.Action = entity.ActionHODApproved
	case t.From == domainwf.StatePendingHODApproval:
		updated.HODStatus = entity.HODStatusDeclined
		t.Action = entity.ActionHODDeclined
	case trigger == domainwf.TriggerApprove:
		updated.FinanceStatus = entity.FinanceStatusApproved
		t.Action = entity.ActionFinanceApproved
	default:
		updated.FinanceStatus = entity.FinanceStatusDeclined
		t.Action = entity.ActionFinanceDeclined
	}

	e.record(updated, t, session, comments)
	return t, nil
}

func (e *engineImpl) Split(ctx context.Context, session entity.Session, req *entity.Requisition, details string) (*Transition, error) {
	t, err := e.fire(ctx, session, req, domainwf.TriggerSplit)
	if err != nil {
		return nil, err
	}

	updated := req.Clone()
	updated.Status = t.To.String()
	updated.FinanceStatus = entity.FinanceStatusSplit
	if t.From == domainwf.StatePendingHODApproval {
		updated.HODStatus = entity.HODStatusApproved
	}
	t.Action = entity.ActionPRSplit

	e.record(updated, t, session, details)
	return t, nil
}

func (e *engineImpl) PermittedTriggers(ctx context.Context, session entity.Session, req *entity.Requisition) []domainwf.Trigger {
	state := domainwf.State(req.Status)
	if !state.IsValid() {
		return []domainwf.Trigger{}
	}
	machine := BuildRequisitionStateMachine(state)
	return machine.PermittedTriggers(domainwf.WithActorRole(ctx, session.Role))
}

// fire runs the trigger through a machine positioned at the requisition's stored status
func (e *engineImpl) fire(ctx context.Context, session entity.Session, req *entity.Requisition, trigger domainwf.Trigger) (*Transition, error) {
	from := domainwf.State(req.Status)
	if !from.IsValid() {
		return nil, apperror.Wrap(apperror.KindInvalidTransition, "workflow.fire",
			fmt.Errorf("%w: %s", domainwf.ErrInvalidState, req.Status))
	}

	machine := BuildRequisitionStateMachine(from)
	if err := machine.Fire(domainwf.WithActorRole(ctx, session.Role), trigger); err != nil {
		if errors.Is(err, domainwf.ErrGuardFailed) {
			return nil, &apperror.Error{
				Kind:    apperror.KindInvalidTransition,
				Op:      "workflow.fire",
				Message: fmt.Sprintf("role %s cannot %s a requisition in %s", session.Role, trigger, from),
				Err:     err,
			}
		}
		return nil, apperror.Wrap(apperror.KindInvalidTransition, "workflow.fire", err)
	}

	return &Transition{
		From:    from,
		To:      machine.State(),
		Trigger: trigger,
	}, nil
}

func (e *engineImpl) record(updated *entity.Requisition, t *Transition, session entity.Session, details string) {
	now := e.clock()
	updated.History = audit.AppendHistory(updated.History, audit.NewEntry(t.Action, session, details, now))
	updated.UpdatedAt = now.UTC()
	t.Updated = updated
}
