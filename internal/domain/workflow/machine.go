package workflow

import "context"

// StateMachine tracks the current state of one requisition and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire reports whether the trigger has a transition whose guard passes for ctx
	CanFire(ctx context.Context, trigger Trigger) bool

	// Fire executes the trigger, moving to the target state of the first passing transition
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers lists the triggers that would succeed for ctx, in sorted order
	PermittedTriggers(ctx context.Context) []Trigger
}
