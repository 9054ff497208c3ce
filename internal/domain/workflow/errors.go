package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when no transition exists for a trigger from the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not a known requisition status
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every candidate transition was rejected by its guard
	ErrGuardFailed = errors.New("guard condition failed")
)
