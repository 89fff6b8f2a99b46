package clock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is applied to a
	// clock in a state that does not permit it.
	ErrInvalidTransition = errors.New("clock: invalid transition")

	// ErrNoActiveTimeset is returned when a half-period must be computed but
	// the tester has no active timeset.
	ErrNoActiveTimeset = errors.New("clock: no active timeset")

	// ErrMalformedConfig is returned when a config does not carry exactly one
	// positive period or frequency.
	ErrMalformedConfig = errors.New("clock: malformed config")
)

// TransitionError describes a rejected operation.
type TransitionError struct {
	Clock string
	Op    Op
	From  State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("clock: cannot %s %s while %s", e.Op, e.Clock, e.From)
}

// Unwrap makes TransitionError match ErrInvalidTransition.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
