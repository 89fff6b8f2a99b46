package scenario

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vtester/clock"
	"github.com/sarchlab/vtester/tester"
	"github.com/sarchlab/vtester/timing"
)

var (
	// ErrExpectationFailed is returned when an expect step does not hold.
	ErrExpectationFailed = errors.New("scenario: expectation failed")

	// ErrUnexpectedError is returned when an operation fails without an
	// expect_error, or with an error of another kind.
	ErrUnexpectedError = errors.New("scenario: unexpected error")

	// ErrMissingError is returned when an operation with expect_error
	// succeeds.
	ErrMissingError = errors.New("scenario: expected an error")

	// ErrFailed is returned by Run when steps failed while continuing on
	// errors.
	ErrFailed = errors.New("scenario: failed")
)

// The error kinds expect_error accepts.
const (
	KindInvalidTransition = "invalid_transition"
	KindNoActiveTimeset   = "no_active_timeset"
	KindMalformedConfig   = "malformed_config"
	KindPinNotFound       = "pin_not_found"
	KindDuplicatePin      = "duplicate_pin"
	KindInvalidTimeset    = "invalid_timeset"
)

var errorKinds = map[string][]error{
	KindInvalidTransition: {clock.ErrInvalidTransition},
	KindNoActiveTimeset:   {clock.ErrNoActiveTimeset},
	KindMalformedConfig:   {clock.ErrMalformedConfig},
	KindPinNotFound:       {tester.ErrPinNotFound},
	KindDuplicatePin:      {tester.ErrDuplicatePin, tester.ErrEmptyPinName},
	KindInvalidTimeset: {
		timing.ErrEmptyTimesetName,
		timing.ErrNonPositivePeriod,
	},
}

// ErrorKind returns the expect_error name of err, or an empty string if err
// is not of a known kind.
func ErrorKind(err error) string {
	for kind, targets := range errorKinds {
		for _, target := range targets {
			if errors.Is(err, target) {
				return kind
			}
		}
	}

	return ""
}

// StepError describes a failed step.
type StepError struct {
	Index int
	Line  int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (line %d, %s): %v",
		e.Index+1, e.Line, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
