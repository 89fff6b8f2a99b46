package timing

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTimesetName is returned when a timeset is created without a
	// name.
	ErrEmptyTimesetName = errors.New("timing: timeset name must not be empty")

	// ErrNonPositivePeriod is returned when a timeset is created with a cycle
	// period that is zero, negative or not a finite number.
	ErrNonPositivePeriod = errors.New("timing: period must be positive")
)

// Timeset is the record of the tester's cycle period. The cycle period is the
// unit of time that all pin timing is expressed against.
type Timeset struct {
	Name   string
	Period VTimeInNs
}

// NewTimeset creates a timeset after validating its fields.
func NewTimeset(name string, period VTimeInNs) (Timeset, error) {
	if name == "" {
		return Timeset{}, ErrEmptyTimesetName
	}

	if !period.valid() || period <= 0 {
		return Timeset{}, fmt.Errorf(
			"%w: timeset %s has period %g ns", ErrNonPositivePeriod, name, period)
	}

	return Timeset{Name: name, Period: period}, nil
}

// Freq returns the cycle rate of the timeset.
func (ts Timeset) Freq() Freq {
	return FreqOf(ts.Period)
}

// CycleTime returns the time at which cycle n starts, counting from 0.
func (ts Timeset) CycleTime(n uint64) VTimeInNs {
	return VTimeInNs(n) * ts.Period
}

func (ts Timeset) String() string {
	return fmt.Sprintf("%s(%gns)", ts.Name, float64(ts.Period))
}
