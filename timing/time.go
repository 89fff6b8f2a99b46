package timing

import "math"

// VTimeInNs defines the time in the simulated tester, in nanoseconds.
type VTimeInNs float64

// Defines the unit of time.
const (
	Nanosecond  VTimeInNs = 1
	Microsecond VTimeInNs = 1e3
	Millisecond VTimeInNs = 1e6
)

func (t VTimeInNs) valid() bool {
	f := float64(t)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
