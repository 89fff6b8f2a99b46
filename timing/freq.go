package timing

import (
	"log"
	"math"
)

// Freq defines the type of frequency, in Hz.
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks.
func (f Freq) Period() VTimeInNs {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInNs(1e9 / float64(f))
}

// InKHz returns the frequency expressed in kHz.
func (f Freq) InKHz() float64 {
	return float64(f / KHz)
}

// FreqOf returns the frequency whose period is p.
func FreqOf(p VTimeInNs) Freq {
	if p == 0 {
		log.Panic("period cannot be 0")
	}

	return Freq(1e9 / float64(p))
}

// HalfPeriodCycles converts a clock period into the number of tester cycles
// that the clock holds each level. The result is rounded to the nearest
// integer, with halves rounded away from zero. Zero is a legal result and
// means that the clock toggles faster than the tester cycle.
func HalfPeriodCycles(period VTimeInNs, ts Timeset) uint64 {
	if ts.Period <= 0 {
		log.Panic("timeset period must be positive")
	}

	cycles := math.Round(float64(period) / (2 * float64(ts.Period)))
	if cycles <= 0 {
		return 0
	}

	if cycles >= math.MaxUint64 {
		return math.MaxUint64
	}

	return uint64(cycles)
}
