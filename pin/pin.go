// Package pin defines the addressable tester signal that may act as a clock
// source.
package pin

import (
	"github.com/sarchlab/vtester/clock"
)

// Pin is a tester signal. Every pin owns exactly one clock, which starts
// disabled. The clock operations and queries are available on the pin
// directly.
type Pin struct {
	*clock.Clock

	name string
}

// New creates a pin whose clock reads timesets from source.
func New(name string, source clock.TimesetSource) *Pin {
	return &Pin{
		Clock: clock.New(name+".Clock", source),
		name:  name,
	}
}

// Name returns the name of the pin.
func (p *Pin) Name() string {
	return p.name
}
