package tester

import (
	"github.com/sarchlab/vtester/timing"
)

// DefaultName is the name of testers built without a name.
const DefaultName = "j750"

// Builder can be used to build a tester.
type Builder struct {
	name          string
	timesetName   string
	timesetPeriod timing.VTimeInNs
	pins          []string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		name: DefaultName,
	}
}

// WithName sets the name of the tester.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithTimeset sets the timeset that is active when the tester is built.
func (b Builder) WithTimeset(name string, period timing.VTimeInNs) Builder {
	b.timesetName = name
	b.timesetPeriod = period

	return b
}

// WithPins adds pins to the tester.
func (b Builder) WithPins(names ...string) Builder {
	b.pins = append(append([]string(nil), b.pins...), names...)
	return b
}

// Build builds the tester.
func (b Builder) Build() (*Tester, error) {
	if b.name == "" {
		return nil, ErrEmptyTesterName
	}

	t := New(b.name)

	if b.timesetName != "" || b.timesetPeriod != 0 {
		if err := t.SetTimeset(b.timesetName, b.timesetPeriod); err != nil {
			return nil, err
		}
	}

	for _, name := range b.pins {
		if _, err := t.AddPin(name); err != nil {
			return nil, err
		}
	}

	return t, nil
}
