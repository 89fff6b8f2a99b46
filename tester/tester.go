// Package tester provides the virtual tester that owns the active timeset
// and the pins.
package tester

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/vtester/hooking"
	"github.com/sarchlab/vtester/pin"
	"github.com/sarchlab/vtester/timing"
)

var (
	// ErrPinNotFound is returned when a pin name is not known to the tester.
	ErrPinNotFound = errors.New("tester: pin not found")

	// ErrDuplicatePin is returned when a pin name is added twice.
	ErrDuplicatePin = errors.New("tester: duplicated pin")

	// ErrEmptyPinName is returned when a pin is added without a name.
	ErrEmptyPinName = errors.New("tester: pin name must not be empty")

	// ErrEmptyTesterName is returned when a tester is built without a name.
	ErrEmptyTesterName = errors.New("tester: tester name must not be empty")
)

// A list of hook positions the tester raises.
var (
	// HookPosTimesetChange is raised after the active timeset is replaced.
	// The item is the new timing.Timeset and the detail is a TimesetChange.
	HookPosTimesetChange = &hooking.HookPos{Name: "TimesetChange"}

	// HookPosCycle is raised after the cycle counter advances. The item is
	// the new cycle number and the detail is a CycleAdvance.
	HookPosCycle = &hooking.HookPos{Name: "Cycle"}

	// HookPosPinAdded is raised after a pin is added. The item is the
	// *pin.Pin.
	HookPosPinAdded = &hooking.HookPos{Name: "PinAdded"}
)

// TimesetChange describes a timeset replacement.
type TimesetChange struct {
	Previous    timing.Timeset
	HadPrevious bool
	Current     timing.Timeset
}

// CycleAdvance describes the cycles that passed in a single call.
type CycleAdvance struct {
	From  uint64
	Count uint64
}

// Tester owns the active timeset and the pins. A tester is not safe for
// concurrent use; give every session its own tester.
type Tester struct {
	*hooking.HookableBase

	name string

	timeset    timing.Timeset
	hasTimeset bool

	pins     map[string]*pin.Pin
	pinOrder []*pin.Pin
	pinHooks []hooking.Hook

	cycle uint64
}

// New creates a tester without timeset and pins.
func New(name string) *Tester {
	return &Tester{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		pins:         make(map[string]*pin.Pin),
	}
}

// Name returns the name of the tester.
func (t *Tester) Name() string {
	return t.name
}

// SetTimeset replaces the active timeset. Clock half-periods are not
// recomputed; call Update on the clocks, or UpdateClocks, before relying on
// them.
func (t *Tester) SetTimeset(name string, period timing.VTimeInNs) error {
	ts, err := timing.NewTimeset(name, period)
	if err != nil {
		return err
	}

	change := TimesetChange{
		Previous:    t.timeset,
		HadPrevious: t.hasTimeset,
		Current:     ts,
	}

	t.timeset = ts
	t.hasTimeset = true

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosTimesetChange,
		Item:   ts,
		Detail: change,
	})

	return nil
}

// ActiveTimeset returns the active timeset. The second return value is false
// if no timeset has been set.
func (t *Tester) ActiveTimeset() (timing.Timeset, bool) {
	return t.timeset, t.hasTimeset
}

// AddPin creates a pin with a disabled clock.
func (t *Tester) AddPin(name string) (*pin.Pin, error) {
	if name == "" {
		return nil, ErrEmptyPinName
	}

	if _, exists := t.pins[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePin, name)
	}

	p := pin.New(name, t)
	for _, h := range t.pinHooks {
		p.AcceptHook(h)
	}

	t.pins[name] = p
	t.pinOrder = append(t.pinOrder, p)

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosPinAdded,
		Item:   p,
	})

	return p, nil
}

// Pin returns the pin with the given name.
func (t *Tester) Pin(name string) (*pin.Pin, error) {
	p, ok := t.pins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}

	return p, nil
}

// Pins returns all the pins in the order they were added.
func (t *Tester) Pins() []*pin.Pin {
	pins := make([]*pin.Pin, len(t.pinOrder))
	copy(pins, t.pinOrder)

	return pins
}

// AcceptPinHook registers a hook with every pin clock, including the pins
// that are added later.
func (t *Tester) AcceptPinHook(hook hooking.Hook) {
	for _, h := range t.pinHooks {
		if h == hook {
			panic("duplicated pin hook")
		}
	}

	t.pinHooks = append(t.pinHooks, hook)
	for _, p := range t.pinOrder {
		p.AcceptHook(hook)
	}
}

// PinHooks returns the hooks registered with AcceptPinHook.
func (t *Tester) PinHooks() []hooking.Hook {
	return t.pinHooks
}

// AnyClocksRunning tells if at least one pin clock is running.
func (t *Tester) AnyClocksRunning() bool {
	for _, p := range t.pinOrder {
		if p.IsARunningClock() {
			return true
		}
	}

	return false
}

// RunningClocks returns the pins whose clocks are running.
func (t *Tester) RunningClocks() []*pin.Pin {
	var running []*pin.Pin

	for _, p := range t.pinOrder {
		if p.IsARunningClock() {
			running = append(running, p)
		}
	}

	return running
}

// UpdateClocks recomputes the half-period of every pin that is a clock, in
// the order the pins were added. It stops at the first error.
func (t *Tester) UpdateClocks() error {
	for _, p := range t.pinOrder {
		if !p.IsAClock() {
			continue
		}

		if err := p.Update(); err != nil {
			return err
		}
	}

	return nil
}

// CurrentCycle returns the number of cycles that have passed.
func (t *Tester) CurrentCycle() uint64 {
	return t.cycle
}

// Cycle advances the tester by one cycle.
func (t *Tester) Cycle() {
	t.Cycles(1)
}

// Cycles advances the tester by n cycles. The counter saturates at
// math.MaxUint64 instead of wrapping.
func (t *Tester) Cycles(n uint64) {
	if left := math.MaxUint64 - t.cycle; n > left {
		n = left
	}

	if n == 0 {
		return
	}

	from := t.cycle
	t.cycle += n

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosCycle,
		Item:   t.cycle,
		Detail: CycleAdvance{From: from, Count: n},
	})
}
