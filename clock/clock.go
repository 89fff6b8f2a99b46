// Package clock models the virtual clock generator that every tester pin
// carries.
//
// A clock is configured with a period or a frequency. Its half-period, the
// number of tester cycles it holds each level, is derived from the active
// timeset when the clock is enabled and whenever Update is called. Changing
// the timeset alone does not refresh the half-period.
package clock

import (
	"fmt"
	"log"

	"github.com/sarchlab/vtester/hooking"
	"github.com/sarchlab/vtester/timing"
)

// TimesetSource provides the timeset that is currently active.
type TimesetSource interface {
	ActiveTimeset() (timing.Timeset, bool)
}

// HookPosClockTransition marks a successful clock operation. The hook item is
// the *Clock and the detail is a Transition.
var HookPosClockTransition = &hooking.HookPos{Name: "ClockTransition"}

// Transition describes a successful clock operation.
type Transition struct {
	Op         Op
	From       State
	To         State
	HalfPeriod uint64

	// Timeset is the timeset the half-period was computed against. It is only
	// set by Enable and Update.
	Timeset timing.Timeset
}

// Clock is the state machine of a pin clock.
type Clock struct {
	*hooking.HookableBase

	name   string
	source TimesetSource

	state      State
	config     Config
	halfPeriod uint64
	computedBy timing.Timeset
}

// New creates a disabled clock that reads timesets from source.
func New(name string, source TimesetSource) *Clock {
	if source == nil {
		log.Panic("clock: timeset source must not be nil")
	}

	return &Clock{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		source:       source,
		state:        Disabled,
	}
}

// Name returns the name of the clock.
func (c *Clock) Name() string {
	return c.name
}

// State returns the current state.
func (c *Clock) State() State {
	return c.state
}

// Config returns the config. The second return value is false if the clock
// is disabled.
func (c *Clock) Config() (Config, bool) {
	return c.config, c.state != Disabled
}

// IsAClock tells if the clock has a config.
func (c *Clock) IsAClock() bool {
	return c.state != Disabled
}

// IsARunningClock tells if the clock is running.
func (c *Clock) IsARunningClock() bool {
	return c.state == Running
}

// HalfPeriod returns the cached half-period in tester cycles. The value may
// be stale if the timeset changed after it was computed. The second return
// value is false if the clock is disabled.
func (c *Clock) HalfPeriod() (uint64, bool) {
	if c.state == Disabled {
		return 0, false
	}

	return c.halfPeriod, true
}

// ComputedWith returns the timeset the half-period was last computed
// against.
func (c *Clock) ComputedWith() (timing.Timeset, bool) {
	return c.computedBy, c.state != Disabled
}

// IsStale tells if the half-period was computed against a timeset other than
// the active one.
func (c *Clock) IsStale() bool {
	if c.state == Disabled {
		return false
	}

	active, ok := c.source.ActiveTimeset()
	if !ok {
		return true
	}

	return active != c.computedBy
}

// Enable configures the clock and computes its half-period against the
// active timeset. The clock ends up Stopped. Nothing changes if the config is
// malformed, the clock is running or paused, or no timeset is active.
func (c *Clock) Enable(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot enable %s: %w", c.name, err)
	}

	if err := c.mustAllow(OpEnable); err != nil {
		return err
	}

	ts, err := c.activeTimeset(OpEnable)
	if err != nil {
		return err
	}

	from := c.state
	c.config = cfg
	c.recompute(ts)
	c.state = Stopped

	c.notify(OpEnable, from, ts)

	return nil
}

// Disable removes the config. It always succeeds.
func (c *Clock) Disable() {
	from := c.state

	c.config = Config{}
	c.halfPeriod = 0
	c.computedBy = timing.Timeset{}
	c.state = Disabled

	c.notify(OpDisable, from, timing.Timeset{})
}

// Start moves a stopped clock to running.
func (c *Clock) Start() error {
	return c.move(OpStart, Running)
}

// Pause moves a running clock to paused.
func (c *Clock) Pause() error {
	return c.move(OpPause, Paused)
}

// Resume moves a paused clock to running.
func (c *Clock) Resume() error {
	return c.move(OpResume, Running)
}

// Stop moves a running or paused clock to stopped.
func (c *Clock) Stop() error {
	return c.move(OpStop, Stopped)
}

// Update recomputes the half-period against the active timeset without
// changing the state.
func (c *Clock) Update() error {
	if err := c.mustAllow(OpUpdate); err != nil {
		return err
	}

	ts, err := c.activeTimeset(OpUpdate)
	if err != nil {
		return err
	}

	c.recompute(ts)
	c.notify(OpUpdate, c.state, ts)

	return nil
}

func (c *Clock) move(op Op, to State) error {
	if err := c.mustAllow(op); err != nil {
		return err
	}

	from := c.state
	c.state = to
	c.notify(op, from, timing.Timeset{})

	return nil
}

func (c *Clock) mustAllow(op Op) error {
	if !CanApply(op, c.state) {
		return &TransitionError{Clock: c.name, Op: op, From: c.state}
	}

	return nil
}

func (c *Clock) activeTimeset(op Op) (timing.Timeset, error) {
	ts, ok := c.source.ActiveTimeset()
	if !ok {
		return timing.Timeset{}, fmt.Errorf(
			"cannot %s %s: %w", op, c.name, ErrNoActiveTimeset)
	}

	return ts, nil
}

func (c *Clock) recompute(ts timing.Timeset) {
	c.halfPeriod = timing.HalfPeriodCycles(c.config.EffectivePeriod(), ts)
	c.computedBy = ts
}

func (c *Clock) notify(op Op, from State, ts timing.Timeset) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosClockTransition,
		Item:   c,
		Detail: Transition{
			Op:         op,
			From:       from,
			To:         c.state,
			HalfPeriod: c.halfPeriod,
			Timeset:    ts,
		},
	})
}
