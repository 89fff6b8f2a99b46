package tracing

import (
	"sync"
)

// ClockEventFilter selects the clock events a tracer is interested in. If
// the function returns true, the event is counted.
type ClockEventFilter func(e ClockEvent) bool

// CountTracer counts clock operations by name and by pin.
type CountTracer struct {
	filter ClockEventFilter

	lock      sync.Mutex
	opNames   []string
	opCount   map[string]uint64
	pinCount  map[string]uint64
	timesets  uint64
	lastCycle uint64
}

// NewCountTracer creates a new CountTracer. A nil filter counts every event.
func NewCountTracer(filter ClockEventFilter) *CountTracer {
	if filter == nil {
		filter = func(ClockEvent) bool { return true }
	}

	return &CountTracer{
		filter:   filter,
		opCount:  make(map[string]uint64),
		pinCount: make(map[string]uint64),
	}
}

// OpNames returns the operation names seen, in the order they were first
// seen.
func (t *CountTracer) OpNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.opNames))
	copy(names, t.opNames)

	return names
}

// OpCount returns the number of events recorded for an operation.
func (t *CountTracer) OpCount(op string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.opCount[op]
}

// PinCount returns the number of events recorded for a pin.
func (t *CountTracer) PinCount(pin string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.pinCount[pin]
}

// TimesetChanges returns the number of timeset replacements.
func (t *CountTracer) TimesetChanges() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.timesets
}

// LastCycle returns the cycle the tester was at after the last advance.
func (t *CountTracer) LastCycle() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.lastCycle
}

// ClockTransition counts a clock event.
func (t *CountTracer) ClockTransition(e ClockEvent) {
	if !t.filter(e) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.opCount[e.Op]; !ok {
		t.opNames = append(t.opNames, e.Op)
	}

	t.opCount[e.Op]++
	t.pinCount[e.Pin]++
}

// TimesetChange counts a timeset replacement.
func (t *CountTracer) TimesetChange(_ TimesetEvent) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.timesets++
}

// Cycle keeps the latest cycle.
func (t *CountTracer) Cycle(e CycleEvent) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.lastCycle = e.Cycle
}
