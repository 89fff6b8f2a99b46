package tracing

import (
	"sync"

	"github.com/sarchlab/vtester/datarecording"
	"github.com/sarchlab/vtester/idgen"
)

// The tables a DBTracer writes.
const (
	ClockEventTable   = "clock_event"
	TimesetEventTable = "timeset_event"
)

// DBTracer is a tracer that stores clock and timeset events into a database.
// Cycle advances are not stored.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	ids     idgen.Generator

	clockEvents   int
	timesetEvents int
}

// NewDBTracer creates a new DBTracer and creates its tables.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	ids idgen.Generator,
) *DBTracer {
	dataRecorder.CreateTable(ClockEventTable, ClockEvent{})
	dataRecorder.CreateTable(TimesetEventTable, TimesetEvent{})

	return &DBTracer{
		backend: dataRecorder,
		ids:     ids,
	}
}

// ClockTransition records a clock event.
func (t *DBTracer) ClockTransition(event ClockEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if event.ID == "" {
		event.ID = t.ids.Generate()
	}

	t.backend.InsertData(ClockEventTable, event)
	t.clockEvents++
}

// TimesetChange records a timeset event.
func (t *DBTracer) TimesetChange(event TimesetEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if event.ID == "" {
		event.ID = t.ids.Generate()
	}

	t.backend.InsertData(TimesetEventTable, event)
	t.timesetEvents++
}

// Cycle does nothing.
func (t *DBTracer) Cycle(_ CycleEvent) {
	// Do nothing for now.
}

// NumRecords returns how many clock and timeset events were recorded.
func (t *DBTracer) NumRecords() (clockEvents, timesetEvents int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.clockEvents, t.timesetEvents
}

// Terminate writes the buffered events to the database.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
