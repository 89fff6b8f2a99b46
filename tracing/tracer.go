// Package tracing records what happens to a tester and its pin clocks.
//
// A Tracer is attached with CollectTrace. The tracer then receives one event
// per successful clock operation, timeset change and cycle advance.
package tracing

// ClockEvent records a successful clock operation.
type ClockEvent struct {
	ID     string
	Tester string
	Pin    string
	Clock  string
	Cycle  uint64

	Op   string
	From string
	To   string

	HalfPeriod uint64

	// Timeset and TimesetPeriod are only set by enable_clock and
	// update_clock, the operations that compute the half-period.
	Timeset       string
	TimesetPeriod float64
}

// TimesetEvent records a replacement of the active timeset.
type TimesetEvent struct {
	ID     string
	Tester string
	Cycle  uint64

	Previous       string
	PreviousPeriod float64
	Current        string
	CurrentPeriod  float64
}

// CycleEvent records the tester advancing by Count cycles, ending at Cycle.
type CycleEvent struct {
	Tester string
	From   uint64
	Count  uint64
	Cycle  uint64
}

// A Tracer can collect tester traces.
type Tracer interface {
	ClockTransition(event ClockEvent)
	TimesetChange(event TimesetEvent)
	Cycle(event CycleEvent)
}
