package tracing

import (
	"log"
)

// LogTracer prints events as log lines.
type LogTracer struct {
	logger  *log.Logger
	verbose bool
}

// NewLogTracer creates a LogTracer that writes to logger. Cycle advances are
// only printed if verbose is set.
func NewLogTracer(logger *log.Logger, verbose bool) *LogTracer {
	return &LogTracer{
		logger:  logger,
		verbose: verbose,
	}
}

// ClockTransition prints a clock event.
func (t *LogTracer) ClockTransition(e ClockEvent) {
	if e.Timeset != "" {
		t.logger.Printf("[%s] cycle %d: %s %s %s -> %s, half-period %d (%s, %gns)",
			e.Tester, e.Cycle, e.Op, e.Pin, e.From, e.To,
			e.HalfPeriod, e.Timeset, e.TimesetPeriod)

		return
	}

	t.logger.Printf("[%s] cycle %d: %s %s %s -> %s",
		e.Tester, e.Cycle, e.Op, e.Pin, e.From, e.To)
}

// TimesetChange prints a timeset event.
func (t *LogTracer) TimesetChange(e TimesetEvent) {
	t.logger.Printf("[%s] cycle %d: timeset %s(%gns)",
		e.Tester, e.Cycle, e.Current, e.CurrentPeriod)
}

// Cycle prints a cycle event in verbose mode.
func (t *LogTracer) Cycle(e CycleEvent) {
	if !t.verbose {
		return
	}

	t.logger.Printf("[%s] cycle %d -> %d", e.Tester, e.From, e.Cycle)
}
