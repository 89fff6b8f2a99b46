package tracing

import (
	"context"
	"strings"

	"github.com/sarchlab/vtester/datarecording"
)

// ClockEventQuery is used to define the clock events to be queried. Empty
// fields are ignored.
type ClockEventQuery struct {
	Pin string
	Op  string

	// Select the events between StartCycle and EndCycle, both included.
	EnableCycleRange     bool
	StartCycle, EndCycle uint64

	Limit int
}

// TraceReader can parse a trace file written by a DBTracer.
type TraceReader struct {
	reader datarecording.DataReader
}

// NewTraceReader creates a TraceReader on top of a DataReader.
func NewTraceReader(reader datarecording.DataReader) *TraceReader {
	reader.MapTable(ClockEventTable, ClockEvent{})
	reader.MapTable(TimesetEventTable, TimesetEvent{})

	return &TraceReader{reader: reader}
}

// ListClockEvents returns the matching clock events in the order they were
// recorded.
func (r *TraceReader) ListClockEvents(
	ctx context.Context,
	query ClockEventQuery,
) ([]ClockEvent, error) {
	var (
		conds []string
		args  []any
	)

	if query.Pin != "" {
		conds = append(conds, `"Pin" = ?`)
		args = append(args, query.Pin)
	}

	if query.Op != "" {
		conds = append(conds, `"Op" = ?`)
		args = append(args, query.Op)
	}

	if query.EnableCycleRange {
		conds = append(conds, `"Cycle" >= ? AND "Cycle" <= ?`)
		args = append(args, query.StartCycle, query.EndCycle)
	}

	results, _, err := r.reader.Query(ctx, ClockEventTable,
		datarecording.QueryParams{
			Where:   strings.Join(conds, " AND "),
			Args:    args,
			OrderBy: "rowid",
			Limit:   query.Limit,
		})
	if err != nil {
		return nil, err
	}

	events := make([]ClockEvent, 0, len(results))
	for _, res := range results {
		events = append(events, *res.(*ClockEvent))
	}

	return events, nil
}

// ListTimesetEvents returns all the timeset events in the order they were
// recorded.
func (r *TraceReader) ListTimesetEvents(
	ctx context.Context,
) ([]TimesetEvent, error) {
	results, _, err := r.reader.Query(ctx, TimesetEventTable,
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	events := make([]TimesetEvent, 0, len(results))
	for _, res := range results {
		events = append(events, *res.(*TimesetEvent))
	}

	return events, nil
}

// Close closes the underlying reader.
func (r *TraceReader) Close() error {
	return r.reader.Close()
}
