// Package simulation wires a tester together with the services that observe
// it: the trace database, the log tracer and the monitoring server.
package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/sarchlab/vtester/datarecording"
	"github.com/sarchlab/vtester/monitoring"
	"github.com/sarchlab/vtester/scenario"
	"github.com/sarchlab/vtester/tester"
	"github.com/sarchlab/vtester/tracing"
)

// A Simulation owns a tester and the services attached to it.
type Simulation struct {
	id     string
	tester *tester.Tester

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	traceFile    string
	counts       *tracing.CountTracer

	monitor    *monitoring.Monitor
	monitorURL string

	closed bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Tester returns the tester of the simulation.
func (s *Simulation) Tester() *tester.Tester {
	return s.tester
}

// DataRecorder returns the recorder of the trace database, or nil if the
// database trace is off.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// DBTracer returns the database tracer, or nil if the database trace is off.
func (s *Simulation) DBTracer() *tracing.DBTracer {
	return s.dbTracer
}

// TraceFile returns the trace database file, or an empty string if the
// database trace is off.
func (s *Simulation) TraceFile() string {
	return s.traceFile
}

// Counts returns the tracer that counts the clock operations.
func (s *Simulation) Counts() *tracing.CountTracer {
	return s.counts
}

// Monitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run runs a scenario on the tester of the simulation.
func (s *Simulation) Run(
	sc *scenario.Scenario,
	opts scenario.Options,
) (scenario.RunReport, error) {
	return sc.Run(s.tester, opts)
}

// Close stops the monitor and writes the remaining trace records.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	var errs []error

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		errs = append(errs, s.monitor.StopServer(ctx))
	}

	if s.dbTracer != nil {
		s.dbTracer.Terminate()
		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}
