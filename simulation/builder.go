package simulation

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/vtester/datarecording"
	"github.com/sarchlab/vtester/idgen"
	"github.com/sarchlab/vtester/logging"
	"github.com/sarchlab/vtester/monitoring"
	"github.com/sarchlab/vtester/tester"
	"github.com/sarchlab/vtester/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	testerName string

	traceOn       bool
	traceDB       string
	clickHouseDSN string
	xidIDs        bool

	logTracerOn bool
	verbose     bool

	monitorOn   bool
	monitorPort int
	openBrowser bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		testerName: tester.DefaultName,
	}
}

// WithTesterName sets the name of the tester.
func (b Builder) WithTesterName(name string) Builder {
	b.testerName = name
	return b
}

// WithTraceDB records clock and timeset events into <path>.sqlite3. An empty
// path gets a unique name.
func (b Builder) WithTraceDB(path string) Builder {
	b.traceOn = true
	b.traceDB = path

	return b
}

// WithClickHouseTrace records clock and timeset events into the ClickHouse
// database named by dsn.
func (b Builder) WithClickHouseTrace(dsn string) Builder {
	b.clickHouseDSN = dsn
	return b
}

// WithUniqueTraceIDs gives trace records globally unique IDs instead of
// sequential ones.
func (b Builder) WithUniqueTraceIDs() Builder {
	b.xidIDs = true
	return b
}

// WithLogTracer prints events to the log. Cycle advances are only printed
// if verbose is set.
func (b Builder) WithLogTracer(verbose bool) Builder {
	b.logTracerOn = true
	b.verbose = verbose

	return b
}

// WithMonitor starts the monitoring server.
func (b Builder) WithMonitor() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitor page in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if b.traceOn && b.clickHouseDSN != "" {
		panic("cannot trace into both SQLite and ClickHouse")
	}

	if b.xidIDs && !b.traceOn && b.clickHouseDSN == "" {
		panic("trace IDs cannot be set when the trace database is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	t, err := tester.MakeBuilder().WithName(b.testerName).Build()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     xid.New().String(),
		tester: t,
		counts: tracing.NewCountTracer(nil),
	}

	tracing.CollectTrace(t, s.counts)

	if b.traceOn {
		if err := b.buildDBTracer(s); err != nil {
			return nil, err
		}
	}

	if b.clickHouseDSN != "" {
		rec, err := datarecording.NewClickHouseRecorder(b.clickHouseDSN)
		if err != nil {
			return nil, err
		}

		b.attachDBTracer(s, rec)
	}

	if b.logTracerOn {
		tracing.CollectTrace(t,
			tracing.NewLogTracer(logging.New(""), b.verbose))
	}

	if b.monitorOn {
		if err := b.buildMonitor(s); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) buildDBTracer(s *Simulation) error {
	path := b.traceDB
	if path == "" {
		path = "vtester_trace_" + s.id
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("trace database %s already exists", filename)
	}

	s.traceFile = filename
	b.attachDBTracer(s, datarecording.New(path))

	return nil
}

func (b Builder) attachDBTracer(s *Simulation, rec datarecording.DataRecorder) {
	ids := idgen.NewSequential()
	if b.xidIDs {
		ids = idgen.NewXID()
	}

	s.dataRecorder = rec
	s.dbTracer = tracing.NewDBTracer(rec, ids)
	tracing.CollectTrace(s.tester, s.dbTracer)
}

func (b Builder) buildMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor().
		WithPortNumber(b.monitorPort).
		WithBrowser(b.openBrowser)
	s.monitor.Register(s.tester)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	return nil
}
