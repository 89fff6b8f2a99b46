// Package monitoring serves the state of a running tester over HTTP.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/vtester/clock"
	"github.com/sarchlab/vtester/hooking"
	"github.com/sarchlab/vtester/monitoring/web"
	"github.com/sarchlab/vtester/tester"
)

// PinStatus is the state of a pin at the last tester event.
type PinStatus struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	IsClock    bool   `json:"is_clock"`
	Running    bool   `json:"running"`
	Config     string `json:"config,omitempty"`
	HalfPeriod uint64 `json:"half_period"`
	Stale      bool   `json:"stale"`
}

// TesterStatus is the state of the tester at the last tester event.
type TesterStatus struct {
	Name          string  `json:"name"`
	Timeset       string  `json:"timeset,omitempty"`
	TimesetPeriod float64 `json:"timeset_period,omitempty"`
	Cycle         uint64  `json:"cycle"`
	NumPins       int     `json:"num_pins"`
	EnabledClocks int     `json:"enabled_clocks"`
	RunningClocks int     `json:"running_clocks"`
}

// Monitor turns a tester into a server that can be inspected while a
// scenario runs. The monitor keeps a snapshot of the tester that is
// refreshed by hooks, so the HTTP handlers never touch the tester itself.
type Monitor struct {
	mu       sync.Mutex
	tester   *tester.Tester
	status   TesterStatus
	pins     []PinStatus
	pinIndex map[string]int

	metrics *Metrics

	portNumber      int
	openBrowser     bool
	profileDuration time.Duration
	server          *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		pinIndex:        make(map[string]int),
		metrics:         NewMetrics(),
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		log.Printf("Port number %d is assigned to the monitoring server, "+
			"which is not allowed. Using a random port instead.", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in a browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// Metrics returns the Prometheus metrics maintained by the monitor.
func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Register takes a snapshot of the tester and hooks to the tester and all
// its pins. A monitor can only watch one tester.
func (m *Monitor) Register(t *tester.Tester) {
	m.mu.Lock()
	if m.tester != nil {
		m.mu.Unlock()
		panic("monitor already has a tester")
	}

	m.tester = t
	m.mu.Unlock()

	m.refresh()

	t.AcceptHook(m)
	t.AcceptPinHook(m)
}

// Func refreshes the snapshot after the tester or a clock changed.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	if ctx.Pos == clock.HookPosClockTransition {
		tr := ctx.Detail.(clock.Transition)
		m.metrics.observeTransition(string(tr.Op))
	}

	m.refresh()
}

func (m *Monitor) refresh() {
	t := m.tester

	status := TesterStatus{
		Name:  t.Name(),
		Cycle: t.CurrentCycle(),
	}

	if ts, ok := t.ActiveTimeset(); ok {
		status.Timeset = ts.Name
		status.TimesetPeriod = float64(ts.Period)
	}

	pins := t.Pins()
	statuses := make([]PinStatus, 0, len(pins))
	index := make(map[string]int, len(pins))

	for i, p := range pins {
		ps := PinStatus{
			Name:    p.Name(),
			State:   p.State().String(),
			IsClock: p.IsAClock(),
			Running: p.IsARunningClock(),
			Stale:   p.IsStale(),
		}

		if cfg, ok := p.Config(); ok {
			ps.Config = cfg.String()
		}

		ps.HalfPeriod, _ = p.HalfPeriod()

		if ps.IsClock {
			status.EnabledClocks++
		}

		if ps.Running {
			status.RunningClocks++
		}

		statuses = append(statuses, ps)
		index[ps.Name] = i
	}

	status.NumPins = len(statuses)

	m.mu.Lock()
	m.status = status
	m.pins = statuses
	m.pinIndex = index
	m.mu.Unlock()

	m.metrics.setClocks(status.EnabledClocks, status.RunningClocks)
	m.metrics.setCycle(status.Cycle)
}

// Status returns the latest tester snapshot.
func (m *Monitor) Status() TesterStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.status
}

// PinStatuses returns the latest pin snapshots in the order the pins were
// added.
func (m *Monitor) PinStatuses() []PinStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	pins := make([]PinStatus, len(m.pins))
	copy(pins, m.pins)

	return pins
}

// PinStatus returns the latest snapshot of a pin.
func (m *Monitor) PinStatus(name string) (PinStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.pinIndex[name]
	if !ok {
		return PinStatus{}, false
	}

	return m.pins[i], true
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/tester", m.testerStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/pins", m.listPins).Methods(http.MethodGet)
	r.HandleFunc("/api/pin/{name}", m.pinDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/running", m.listRunning).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.Handle("/metrics", m.metrics.Handler())
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// listenAddress returns the address to bind. Ports below 1000 are replaced
// by a random port.
func (m *Monitor) listenAddress() string {
	if m.portNumber < 1000 {
		return ":0"
	}

	return ":" + strconv.Itoa(m.portNumber)
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.listenAddress())
	if err != nil {
		return "", fmt.Errorf("cannot start monitor: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("monitor server stopped: %v", err)
		}
	}()

	log.Printf("Monitoring tester with %s", url)

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url, nil
}

// StopServer shuts the web server down if it is running.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}
