package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the tester state as Prometheus metrics. Every Metrics owns
// its registry so that several testers can be monitored in one process.
type Metrics struct {
	registry *prometheus.Registry

	transitions *prometheus.CounterVec

	runningClocks prometheus.Gauge
	enabledClocks prometheus.Gauge
	cycle         prometheus.Gauge
}

// NewMetrics creates and registers the metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtester_clock_transitions_total",
				Help: "Total number of successful clock operations",
			},
			[]string{"op"},
		),

		runningClocks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vtester_running_clocks",
				Help: "Number of pin clocks that are running",
			},
		),

		enabledClocks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vtester_enabled_clocks",
				Help: "Number of pins that are clocks",
			},
		),

		cycle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vtester_cycle",
				Help: "Current tester cycle",
			},
		),
	}

	m.registry.MustRegister(
		m.transitions,
		m.runningClocks,
		m.enabledClocks,
		m.cycle,
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeTransition(op string) {
	m.transitions.WithLabelValues(op).Inc()
}

func (m *Metrics) setClocks(enabled, running int) {
	m.enabledClocks.Set(float64(enabled))
	m.runningClocks.Set(float64(running))
}

func (m *Metrics) setCycle(cycle uint64) {
	m.cycle.Set(float64(cycle))
}
