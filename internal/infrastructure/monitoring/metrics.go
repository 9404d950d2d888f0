package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Panel metrics
	PanelsActive   prometheus.Gauge
	PanelCreations *prometheus.CounterVec // labels: kind, outcome (real|fallback)
	PanelFallbacks *prometheus.CounterVec // labels: kind, cause

	// Circuit breaker metrics
	BreakerState *prometheus.GaugeVec // 0=closed 1=half-open 2=open
	BreakerTrips *prometheus.CounterVec

	// Bootstrap saga metrics
	SagaRuns          *prometheus.CounterVec // labels: status
	SagaStepDuration  *prometheus.HistogramVec
	SagaCompensations prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry

	// Snapshot counters for the JSON stats endpoint
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
}

// Snapshot holds current metric values for the JSON stats endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector on the default Prometheus registry
func NewMetrics() *Metrics {
	return newMetrics(nil)
}

// NewMetricsWithRegistry creates a metrics collector on a dedicated registry,
// useful for tests that build more than one collector
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(prometheus.DefaultRegisterer)
	if reg != nil {
		factory = promauto.With(reg)
	}

	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		PanelsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_panels_active",
				Help: "Number of live panels",
			},
		),
		PanelCreations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_panel_creations_total",
				Help: "Total panel creations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		PanelFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_panel_fallbacks_total",
				Help: "Fallback placeholders served by kind and cause",
			},
			[]string{"kind", "cause"},
		),

		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backend_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"kind"},
		),
		BreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_breaker_trips_total",
				Help: "Total circuit breaker open transitions",
			},
			[]string{"kind"},
		),

		SagaRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_saga_runs_total",
				Help: "Bootstrap saga runs by terminal status",
			},
			[]string{"status"},
		),
		SagaStepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_saga_step_duration_seconds",
				Help:    "Bootstrap step duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"step"},
		),
		SagaCompensations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_saga_compensations_total",
				Help: "Total compensated bootstrap steps",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	return m
}

// Registry returns the dedicated registry, or nil when the default is in use
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest tracks a request for the JSON stats endpoint
func (m *Metrics) RecordRequest(isError bool) {
	m.totalRequests.Add(1)
	if isError {
		m.totalErrors.Add(1)
	}
}

// Snapshot returns current values for the JSON stats endpoint
func (m *Metrics) Snapshot() Snapshot {
	uptime := time.Since(m.startTime).Seconds()
	m.Uptime.Set(uptime)

	return Snapshot{
		TotalRequests: m.totalRequests.Load(),
		TotalErrors:   m.totalErrors.Load(),
		UptimeSeconds: uptime,
	}
}
