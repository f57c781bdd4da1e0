package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reload status label values.
const (
	ReloadSuccess = "success"
	ReloadError   = "error"
)

// Metrics holds the finger server collectors.
//
// All methods are safe on a nil *Metrics, so callers can pass nil to
// disable metrics with no other changes.
type Metrics struct {
	connectionsTotal    *prometheus.CounterVec
	connectionsActive   prometheus.Gauge
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	bytesWritten        prometheus.Counter
	reloadsTotal        *prometheus.CounterVec
	directoryUsers      prometheus.Gauge
	directoryGeneration prometheus.Gauge
}

// NewMetrics registers the finger collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		connectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingered_connections_total",
				Help: "Total number of accepted connections by transport",
			},
			[]string{"transport"}, // "tcp", "unix", "stream"
		),
		connectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fingered_connections_active",
				Help: "Number of connections currently being handled",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingered_requests_total",
				Help: "Total number of finger requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fingered_request_duration_seconds",
				Help: "Time from accept to connection close",
				Buckets: []float64{
					0.0005, // 500us - local clients
					0.001,
					0.005,
					0.01,
					0.05,
					0.1,
					0.5,
					1,
					5, // slow or stalled clients
				},
			},
			[]string{"kind"},
		),
		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fingered_reply_bytes_total",
				Help: "Total number of reply bytes written to clients",
			},
		),
		reloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingered_reloads_total",
				Help: "Total number of users file reloads by status",
			},
			[]string{"status"},
		),
		directoryUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fingered_directory_users",
				Help: "Number of users in the active directory snapshot",
			},
		),
		directoryGeneration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fingered_directory_generation",
				Help: "Generation of the active directory snapshot",
			},
		),
	}
}

// ConnectionAccepted counts a new connection and bumps the active gauge.
func (m *Metrics) ConnectionAccepted(transport string) {
	if m == nil {
		return
	}
	m.connectionsTotal.WithLabelValues(transport).Inc()
	m.connectionsActive.Inc()
}

// ConnectionClosed lowers the active gauge.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

// RequestCompleted records one answered (or rejected) request.
// kind is empty when the request never parsed.
func (m *Metrics) RequestCompleted(kind, outcome string, duration time.Duration, bytesWritten int) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.requestsTotal.WithLabelValues(kind, outcome).Inc()
	m.requestDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if bytesWritten > 0 {
		m.bytesWritten.Add(float64(bytesWritten))
	}
}

// ReloadCompleted records a reload attempt.
func (m *Metrics) ReloadCompleted(err error) {
	if m == nil {
		return
	}
	status := ReloadSuccess
	if err != nil {
		status = ReloadError
	}
	m.reloadsTotal.WithLabelValues(status).Inc()
}

// SetDirectory publishes the size and generation of the active snapshot.
func (m *Metrics) SetDirectory(users int, generation uint64) {
	if m == nil {
		return
	}
	m.directoryUsers.Set(float64(users))
	m.directoryGeneration.Set(float64(generation))
}
