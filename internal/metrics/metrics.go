package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/sms-engine/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	DispatchedItems  *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	GatewayErrors    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	mu    sync.Mutex
	tally map[domain.Mode]map[string]int
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sms_dispatch_total",
			Help: "Dispatch calls by mode and overall status.",
		}, []string{"mode", "status"}),

		DispatchedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sms_dispatch_items_total",
			Help: "Per-recipient outcomes by mode and item status.",
		}, []string{"mode", "status"}),

		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sms_dispatch_duration_seconds",
			Help:    "Time from validated request to reconciled result, gateway call included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),

		GatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sms_gateway_errors_total",
			Help: "Gateway calls that produced no usable answer, by reason.",
		}, []string{"mode", "reason"}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "path", "status_code"}),

		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		tally: make(map[domain.Mode]map[string]int),
	}

	reg.MustRegister(
		m.Dispatches,
		m.DispatchedItems,
		m.DispatchDuration,
		m.GatewayErrors,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// DispatchHooks returns the metric callback functions expected by service.MetricHooks.
// Centralises the prometheus observation calls so the service stays import-free.
func (m *Metrics) DispatchHooks() (
	onDispatched func(domain.Mode, string, []domain.ItemResult, time.Duration),
	onGatewayError func(domain.Mode, string),
) {
	onDispatched = func(mode domain.Mode, status string, items []domain.ItemResult, elapsed time.Duration) {
		m.Dispatches.WithLabelValues(string(mode), status).Inc()
		m.DispatchDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
		for _, it := range items {
			m.DispatchedItems.WithLabelValues(string(mode), it.Status).Inc()
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		byStatus, ok := m.tally[mode]
		if !ok {
			byStatus = make(map[string]int)
			m.tally[mode] = byStatus
		}
		byStatus[status]++
	}
	onGatewayError = func(mode domain.Mode, reason string) {
		m.GatewayErrors.WithLabelValues(string(mode), reason).Inc()
	}
	return
}

// Snapshot returns dispatch counts by mode and overall status since startup.
func (m *Metrics) Snapshot() map[string]map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string]int, len(m.tally))
	for mode, byStatus := range m.tally {
		cp := make(map[string]int, len(byStatus))
		for k, v := range byStatus {
			cp[k] = v
		}
		out[string(mode)] = cp
	}
	return out
}
