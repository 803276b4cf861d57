package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded under the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeNetwork  = "network_error"
	OutcomeRejected = "rejected"
	OutcomeDecode   = "decode_error"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// FetchAttempts counts remote fetch attempts by endpoint name and outcome
	FetchAttempts *prometheus.CounterVec
	// FetchDuration tracks remote fetch latency by endpoint name
	FetchDuration *prometheus.HistogramVec
	// SegmentCollections counts segment collections by resulting status
	SegmentCollections *prometheus.CounterVec
	// CredentialLookups counts credential resolutions by winning source
	CredentialLookups *prometheus.CounterVec
	// TodaySpent is the last observed spend for today
	TodaySpent prometheus.Gauge
	// TotalBalance is the last observed total balance
	TotalBalance prometheus.Gauge
	// RequestLatency tracks HTTP request latency of the watch-mode server
	RequestLatency *prometheus.HistogramVec
	// HTTPRequestsTotal total HTTP requests served in watch mode
	HTTPRequestsTotal *prometheus.CounterVec
	registry          *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Total number of remote fetch attempts",
			},
			[]string{"endpoint", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Remote fetch latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"endpoint"},
		),
		SegmentCollections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segment_collections_total",
				Help:      "Total number of quota segment collections",
			},
			[]string{"status"},
		),
		CredentialLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credential_lookups_total",
				Help:      "Total number of credential resolutions",
			},
			[]string{"source"},
		),
		TodaySpent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "today_spent_dollars",
				Help:      "Amount spent today as last reported by the usage endpoint",
			},
		),
		TotalBalance: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "total_balance_dollars",
				Help:      "Total balance as last reported by the balance endpoint",
			},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_latency_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint", "method", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"endpoint", "method", "status"},
		),
	}

	registry.MustRegister(
		m.FetchAttempts,
		m.FetchDuration,
		m.SegmentCollections,
		m.CredentialLookups,
		m.TodaySpent,
		m.TotalBalance,
		m.RequestLatency,
		m.HTTPRequestsTotal,
	)

	return m
}

// Handler returns a Prometheus handler for these metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFetch records one remote fetch attempt
func (m *Metrics) RecordFetch(endpoint, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(endpoint, outcome).Inc()
	m.FetchDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordSegment records one segment collection outcome
func (m *Metrics) RecordSegment(status string) {
	if m == nil {
		return
	}
	m.SegmentCollections.WithLabelValues(status).Inc()
}

// RecordCredentialLookup records which source produced the credential
func (m *Metrics) RecordCredentialLookup(source string) {
	if m == nil {
		return
	}
	m.CredentialLookups.WithLabelValues(source).Inc()
}

// SetTodaySpent sets the last observed daily spend
func (m *Metrics) SetTodaySpent(v float64) {
	if m == nil {
		return
	}
	m.TodaySpent.Set(v)
}

// SetTotalBalance sets the last observed total balance
func (m *Metrics) SetTotalBalance(v float64) {
	if m == nil {
		return
	}
	m.TotalBalance.Set(v)
}

// RecordRequestLatency records the latency of an HTTP request
func (m *Metrics) RecordRequestLatency(endpoint, method, status string, durationSeconds float64) {
	m.RequestLatency.WithLabelValues(endpoint, method, status).Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint, method, status string) {
	m.HTTPRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}
