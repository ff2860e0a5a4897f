package metrics

import (
	"sync"

	"github.com/go-authgate/devicelink/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics interface consumed by services.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

const namespace = "devicelink"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Link code metrics
	LinkCodesIssuedTotal *prometheus.CounterVec
	LinkCodeAttempts     prometheus.Histogram
	LinkAttemptsTotal    *prometheus.CounterVec

	// Provider metrics
	TokenRefreshTotal    *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec

	// Storage maintenance
	ExpiredObjectsPurgedTotal prometheus.Counter

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LinkCodesIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "link_codes_issued_total",
				Help:      "Total number of link code issuance requests",
			},
			[]string{"result"}, // success, error
		),
		LinkCodeAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "link_code_attempts",
				Help:      "Candidate codes tried per issuance",
				Buckets:   []float64{1, 2, 3, 5, 8, 10},
			},
		),
		LinkAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "link_attempts_total",
				Help:      "Total number of device link attempts",
			},
			[]string{"result"}, // success, invalid_argument, not_found, unauthenticated, internal
		),
		TokenRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_refresh_total",
				Help:      "Total number of provider token freshness checks",
			},
			[]string{"result"}, // absent, fresh, refreshed, error
		),
		ProviderCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Duration of identity provider calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "result"},
		),
		ExpiredObjectsPurgedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expired_objects_purged_total",
				Help:      "Total number of expired storage objects removed",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
	}
}
