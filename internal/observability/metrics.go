package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "surge_forcing"

// Blend run outcomes used as the outcome label.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for blend runs.
type Metrics struct {
	BlendRuns           *prometheus.CounterVec // labels: outcome={success,invalid,error}
	BlendDuration       prometheus.Histogram
	ObservationsDropped prometheus.Counter
	OutputTimesteps     prometheus.Histogram
	DatasetsLoaded      prometheus.Counter

	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route
	RateLimited         prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		BlendRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blend_runs_total",
			Help:      "Blend runs by outcome.",
		}, []string{"outcome"}),
		BlendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "blend_duration_seconds",
			Help:      "Duration of a complete load, blend and write cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ObservationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_dropped_total",
			Help:      "Wind observations dropped as malformed or out of range.",
		}),
		OutputTimesteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "output_timesteps",
			Help:      "Number of timesteps in blended outputs.",
			Buckets:   prometheus.ExponentialBuckets(3, 2, 10),
		}),
		DatasetsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_loaded_total",
			Help:      "Gridded datasets loaded by use cases.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Blend requests rejected by the rate limiter.",
		}),
	}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.BlendRuns,
		m.BlendDuration,
		m.ObservationsDropped,
		m.OutputTimesteps,
		m.DatasetsLoaded,
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.RateLimited,
	)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
