// Package metrics provides Prometheus instrumentation for leakgate components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for leakgate components.
type Registry struct {
	// Admission metrics
	AdmitRequests   *prometheus.CounterVec
	AdmitAllowed    *prometheus.CounterVec
	AdmitDenied     *prometheus.CounterVec
	BucketRemaining *prometheus.GaugeVec
	PeekRequests    *prometheus.CounterVec
	InvalidCost     *prometheus.CounterVec

	// Store metrics
	StoreErrors  *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by leakgate components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		AdmitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leakgate",
				Subsystem: "limiter",
				Name:      "admit_requests_total",
				Help:      "Total number of admission requests",
			},
			[]string{"limiter_name"},
		),

		AdmitAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leakgate",
				Subsystem: "limiter",
				Name:      "admit_allowed_total",
				Help:      "Total number of admitted requests",
			},
			[]string{"limiter_name"},
		),

		AdmitDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leakgate",
				Subsystem: "limiter",
				Name:      "admit_denied_total",
				Help:      "Total number of denied requests",
			},
			[]string{"limiter_name"},
		),

		BucketRemaining: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "leakgate",
				Subsystem: "limiter",
				Name:      "bucket_remaining",
				Help:      "Remaining bucket capacity observed on the last decision",
			},
			[]string{"limiter_name", "bucket_key"},
		),

		PeekRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leakgate",
				Subsystem: "limiter",
				Name:      "peek_requests_total",
				Help:      "Total number of non-mutating capacity probes",
			},
			[]string{"limiter_name"},
		),

		InvalidCost: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leakgate",
				Subsystem: "limiter",
				Name:      "invalid_cost_total",
				Help:      "Total number of requests rejected before any store access",
			},
			[]string{"limiter_name"},
		),

		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "leakgate",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Total number of failed store transactions",
			},
			[]string{"limiter_name"},
		),

		StoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "leakgate",
				Subsystem: "store",
				Name:      "transaction_duration_seconds",
				Help:      "Latency of atomic store transactions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"limiter_name"},
		),
	}
}

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, uses prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Registry: prometheus.DefaultRegisterer,
	}
}
