package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationCallsTotal tracks logical generation calls per tier and outcome
	GenerationCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_generation_calls_total",
			Help: "Total number of logical generation calls",
		},
		[]string{"tier", "outcome"},
	)

	// GenerationLatency tracks end-to-end generation call latency
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scribe_generation_latency_seconds",
			Help:    "Generation call latency in seconds, including retries and backoff",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tier"},
	)

	// KeyRotationsTotal tracks credential rotations triggered by failures
	KeyRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scribe_key_rotations_total",
			Help: "Total number of credential rotations",
		},
	)

	// RetriesTotal tracks inner-loop retries per failure class
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_retries_total",
			Help: "Total number of per-credential retries",
		},
		[]string{"class"},
	)

	// ModelFallbacksTotal tracks flash-tier fallback activations
	ModelFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scribe_model_fallbacks_total",
			Help: "Total number of fallback-model retries after quota exhaustion",
		},
	)

	// PublishesTotal tracks submissions to the research repository
	PublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_publishes_total",
			Help: "Total number of publish attempts",
		},
		[]string{"outcome"},
	)

	// CompilesTotal tracks LaTeX compile proxy calls
	CompilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_compiles_total",
			Help: "Total number of compile proxy calls",
		},
		[]string{"outcome"},
	)
)
