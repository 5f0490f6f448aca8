// internal/readiness/metrics.go

package readiness

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_decisions_total",
			Help: "Readiness decisions computed, by class",
		},
		[]string{"decision"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_cache_lookups_total",
			Help: "Decision lookups by where they were served from",
		},
		[]string{"source"},
	)

	evaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "readiness_evaluation_duration_seconds",
			Help:    "Time to gather inputs, score and plan",
			Buckets: prometheus.DefBuckets,
		},
	)
)
