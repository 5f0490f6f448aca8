// internal/compatibility/metrics.go

package compatibility

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compatibility_rebuilds_total",
			Help: "Aggregate rebuilds by reason",
		},
		[]string{"reason"},
	)

	rebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compatibility_rebuild_duration_seconds",
			Help:    "Time to rebuild a couple aggregate, narrative included",
			Buckets: prometheus.DefBuckets,
		},
	)

	narrativesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compatibility_narratives_total",
			Help: "Narrative generation outcomes",
		},
		[]string{"outcome"},
	)
)
