// internal/games/spectrum/metrics.go

package spectrum

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spectrum_active_sessions",
		Help: "Intimacy Spectrum sessions with live coordinator state",
	})

	answersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spectrum_answers_total",
		Help: "Slider answers accepted",
	})

	revealsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spectrum_reveals_total",
			Help: "Round reveals by trigger",
		},
		[]string{"trigger"},
	)

	timeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spectrum_answer_timeouts_total",
		Help: "Player answers missing when a round was revealed",
	})

	finishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spectrum_sessions_finished_total",
			Help: "Sessions that left the live state, by outcome",
		},
		[]string{"outcome"},
	)

	insightsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spectrum_insights_total",
			Help: "Post-game insight generation attempts by outcome",
		},
		[]string{"outcome"},
	)
)
