// internal/games/metrics.go

package games

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invitationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_invitations_total",
			Help: "Game invitations sent by game type",
		},
		[]string{"game_type"},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_transitions_total",
			Help: "Session status transitions by game type and target status",
		},
		[]string{"game_type", "status"},
	)

	completionScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "games_completion_score",
			Help:    "Distribution of completed session scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"game_type"},
	)
)

// RecordTransition counts a status change
func RecordTransition(gameType GameType, to Status) {
	transitionsTotal.WithLabelValues(string(gameType), string(to)).Inc()
}
