// Package metrics holds the process-wide Prometheus collectors. They are
// registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_game_outcomes_total",
			Help: "Finished games by title and terminal state",
		},
		[]string{"game", "outcome"},
	)
	Ticks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_snake_ticks_total",
			Help: "Snake ticks by result kind",
		},
		[]string{"kind"},
	)
	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_actions_total",
			Help: "Player input events accepted by the host",
		},
		[]string{"game", "action"},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arcade_sessions_active",
			Help: "Live game sessions held by the host",
		},
	)
	ScoreErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_score_errors_total",
			Help: "Score recorder calls that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(Outcomes)
	prometheus.MustRegister(Ticks)
	prometheus.MustRegister(Actions)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(ScoreErrors)
}
