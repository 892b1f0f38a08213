// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueDepth tracks how many users are waiting per game mode.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "champlink",
		Subsystem: "matchmaking",
		Name:      "queue_depth",
		Help:      "Number of users currently waiting in the matchmaking queue.",
	}, []string{"game_mode"})

	// MatchesCreated counts matches produced by the queue.
	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "champlink",
		Subsystem: "matchmaking",
		Name:      "matches_created_total",
		Help:      "Total matches created by the matchmaking queue.",
	}, []string{"game_mode"})

	// MatchesFinished counts completed match reports.
	MatchesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "champlink",
		Subsystem: "matchmaking",
		Name:      "matches_finished_total",
		Help:      "Total matches reported as finished.",
	})

	// SimulationSessions counts simulated matchmaking sessions opened.
	SimulationSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "champlink",
		Subsystem: "simulation",
		Name:      "sessions_total",
		Help:      "Total simulated matchmaking sessions opened.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
