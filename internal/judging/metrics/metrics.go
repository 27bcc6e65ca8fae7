package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the judging feature.
type Metrics struct {
	EvaluationsRecorded   prometheus.Counter
	WinnersAssigned       *prometheus.CounterVec
	WinnersCleared        *prometheus.CounterVec
	WinnerConflicts       prometheus.Counter
	LeaderboardBuildSecs  prometheus.Histogram
	LeaderboardCacheHits  prometheus.Counter
	LeaderboardCacheMiss  prometheus.Counter
}

// New creates and registers all judging metrics.
func New() *Metrics {
	return &Metrics{
		EvaluationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_evaluations_recorded_total",
			Help: "Total number of judge evaluations recorded",
		}),
		WinnersAssigned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tekfest_winners_assigned_total",
			Help: "Total number of winner assignments, by category",
		}, []string{"category"}),
		WinnersCleared: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tekfest_winners_cleared_total",
			Help: "Total number of winner removals, by category",
		}, []string{"category"}),
		WinnerConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_winner_assignment_conflicts_total",
			Help: "Winner assignments rejected because the live row changed concurrently",
		}),
		LeaderboardBuildSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tekfest_leaderboard_build_seconds",
			Help:    "Time spent recomputing a leaderboard from evaluations",
			Buckets: prometheus.DefBuckets,
		}),
		LeaderboardCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_leaderboard_cache_hits_total",
			Help: "Leaderboard reads served from the Redis snapshot",
		}),
		LeaderboardCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_leaderboard_cache_misses_total",
			Help: "Leaderboard reads that recomputed from stores",
		}),
	}
}
