package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for identity resolution.
type Metrics struct {
	Resolutions *prometheus.CounterVec
	CacheHits   prometheus.Counter
}

// New creates and registers all identity metrics.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tekfest_email_resolutions_total",
			Help: "Email resolution attempts, by outcome",
		}, []string{"outcome"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_profile_cache_hits_total",
			Help: "Profile snapshots served from the Redis cache",
		}),
	}
}
