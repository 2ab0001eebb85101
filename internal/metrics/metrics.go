// Package metrics holds the Prometheus collectors of the analytics service.
// Collectors register on the default registry and are served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bucket outcomes
const (
	OutcomeUpserted = "upserted"
	OutcomeFailed   = "failed"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// refreshBuckets counts processed refresh buckets by granularity and outcome
	refreshBuckets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypulse_refresh_buckets_total",
		Help: "Refresh buckets processed by granularity and outcome",
	}, []string{"granularity", "outcome"})

	// refreshDuration tracks the wall time of one (questionnaire, granularity) refresh
	refreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "surveypulse_refresh_duration_seconds",
		Help:    "Refresh duration per granularity in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"granularity"})

	// rollupUpserts counts rollup writes by kind and whether the row was created
	rollupUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypulse_rollup_upserts_total",
		Help: "Rollup rows written by kind and result",
	}, []string{"kind", "result"})

	// cacheLookups counts cache reads by backend and result
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surveypulse_cache_lookups_total",
		Help: "Cache lookups by backend and result",
	}, []string{"backend", "result"})

	// refreshesCollapsed counts refresh calls served by an in-flight refresh of the same key
	refreshesCollapsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surveypulse_refreshes_collapsed_total",
		Help: "Refresh calls that joined an in-flight refresh of the same questionnaire and granularity",
	})
)

// ObserveBucket records one processed bucket
func ObserveBucket(granularity, outcome string) {
	refreshBuckets.WithLabelValues(granularity, outcome).Inc()
}

// ObserveRefresh records the duration of a refresh in seconds
func ObserveRefresh(granularity string, seconds float64) {
	refreshDuration.WithLabelValues(granularity).Observe(seconds)
}

// ObserveUpsert records one rollup write
func ObserveUpsert(kind string, created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	rollupUpserts.WithLabelValues(kind, result).Inc()
}

// ObserveCacheLookup records one cache read
func ObserveCacheLookup(backend, result string) {
	cacheLookups.WithLabelValues(backend, result).Inc()
}

// ObserveCollapsedRefresh records a refresh that shared another caller's result
func ObserveCollapsedRefresh() {
	refreshesCollapsed.Inc()
}
