// Package observability holds cross-cutting prometheus instrumentation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mealPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "thriv",
		Subsystem: "persistence",
		Name:      "last_meal_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent meal persisted to Postgres.",
	})
	goalsComputedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "thriv",
		Subsystem: "domain",
		Name:      "goals_computed_total",
		Help:      "Number of daily-goal recomputations persisted.",
	})
	providerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thriv",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Outbound food-provider requests, labeled by provider and outcome.",
	}, []string{"provider", "outcome"})
	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "thriv",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound food-provider requests.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(mealPersistGauge, goalsComputedCounter, providerRequests, providerDuration)
}

// RecordMealPersisted updates the persistence watermark gauge.
func RecordMealPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	mealPersistGauge.Set(float64(ts.Unix()))
}

// RecordGoalsComputed counts a persisted goal recomputation.
func RecordGoalsComputed() {
	goalsComputedCounter.Inc()
}

// RecordProviderRequest counts an outbound provider call and its latency.
func RecordProviderRequest(provider string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerRequests.WithLabelValues(provider, outcome).Inc()
	providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
