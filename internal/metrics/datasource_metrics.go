package metrics

import "github.com/prometheus/client_golang/prometheus"

// Odds source counter vectors
var (
	OddsFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_fetches_total",
		Help:      "Total number of odds fetches by source and status",
	}, []string{"source", "status"})

	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of odds cache lookups by result",
	}, []string{"result"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of odds source circuit breaker trips",
	})
)

var (
	OddsFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "odds_fetch_duration_seconds",
		Help:      "Duration of odds fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	OddsAPIRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "odds_api_requests_remaining",
		Help:      "Request quota remaining as reported by the odds provider",
	})
)

// RecordOddsFetch records an odds fetch and its duration.
func RecordOddsFetch(source, status string, durationSeconds float64) {
	OddsFetchesTotal.WithLabelValues(source, status).Inc()
	OddsFetchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordCacheHit records an odds cache hit.
func RecordCacheHit() {
	CacheRequestsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records an odds cache miss.
func RecordCacheMiss() {
	CacheRequestsTotal.WithLabelValues("miss").Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateRequestsRemaining updates the provider quota gauge.
func UpdateRequestsRemaining(remaining float64) {
	OddsAPIRequestsRemaining.Set(remaining)
}
