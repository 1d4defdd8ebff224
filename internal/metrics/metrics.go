// Package metrics provides the centralized Prometheus registry for the value engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "value_better"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Total number of engine evaluation passes",
	})
	MatchesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_evaluated_total",
		Help:      "Total number of match payloads evaluated",
	})
	RowsScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_scored_total",
		Help:      "Total number of outcome rows scored",
	})
	RowsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_dropped_total",
		Help:      "Total number of outcome rows dropped by reason",
	}, []string{"reason"})
	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of bet selector decisions by decision and outcome",
	}, []string{"decision", "outcome"})
	ScheduledScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_scans_total",
		Help:      "Total number of scheduled scans by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	Bankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bankroll",
		Help:      "Bankroll used for stake sizing in currency units",
	})
	LastValueBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_value_bets",
		Help:      "Number of bet recommendations in the most recent evaluation",
	})
)

// Histogram metrics
var (
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of engine evaluation passes in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SuggestedEdge = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "suggested_edge",
		Help:      "Edge of recommended bets",
		Buckets:   []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
	})
	SuggestedStakeFraction = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "suggested_stake_fraction",
		Help:      "Recommended stake as a fraction of bankroll",
		Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(MatchesEvaluatedTotal)
		registry.MustRegister(RowsScoredTotal)
		registry.MustRegister(RowsDroppedTotal)
		registry.MustRegister(DecisionsTotal)
		registry.MustRegister(ScheduledScansTotal)

		registry.MustRegister(Bankroll)
		registry.MustRegister(LastValueBets)

		registry.MustRegister(EvaluationDuration)
		registry.MustRegister(SuggestedEdge)
		registry.MustRegister(SuggestedStakeFraction)

		// Datasource metrics
		registry.MustRegister(OddsFetchesTotal)
		registry.MustRegister(OddsFetchDuration)
		registry.MustRegister(OddsAPIRequestsRemaining)
		registry.MustRegister(CacheRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluation records an evaluation pass over a batch of matches.
func RecordEvaluation(durationSeconds float64, matches, rows int) {
	EvaluationsTotal.Inc()
	EvaluationDuration.Observe(durationSeconds)
	MatchesEvaluatedTotal.Add(float64(matches))
	RowsScoredTotal.Add(float64(rows))
}

// RecordDropped records rows dropped for a reason.
func RecordDropped(reason string, count int) {
	if count <= 0 {
		return
	}
	RowsDroppedTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordDecision records a bet selector decision.
func RecordDecision(decision, outcome string) {
	DecisionsTotal.WithLabelValues(decision, outcome).Inc()
}

// RecordValueBet records the edge and bankroll fraction of a recommended bet.
func RecordValueBet(edge, stakeFraction float64) {
	SuggestedEdge.Observe(edge)
	SuggestedStakeFraction.Observe(stakeFraction)
}

// RecordScheduledScan records a scheduled scan result.
func RecordScheduledScan(status string) {
	ScheduledScansTotal.WithLabelValues(status).Inc()
}

// UpdateBankroll updates the bankroll gauge.
func UpdateBankroll(amount float64) {
	Bankroll.Set(amount)
}

// UpdateLastValueBets updates the recommendation count gauge.
func UpdateLastValueBets(count int) {
	LastValueBets.Set(float64(count))
}
