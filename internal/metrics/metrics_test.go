package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordEvaluation(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(MatchesEvaluatedTotal)

	assert.NotPanics(t, func() {
		RecordEvaluation(0.25, 3, 12)
	})
	assert.Equal(t, before+3, testutil.ToFloat64(MatchesEvaluatedTotal))
}

func TestRecordDropped(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		reason string
		count  int
		want   float64
	}{
		{name: "counts rows", reason: "invalid_price", count: 2, want: 2},
		{name: "ignores zero", reason: "missing_team", count: 0, want: 0},
		{name: "ignores negative", reason: "missing_odds", count: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RowsDroppedTotal.WithLabelValues(tt.reason))
			RecordDropped(tt.reason, tt.count)
			assert.Equal(t, before+tt.want, testutil.ToFloat64(RowsDroppedTotal.WithLabelValues(tt.reason)))
		})
	}
}

func TestRecordDecisionAndBets(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordDecision("BET", "draw")
		RecordDecision("SKIP", "")
		RecordValueBet(0.05, 0.02)
		UpdateBankroll(1000)
		UpdateLastValueBets(1)
	})
	assert.Equal(t, 1000.0, testutil.ToFloat64(Bankroll))
	assert.Equal(t, 1.0, testutil.ToFloat64(LastValueBets))
}

func TestDatasourceMetrics(t *testing.T) {
	InitRegistry()
	beforeHits := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit"))

	assert.NotPanics(t, func() {
		RecordOddsFetch("the_odds_api", "success", 0.4)
		RecordCacheHit()
		RecordCacheMiss()
		RecordCircuitBreakerTrip()
		UpdateRequestsRemaining(480)
	})
	assert.Equal(t, beforeHits+1, testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 480.0, testutil.ToFloat64(OddsAPIRequestsRemaining))
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordScheduledScan("success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "value_better_scheduled_scans_total"))
}
