package strategy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/normalizer"
	"github.com/yourusername/value-better/internal/probability"
)

type fixedEstimator struct {
	dist models.Distribution
}

func (f fixedEstimator) Strategy() probability.Strategy { return probability.StrategyFrequency }

func (f fixedEstimator) Estimate(models.MatchRecord) (models.Distribution, error) {
	return f.dist, nil
}

type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) Strategy() probability.Strategy { return probability.StrategyClassifier }

func (m *mockEstimator) Estimate(record models.MatchRecord) (models.Distribution, error) {
	args := m.Called(record.HomeTeam)
	return args.Get(0).(models.Distribution), args.Error(1)
}

func price(v float64) *float64 { return &v }

func payload(id, home, away string, odds ...*float64) models.MatchPayload {
	return models.MatchPayload{
		ID:           id,
		SportKey:     "soccer_epl",
		SportTitle:   "EPL",
		CommenceTime: time.Date(2026, 10, 24, 15, 0, 0, 0, time.UTC),
		HomeTeam:     home,
		AwayTeam:     away,
		Bookmakers: []models.BookmakerPayload{{
			Key:   "pinnacle",
			Title: "Pinnacle",
			Markets: []models.MarketPayload{{
				Key: "h2h",
				Outcomes: []models.OutcomePayload{
					{Name: home, Price: odds[0]},
					{Name: "Draw", Price: odds[1]},
					{Name: away, Price: odds[2]},
				},
			}},
		}},
	}
}

func scenarioDistribution() models.Distribution {
	return models.Distribution{Home: 0.5, Draw: 0.3, Away: 0.2}
}

func newEngine(t *testing.T, est probability.Estimator, settings Settings) *ValueEngine {
	t.Helper()
	engine, err := NewValueEngine(est, settings, nil)
	require.NoError(t, err)
	return engine
}

func TestEvaluateScenarioDrawValue(t *testing.T) {
	engine := newEngine(t, fixedEstimator{scenarioDistribution()}, DefaultSettings(1000))

	result, err := engine.Evaluate(context.Background(), []models.MatchPayload{
		payload("evt-1", "Arsenal", "Chelsea", price(2.0), price(3.5), price(4.0)),
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	require.Len(t, result.Recommendations, 1)
	assert.NotEmpty(t, result.RunID)

	edges := map[models.Outcome]float64{}
	for _, row := range result.Rows {
		edges[row.Outcome] = row.Edge
	}
	assert.InDelta(t, 0.0, edges[models.OutcomeHome], 1e-12)
	assert.InDelta(t, 0.05, edges[models.OutcomeDraw], 1e-12)
	assert.InDelta(t, -0.2, edges[models.OutcomeAway], 1e-12)

	rec := result.Recommendations[0]
	assert.Equal(t, models.DecisionBet, rec.Decision)
	assert.Equal(t, models.OutcomeDraw, rec.Outcome)
	require.NotNil(t, rec.Row)
	assert.True(t, rec.Row.SuggestedBet)
	assert.InDelta(t, 20.0, rec.Row.StakeSuggested, 1e-9)
	assert.InDelta(t, 1/3.5, rec.Row.ProbImplied, 1e-12)
	assert.Len(t, result.Bets(), 1)
}

func TestEvaluateMissingOddsExcluded(t *testing.T) {
	engine := newEngine(t, fixedEstimator{scenarioDistribution()}, DefaultSettings(1000))

	result, err := engine.Evaluate(context.Background(), []models.MatchPayload{
		payload("evt-1", "Arsenal", "Chelsea", price(2.0), nil, price(4.0)),
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	for _, row := range result.Rows {
		assert.NotEqual(t, models.OutcomeDraw, row.Outcome)
	}
	assert.Equal(t, 1, result.Dropped[normalizer.ReasonInvalidPrice])
	assert.Equal(t, models.DecisionSkip, result.Recommendations[0].Decision)
}

func TestEvaluateDevigSkipsIncompleteRecord(t *testing.T) {
	engine := newEngine(t, probability.DevigEstimator{}, DefaultSettings(1000))

	result, err := engine.Evaluate(context.Background(), []models.MatchPayload{
		payload("evt-1", "Arsenal", "Chelsea", price(2.0), nil, price(4.0)),
		payload("evt-2", "Everton", "Fulham", price(2.5), price(3.2), price(3.0)),
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, 2, result.Dropped[ReasonMissingOdds])
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "evt-2", result.Recommendations[0].MatchID)
	assert.Equal(t, models.DecisionSkip, result.Recommendations[0].Decision, "de-vigged probabilities never beat their own margin")
}

func TestEvaluateUnknownCategoryFailsFast(t *testing.T) {
	est := &mockEstimator{}
	est.On("Estimate", "Arsenal").Return(scenarioDistribution(), nil)
	est.On("Estimate", "Wrexham").Return(models.Distribution{},
		fmt.Errorf("%w: home team %q", probability.ErrUnknownCategory, "Wrexham"))

	engine := newEngine(t, est, DefaultSettings(1000))
	_, err := engine.Evaluate(context.Background(), []models.MatchPayload{
		payload("evt-1", "Arsenal", "Chelsea", price(2.0), price(3.5), price(4.0)),
		payload("evt-2", "Wrexham", "Chelsea", price(2.0), price(3.5), price(4.0)),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, probability.ErrUnknownCategory))
	assert.Contains(t, err.Error(), "evt-2")
	est.AssertExpectations(t)
}

func TestEvaluateEmptyBatch(t *testing.T) {
	engine := newEngine(t, fixedEstimator{scenarioDistribution()}, DefaultSettings(1000))

	result, err := engine.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, 0, result.Matches)
	assert.Empty(t, result.Bets())
}

func TestEvaluateOtherMarketsUseImpliedProbability(t *testing.T) {
	p := payload("evt-1", "Arsenal", "Chelsea", price(2.0), price(3.5), price(4.0))
	p.Bookmakers[0].Markets = append(p.Bookmakers[0].Markets, models.MarketPayload{
		Key: "totals",
		Outcomes: []models.OutcomePayload{
			{Name: "Over", Price: price(1.9), Point: price(2.5)},
			{Name: "Under", Price: price(1.95), Point: price(2.5)},
		},
	})

	engine := newEngine(t, fixedEstimator{scenarioDistribution()}, DefaultSettings(1000))
	result, err := engine.Evaluate(context.Background(), []models.MatchPayload{p})
	require.NoError(t, err)
	require.Len(t, result.Rows, 5)

	for _, row := range result.Rows[3:] {
		assert.Equal(t, models.MarketTotals, row.Market)
		assert.InDelta(t, row.ProbImplied, row.ProbModel, 1e-15)
		assert.InDelta(t, 0.0, row.Edge, 1e-12)
		assert.Equal(t, 0.0, row.StakeSuggested)
		assert.False(t, row.SuggestedBet)
	}
}

func TestEvaluateParallelMatchesSequential(t *testing.T) {
	var payloads []models.MatchPayload
	for i := 0; i < 20; i++ {
		payloads = append(payloads, payload(fmt.Sprintf("evt-%02d", i), "Arsenal", "Chelsea",
			price(2.0+float64(i)*0.1), price(3.5), price(4.0)))
	}

	sequential := newEngine(t, fixedEstimator{scenarioDistribution()}, DefaultSettings(1000))
	settings := DefaultSettings(1000)
	settings.Workers = 4
	parallel := newEngine(t, fixedEstimator{scenarioDistribution()}, settings)

	want, err := sequential.Evaluate(context.Background(), payloads)
	require.NoError(t, err)
	got, err := parallel.Evaluate(context.Background(), payloads)
	require.NoError(t, err)

	assert.Equal(t, want.Rows, got.Rows)
	assert.Equal(t, want.Recommendations, got.Recommendations)
}

func TestEvaluateCancelledContext(t *testing.T) {
	engine := newEngine(t, fixedEstimator{scenarioDistribution()}, DefaultSettings(1000))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Evaluate(ctx, []models.MatchPayload{
		payload("evt-1", "Arsenal", "Chelsea", price(2.0), price(3.5), price(4.0)),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreRecordMinEdge(t *testing.T) {
	record := models.MatchRecord{
		ID: "evt-1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", Bookmaker: "Pinnacle",
		HomeOdds: price(2.0), DrawOdds: price(3.5), AwayOdds: price(4.0),
	}

	rec, rows := ScoreRecord(record, scenarioDistribution(), NewSizer(1000, 1, 1), 0.1)
	assert.Equal(t, models.DecisionSkip, rec.Decision)
	assert.Nil(t, rec.Row)
	for _, row := range rows {
		assert.False(t, row.SuggestedBet)
		assert.Equal(t, 0.0, row.StakeSuggested)
	}
}

func TestNewValueEngineValidation(t *testing.T) {
	_, err := NewValueEngine(nil, DefaultSettings(100), nil)
	assert.ErrorIs(t, err, ErrNoEstimator)

	_, err = NewValueEngine(probability.DevigEstimator{}, DefaultSettings(-1), nil)
	assert.Error(t, err)

	engine, err := NewValueEngine(probability.DevigEstimator{}, Settings{Bankroll: 100}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Settings().Workers)
	assert.Equal(t, 1.0, engine.Settings().KellyMultiplier)
}
