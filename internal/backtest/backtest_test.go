package backtest

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-better/internal/config"
	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/probability"
	"github.com/yourusername/value-better/internal/report"
	"github.com/yourusername/value-better/internal/strategy"
)

var base = time.Date(2024, 8, 1, 15, 0, 0, 0, time.UTC)

func fixture(home, away string, day int, h, d, a float64, result models.Outcome) models.HistoricalFixture {
	return models.HistoricalFixture{
		HomeTeam: home,
		AwayTeam: away,
		League:   "EPL",
		Kickoff:  base.AddDate(0, 0, day),
		HomeOdds: models.Float64Ptr(h),
		DrawOdds: models.Float64Ptr(d),
		AwayOdds: models.Float64Ptr(a),
		Result:   result,
	}
}

// Two home wins train the calibration; the two replayed fixtures are a home win and
// an away win, both priced 2.0/4.0/4.0.
func scenario() []models.HistoricalFixture {
	return []models.HistoricalFixture{
		fixture("Chelsea", "Liverpool", 4, 2.0, 4.0, 4.0, models.OutcomeAway),
		fixture("Arsenal", "Chelsea", 1, 1.8, 3.6, 4.5, models.OutcomeHome),
		fixture("Arsenal", "Everton", 3, 2.0, 4.0, 4.0, models.OutcomeHome),
		fixture("Liverpool", "Everton", 2, 1.5, 4.2, 6.5, models.OutcomeHome),
	}
}

func testConfig(strat probability.Strategy, compound bool) Config {
	return Config{
		Estimator: probability.Params{
			Strategy: strat,
			Fallback: probability.DefaultFallback,
			Train:    probability.DefaultTrainConfig(),
		},
		Settings:      strategy.DefaultSettings(100),
		TrainFraction: 0.5,
		Compound:      compound,
	}
}

// home probability after calibrating two home wins with the .33/.34 fallback
const homeProb = 1.0 / 1.67

func TestSplitOrdersByKickoff(t *testing.T) {
	train, test := Split(scenario(), 0.5)
	require.Len(t, train, 2)
	require.Len(t, test, 2)
	assert.Equal(t, "Arsenal", train[0].HomeTeam)
	assert.Equal(t, "Liverpool", train[1].HomeTeam)
	assert.Equal(t, "Arsenal", test[0].HomeTeam)
	assert.Equal(t, "Chelsea", test[1].HomeTeam)

	train, test = Split(scenario(), 0)
	assert.Empty(t, train)
	assert.Len(t, test, 4)
}

func TestRunFlatStakes(t *testing.T) {
	engine, err := NewEngine(testConfig(probability.StrategyFrequency, false), nil)
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), scenario())
	require.NoError(t, err)

	f := 2*homeProb - 1
	assert.Equal(t, probability.StrategyFrequency, res.Strategy)
	assert.Equal(t, 2, res.TrainFixtures)
	assert.Equal(t, 2, res.TestFixtures)
	require.Len(t, res.Bets, 2)

	first, second := res.Bets[0], res.Bets[1]
	assert.Equal(t, models.OutcomeHome, first.Outcome)
	assert.True(t, first.Won)
	assert.InDelta(t, 100*f, first.Stake, 1e-9)
	assert.InDelta(t, 100*f, first.ProfitLoss, 1e-9)
	assert.InDelta(t, f, first.Edge, 1e-9)

	assert.Equal(t, models.OutcomeHome, second.Outcome)
	assert.Equal(t, models.OutcomeAway, second.Result)
	assert.False(t, second.Won)
	assert.InDelta(t, 100*f, second.Stake, 1e-9)
	assert.InDelta(t, -100*f, second.ProfitLoss, 1e-9)
	assert.InDelta(t, 100, second.BankrollAfter, 1e-9)

	m := res.Metrics
	assert.Equal(t, 2, m.TotalBets)
	assert.Equal(t, 1, m.WinningBets)
	assert.Equal(t, 1, m.LosingBets)
	assert.InDelta(t, 0.5, m.WinRate, 1e-9)
	assert.InDelta(t, 200*f, m.TotalStaked, 1e-9)
	assert.InDelta(t, 0, m.NetProfit, 1e-9)
	assert.InDelta(t, 1, m.ProfitFactor, 1e-9)
	assert.InDelta(t, f/(1+f), m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 2*strategy.ExpectedProfit(homeProb, 2.0, 100*f), m.ExpectedProfit, 1e-9)

	require.Len(t, res.Curve, 3)
	assert.InDelta(t, 100, res.Curve[0].Value, 1e-9)
	assert.InDelta(t, 100+100*f, res.Curve[1].Value, 1e-9)
	assert.Empty(t, res.Skipped)
}

func TestRunCompounding(t *testing.T) {
	engine, err := NewEngine(testConfig(probability.StrategyFrequency, true), nil)
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), scenario())
	require.NoError(t, err)

	f := 2*homeProb - 1
	require.Len(t, res.Bets, 2)
	assert.InDelta(t, 100*(1+f)*f, res.Bets[1].Stake, 1e-9)
	assert.InDelta(t, 100*(1-f*f), res.Curve.Final(), 1e-9)
	assert.InDelta(t, -f*f, res.Metrics.TotalReturn, 1e-9)
}

func TestRunDevigNeverBets(t *testing.T) {
	engine, err := NewEngine(testConfig(probability.StrategyDevig, false), nil)
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), scenario())
	require.NoError(t, err)
	assert.Empty(t, res.Bets)
	assert.Equal(t, 2, res.Skipped[SkipNoValue])
	assert.Equal(t, 0, res.Metrics.TotalBets)
	assert.InDelta(t, 0, res.Metrics.TotalReturn, 1e-9)
}

func TestRunSkipsFixturesWithoutOdds(t *testing.T) {
	fixtures := scenario()
	fixtures = append(fixtures, models.HistoricalFixture{
		HomeTeam: "Everton",
		AwayTeam: "Arsenal",
		League:   "EPL",
		Kickoff:  base.AddDate(0, 0, 5),
		Result:   models.OutcomeDraw,
	})
	cfg := testConfig(probability.StrategyFrequency, false)
	cfg.TrainFraction = 0.4

	engine, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), fixtures)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped[SkipNoOdds])
	assert.Len(t, res.Bets, 2)
}

func TestRunDevigSkipsPartialOdds(t *testing.T) {
	fixtures := scenario()
	fixtures[0].DrawOdds = nil

	engine, err := NewEngine(testConfig(probability.StrategyDevig, false), nil)
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), fixtures)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped[SkipInvalidOdds])
	assert.Equal(t, 1, res.Skipped[SkipNoValue])
}

func TestRunErrors(t *testing.T) {
	engine, err := NewEngine(testConfig(probability.StrategyFrequency, false), nil)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTestFixtures)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Run(ctx, scenario())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero bankroll", func(c *Config) { c.Settings.Bankroll = 0 }, true},
		{"train fraction one", func(c *Config) { c.TrainFraction = 1 }, true},
		{"negative train fraction", func(c *Config) { c.TrainFraction = -0.1 }, true},
		{"negative min edge", func(c *Config) { c.Settings.MinEdge = -0.01 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(probability.StrategyFrequency, false)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFromConfig(t *testing.T) {
	app := &config.Config{
		Betting: config.BettingConfig{
			Bankroll:         500,
			Strategy:         "Classifier",
			KellyMultiplier:  0.5,
			MaxStakeFraction: 0.1,
			MinEdge:          0.02,
		},
		History: config.HistoryConfig{
			Fallback: config.FallbackConfig{Home: 0.4, Draw: 0.3, Away: 0.3},
		},
		Classifier: config.ClassifierConfig{LearningRate: 0.1, Epochs: 50, L2: 0.01},
	}

	cfg, err := FromConfig(app, 0.6, true)
	require.NoError(t, err)
	assert.Equal(t, probability.StrategyClassifier, cfg.Estimator.Strategy)
	assert.InDelta(t, 0.4, cfg.Estimator.Fallback.Home, 1e-9)
	assert.Equal(t, 50, cfg.Estimator.Train.Epochs)
	assert.InDelta(t, 500, cfg.Settings.Bankroll, 1e-9)
	assert.InDelta(t, 0.1, cfg.Settings.MaxStakeFraction, 1e-9)
	assert.True(t, cfg.Compound)

	app.Betting.Strategy = "poisson"
	_, err = FromConfig(app, 0.5, false)
	assert.ErrorIs(t, err, probability.ErrUnknownStrategy)

	_, err = FromConfig(nil, 0.5, false)
	assert.Error(t, err)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := CalculateMetrics(nil, EquityCurve{{Time: base, Value: 100}}, 100)
	assert.Equal(t, 0, m.TotalBets)
	assert.Zero(t, m.ROI)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.SharpeRatio)
}

func TestEquityCurveCSV(t *testing.T) {
	curve := EquityCurve{}.appendPoint(base, 100)
	curve = curve.appendPoint(base.AddDate(0, 0, 1), 120)
	curve = curve.appendPoint(base.AddDate(0, 0, 2), 90)

	assert.InDelta(t, 0.25, curve.MaxDrawdown(), 1e-9)
	assert.Equal(t, []float64{0.2, -0.25}, curve.GetReturns())

	var buf bytes.Buffer
	require.NoError(t, curve.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,value,drawdown", lines[0])
	assert.Equal(t, "2024-08-03T15:00:00Z,90.000000,0.250000", lines[3])
}

func TestRender(t *testing.T) {
	engine, err := NewEngine(testConfig(probability.StrategyFrequency, false), nil)
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), scenario())
	require.NoError(t, err)

	var table bytes.Buffer
	require.NoError(t, Render(&table, res, report.FormatTable))
	out := table.String()
	assert.Contains(t, out, "Arsenal vs Everton")
	assert.Contains(t, out, "Chelsea vs Liverpool")
	assert.Contains(t, out, "Win rate")
	assert.Contains(t, out, "50.00%")

	var js bytes.Buffer
	require.NoError(t, Render(&js, res, report.FormatJSON))
	var decoded Result
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Len(t, decoded.Bets, 2)
	assert.Equal(t, res.RunID, decoded.RunID)

	assert.ErrorIs(t, Render(&js, res, "xml"), report.ErrUnknownFormat)
}
