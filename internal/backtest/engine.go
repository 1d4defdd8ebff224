package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/probability"
	"github.com/yourusername/value-better/internal/strategy"
)

// Skip reasons for replayed fixtures that produced no bet
const (
	SkipNoOdds          = "no_odds"
	SkipInvalidOdds     = "invalid_odds"
	SkipUnknownCategory = "unknown_category"
	SkipNoValue         = "no_value"
	SkipBankrupt        = "bankrupt"
)

// ErrNoTestFixtures is returned when the split leaves nothing to replay
var ErrNoTestFixtures = errors.New("no fixtures left to replay after the training split")

// SettledBet is a replayed recommendation settled against the realised result
type SettledBet struct {
	Match          string         `json:"match"`
	League         string         `json:"league"`
	Kickoff        time.Time      `json:"kickoff"`
	Outcome        models.Outcome `json:"outcome"`
	Result         models.Outcome `json:"result"`
	Odds           float64        `json:"odds"`
	Probability    float64        `json:"probability"`
	Edge           float64        `json:"edge"`
	Stake          float64        `json:"stake"`
	ExpectedProfit float64        `json:"expected_profit"`
	ProfitLoss     float64        `json:"profit_loss"`
	Won            bool           `json:"won"`
	BankrollAfter  float64        `json:"bankroll_after"`
}

// Result is the outcome of one replay
type Result struct {
	RunID         string               `json:"run_id"`
	Strategy      probability.Strategy `json:"strategy"`
	TrainFixtures int                  `json:"train_fixtures"`
	TestFixtures  int                  `json:"test_fixtures"`
	Bets          []SettledBet         `json:"bets"`
	Skipped       map[string]int       `json:"skipped"`
	Curve         EquityCurve          `json:"equity_curve"`
	Metrics       Metrics              `json:"metrics"`
}

// Engine replays the value strategy over settled historical fixtures. The oldest
// fixtures fit the estimator and the rest are bet in kick-off order.
type Engine struct {
	config Config
	logger *logrus.Entry
}

// NewEngine creates a new replay engine. A nil logger discards output.
func NewEngine(cfg Config, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{config: cfg, logger: log.WithField("component", "backtest")}, nil
}

// Config returns the replay configuration
func (e *Engine) Config() Config {
	return e.config
}

// Split orders fixtures by kick-off and divides them into training and replay sets
func Split(fixtures []models.HistoricalFixture, trainFraction float64) (train, test []models.HistoricalFixture) {
	sorted := append([]models.HistoricalFixture(nil), fixtures...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kickoff.Before(sorted[j].Kickoff)
	})
	n := int(math.Floor(float64(len(sorted)) * trainFraction))
	return sorted[:n], sorted[n:]
}

// Run fits the estimator on the training set and settles a bet on every replayed
// fixture the selector picks
func (e *Engine) Run(ctx context.Context, fixtures []models.HistoricalFixture) (*Result, error) {
	train, test := Split(fixtures, e.config.TrainFraction)
	if len(test) == 0 {
		return nil, ErrNoTestFixtures
	}

	params := e.config.Estimator
	params.Fixtures = train
	estimator, err := probability.New(params)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:         uuid.NewString(),
		Strategy:      estimator.Strategy(),
		TrainFixtures: len(train),
		TestFixtures:  len(test),
		Skipped:       map[string]int{},
	}
	log := e.logger.WithFields(logrus.Fields{
		"run_id":   result.RunID,
		"strategy": result.Strategy,
	})
	log.WithFields(logrus.Fields{
		"train_fixtures": len(train),
		"test_fixtures":  len(test),
	}).Info("Starting backtest")

	initial := e.config.Settings.Bankroll
	bankroll := initial
	result.Curve = EquityCurve{}.appendPoint(test[0].Kickoff, bankroll)

	for _, fixture := range test {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bet, reason, err := e.replay(estimator, fixture, bankroll)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			result.Skipped[reason]++
			continue
		}

		bankroll += bet.ProfitLoss
		bet.BankrollAfter = bankroll
		result.Bets = append(result.Bets, bet)
		result.Curve = result.Curve.appendPoint(fixture.Kickoff, bankroll)
	}

	result.Metrics = CalculateMetrics(result.Bets, result.Curve, initial)
	log.WithFields(logrus.Fields{
		"bets":         result.Metrics.TotalBets,
		"net_profit":   result.Metrics.NetProfit,
		"roi":          result.Metrics.ROI,
		"max_drawdown": result.Metrics.MaxDrawdown,
	}).Info("Backtest completed")
	return result, nil
}

// replay scores one fixture and settles the selected bet. A non-empty reason means the
// fixture produced no bet.
func (e *Engine) replay(estimator probability.Estimator, fixture models.HistoricalFixture, bankroll float64) (SettledBet, string, error) {
	record := fixture.Record()
	if record.HomeOdds == nil && record.DrawOdds == nil && record.AwayOdds == nil {
		return SettledBet{}, SkipNoOdds, nil
	}
	if bankroll <= 0 {
		return SettledBet{}, SkipBankrupt, nil
	}

	dist, err := estimator.Estimate(record)
	if errors.Is(err, probability.ErrUnknownCategory) {
		e.logger.WithError(err).WithField("match", record.MatchName()).Debug("Skipping fixture with unseen team")
		return SettledBet{}, SkipUnknownCategory, nil
	}
	if errors.Is(err, probability.ErrMissingOdds) || errors.Is(err, probability.ErrInvalidOdds) {
		return SettledBet{}, SkipInvalidOdds, nil
	}
	if err != nil {
		return SettledBet{}, "", fmt.Errorf("estimate %s: %w", record.MatchName(), err)
	}

	base := e.config.Settings.Bankroll
	if e.config.Compound {
		base = bankroll
	}
	s := e.config.Settings
	sizer := strategy.NewSizer(base, s.KellyMultiplier, s.MaxStakeFraction)
	rec, _ := strategy.ScoreRecord(record, dist, sizer, s.MinEdge)
	if !rec.IsBet() || rec.Row == nil || rec.Row.StakeSuggested <= 0 {
		return SettledBet{}, SkipNoValue, nil
	}

	row := rec.Row
	stake := math.Min(row.StakeSuggested, bankroll)
	bet := SettledBet{
		Match:          record.MatchName(),
		League:         record.League,
		Kickoff:        fixture.Kickoff,
		Outcome:        rec.Outcome,
		Result:         fixture.Result,
		Odds:           row.Odds,
		Probability:    row.ProbModel,
		Edge:           row.Edge,
		Stake:          stake,
		ExpectedProfit: strategy.ExpectedProfit(row.ProbModel, row.Odds, stake),
		Won:            fixture.Result == rec.Outcome,
	}
	if bet.Won {
		bet.ProfitLoss = stake * (row.Odds - 1)
	} else {
		bet.ProfitLoss = -stake
	}
	return bet, "", nil
}
