package strategy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/metrics"
	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/normalizer"
	"github.com/yourusername/value-better/internal/probability"
)

// Drop reasons added by the engine on top of the normalizer's
const (
	ReasonMissingOdds = "missing_odds"
	ReasonInvalidOdds = "invalid_odds"
	ReasonDuplicate   = "duplicate_quote"
)

// ErrNoEstimator indicates an engine built without a probability estimator
var ErrNoEstimator = errors.New("probability estimator is required")

// Settings are the explicit inputs of an evaluation. Nothing is read from the
// environment.
type Settings struct {
	Bankroll         float64
	KellyMultiplier  float64
	MaxStakeFraction float64
	MinEdge          float64
	Workers          int
}

// DefaultSettings returns full Kelly with no cap beyond the bankroll
func DefaultSettings(bankroll float64) Settings {
	return Settings{
		Bankroll:         bankroll,
		KellyMultiplier:  1.0,
		MaxStakeFraction: 1.0,
		MinEdge:          0,
		Workers:          1,
	}
}

// Result is the output of one evaluation pass
type Result struct {
	RunID           string                  `json:"run_id"`
	Strategy        probability.Strategy    `json:"strategy"`
	Matches         int                     `json:"matches"`
	Rows            []models.EVRow          `json:"rows"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Dropped         map[string]int          `json:"dropped"`
}

// Bets returns the recommendations that carry a wager
func (r *Result) Bets() []models.Recommendation {
	var bets []models.Recommendation
	for _, rec := range r.Recommendations {
		if rec.IsBet() {
			bets = append(bets, rec)
		}
	}
	return bets
}

// Empty reports whether the pass produced no rows
func (r *Result) Empty() bool {
	return len(r.Rows) == 0
}

// TotalDropped returns the number of dropped rows across all reasons
func (r *Result) TotalDropped() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// ValueEngine runs normalisation, estimation, scoring, selection and sizing over a
// batch of fetched matches. It holds no mutable state between calls.
type ValueEngine struct {
	estimator  probability.Estimator
	settings   Settings
	sizer      Sizer
	normalizer *normalizer.OddsNormalizer
	log        *logger.EngineLogger
	audit      *logger.AuditLogger
}

// NewValueEngine creates an engine. A nil logger discards output.
func NewValueEngine(estimator probability.Estimator, settings Settings, log *logrus.Logger) (*ValueEngine, error) {
	if estimator == nil {
		return nil, ErrNoEstimator
	}
	if settings.Bankroll < 0 || math.IsNaN(settings.Bankroll) {
		return nil, fmt.Errorf("bankroll must be non-negative, got %v", settings.Bankroll)
	}
	if settings.Workers <= 0 {
		settings.Workers = 1
	}
	if log == nil {
		log = logger.Discard()
	}

	sizer := NewSizer(settings.Bankroll, settings.KellyMultiplier, settings.MaxStakeFraction)
	settings.KellyMultiplier = sizer.Multiplier
	settings.MaxStakeFraction = sizer.MaxFraction

	return &ValueEngine{
		estimator:  estimator,
		settings:   settings,
		sizer:      sizer,
		normalizer: normalizer.NewOddsNormalizer(log),
		log:        logger.NewEngineLogger(log),
		audit:      logger.NewAuditLogger(log),
	}, nil
}

// Settings returns the effective settings
func (e *ValueEngine) Settings() Settings {
	return e.settings
}

type matchResult struct {
	rows            []models.EVRow
	recommendations []models.Recommendation
	dropped         map[string]int
}

// Evaluate scores every payload. Malformed rows and records that cannot be estimated
// are dropped and counted. An unknown classifier category aborts the whole batch.
// An empty batch yields an empty result.
func (e *ValueEngine) Evaluate(ctx context.Context, payloads []models.MatchPayload) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	e.audit.LogRunStarted(runID, string(e.estimator.Strategy()), e.settings.Bankroll,
		e.settings.KellyMultiplier, e.settings.MaxStakeFraction, e.settings.MinEdge)

	results := make([]matchResult, len(payloads))
	if e.settings.Workers > 1 && len(payloads) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.settings.Workers)
		for i := range payloads {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := e.evaluateMatch(runID, &payloads[i])
				results[i] = r
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range payloads {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := e.evaluateMatch(runID, &payloads[i])
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
	}

	result := &Result{
		RunID:    runID,
		Strategy: e.estimator.Strategy(),
		Matches:  len(payloads),
		Rows:     []models.EVRow{},
		Dropped:  make(map[string]int),
	}
	for _, r := range results {
		result.Rows = append(result.Rows, r.rows...)
		result.Recommendations = append(result.Recommendations, r.recommendations...)
		for reason, n := range r.dropped {
			result.Dropped[reason] += n
		}
	}

	e.record(result, time.Since(start))
	return result, nil
}

func (e *ValueEngine) record(result *Result, elapsed time.Duration) {
	bets := result.Bets()
	metrics.RecordEvaluation(elapsed.Seconds(), result.Matches, len(result.Rows))
	metrics.UpdateBankroll(e.settings.Bankroll)
	metrics.UpdateLastValueBets(len(bets))
	for reason, n := range result.Dropped {
		metrics.RecordDropped(reason, n)
	}
	for _, rec := range result.Recommendations {
		metrics.RecordDecision(string(rec.Decision), string(rec.Outcome))
		if rec.IsBet() && rec.Row != nil {
			metrics.RecordValueBet(rec.Row.Edge, e.sizer.Fraction(rec.Row.ProbModel, rec.Row.Odds))
			e.audit.LogRecommendation(result.RunID, rec.MatchID, rec.Match, rec.Bookmaker, string(rec.Outcome),
				rec.Row.Odds, rec.Row.Edge, rec.Row.StakeSuggested, rec.Row.CommenceTime)
		}
	}

	e.log.LogEvaluation(result.RunID, string(result.Strategy), result.Matches, len(result.Rows), len(bets),
		result.TotalDropped(), float64(elapsed.Microseconds())/1000.0)
}

func (e *ValueEngine) evaluateMatch(runID string, payload *models.MatchPayload) (matchResult, error) {
	rows, stats := e.normalizer.Normalize(payload)
	out := matchResult{dropped: make(map[string]int)}
	for reason, n := range stats.Dropped {
		out.dropped[reason] += n
	}

	records := normalizer.BuildRecords(payload, rows)
	quoted := make(map[string]int, len(records))
	for _, row := range rows {
		if row.Market == models.MarketH2H {
			quoted[row.Bookmaker]++
		}
	}

	for _, record := range records {
		rec, evRows, err := e.EvaluateRecord(record)
		if err != nil {
			if errors.Is(err, probability.ErrUnknownCategory) {
				return matchResult{}, fmt.Errorf("match %s (%s): %w", record.ID, record.MatchName(), err)
			}
			reason := ReasonMissingOdds
			if errors.Is(err, probability.ErrInvalidOdds) {
				reason = ReasonInvalidOdds
			}
			out.dropped[reason] += quoted[record.Bookmaker]
			e.log.LogSkippedRecord(runID, record.ID, record.Bookmaker, reason, err)
			continue
		}
		if dup := quoted[record.Bookmaker] - len(evRows); dup > 0 {
			out.dropped[ReasonDuplicate] += dup
		}
		out.rows = append(out.rows, evRows...)
		out.recommendations = append(out.recommendations, rec)

		var stake, odds, edge float64
		if rec.Row != nil {
			stake, odds, edge = rec.Row.StakeSuggested, rec.Row.Odds, rec.Row.Edge
		}
		e.log.LogDecision(runID, rec.MatchID, rec.Bookmaker, string(rec.Decision), string(rec.Outcome),
			edge, e.sizer.Fraction(probOf(rec.Row), odds), stake, odds)
	}

	// Markets other than h2h have no model: they are scored against their own
	// implied probability and never staked.
	for _, row := range rows {
		if row.Market == models.MarketH2H {
			continue
		}
		out.rows = append(out.rows, ScoreRow(row, 1.0/row.Odds, Sizer{}, e.settings.MinEdge))
	}

	return out, nil
}

// EvaluateRecord estimates, scores and selects for one bookmaker's head-to-head view
// of a match. Outcomes without odds are left out of the rows and the selection.
func (e *ValueEngine) EvaluateRecord(record models.MatchRecord) (models.Recommendation, []models.EVRow, error) {
	dist, err := e.estimator.Estimate(record)
	if err != nil {
		return models.Recommendation{}, nil, err
	}
	rec, rows := ScoreRecord(record, dist, e.sizer, e.settings.MinEdge)
	return rec, rows, nil
}

// ScoreRecord maps a match record and its distribution to EV rows and a best-bet
// recommendation.
func ScoreRecord(record models.MatchRecord, dist models.Distribution, sizer Sizer, minEdge float64) (models.Recommendation, []models.EVRow) {
	edges := [3]float64{math.NaN(), math.NaN(), math.NaN()}
	var rows []models.EVRow
	index := [3]int{-1, -1, -1}

	for i, outcome := range models.CanonicalOutcomes {
		odds, ok := record.Odds(outcome)
		if !ok || math.IsNaN(odds) || odds <= 1 {
			continue
		}
		row := ScoreRow(models.OutcomeRow{
			MatchID:      record.ID,
			Match:        record.MatchName(),
			HomeTeam:     record.HomeTeam,
			AwayTeam:     record.AwayTeam,
			League:       record.League,
			CommenceTime: record.CommenceTime,
			Market:       models.MarketH2H,
			Outcome:      outcome,
			Odds:         odds,
			Bookmaker:    record.Bookmaker,
		}, dist.Get(outcome), sizer, minEdge)
		edges[i] = row.Edge
		index[i] = len(rows)
		rows = append(rows, row)
	}

	rec := models.Recommendation{
		MatchID:   record.ID,
		Match:     record.MatchName(),
		Bookmaker: record.Bookmaker,
		Decision:  models.DecisionSkip,
	}
	sel := SelectBest(edges, minEdge)
	if sel.Decision == models.DecisionBet {
		i := sel.Outcome.Index()
		rows[index[i]].SuggestedBet = true
		selected := rows[index[i]]
		rec.Decision = models.DecisionBet
		rec.Outcome = sel.Outcome
		rec.Row = &selected
	}
	return rec, rows
}

func probOf(row *models.EVRow) float64 {
	if row == nil {
		return 0
	}
	return row.ProbModel
}
