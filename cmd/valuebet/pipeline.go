package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yourusername/value-better/internal/database"
	"github.com/yourusername/value-better/internal/datasource"
	"github.com/yourusername/value-better/internal/history"
	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/normalizer"
	"github.com/yourusername/value-better/internal/probability"
	"github.com/yourusername/value-better/internal/report"
	"github.com/yourusername/value-better/internal/repository"
	"github.com/yourusername/value-better/internal/strategy"
)

// outputOptions are the presentation flags shared by scan, score and watch
type outputOptions struct {
	format   string
	topN     int
	betsOnly bool
}

// pipeline holds what a scan needs once the estimator is built
type pipeline struct {
	source datasource.OddsSource
	query  datasource.Query
	engine *strategy.ValueEngine
	cli    *cli
}

// openStore connects to Postgres when history lives there. The returned close func is
// never nil.
func (c *cli) openStore(ctx context.Context) (*database.DB, history.FixtureStore, func(), error) {
	if c.cfg.History.Source != history.SourcePostgres {
		return nil, nil, func() {}, nil
	}
	db, err := database.Initialize(ctx, &c.cfg.Database, c.log)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, func() {}, err
	}
	return db, repos.Fixtures, db.Close, nil
}

// loadFixtures reads the configured historical fixtures
func (c *cli) loadFixtures(ctx context.Context, store history.FixtureStore) ([]models.HistoricalFixture, error) {
	source, err := history.NewSource(c.cfg.History, store, c.log)
	if err != nil {
		return nil, err
	}
	fixtures, err := source.LoadFixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s history: %w", source.Name(), err)
	}
	return fixtures, nil
}

// buildEstimator loads history when the strategy needs it and builds the estimator
func (c *cli) buildEstimator(ctx context.Context, store history.FixtureStore) (probability.Estimator, error) {
	strat, err := probability.ParseStrategy(c.cfg.Betting.Strategy)
	if err != nil {
		return nil, err
	}

	var fixtures []models.HistoricalFixture
	if strat != probability.StrategyDevig {
		if fixtures, err = c.loadFixtures(ctx, store); err != nil {
			return nil, err
		}
	}

	fb := c.cfg.History.Fallback
	start := time.Now()
	est, err := probability.New(probability.Params{
		Strategy: strat,
		Fixtures: fixtures,
		Fallback: models.Distribution{Home: fb.Home, Draw: fb.Draw, Away: fb.Away},
		Train: probability.TrainConfig{
			LearningRate: c.cfg.Classifier.LearningRate,
			Epochs:       c.cfg.Classifier.Epochs,
			L2:           c.cfg.Classifier.L2,
		},
	})
	if err != nil {
		return nil, err
	}

	engineLog := logger.NewEngineLogger(c.log)
	switch e := est.(type) {
	case *probability.FrequencyEstimator:
		table := e.Table()
		engineLog.LogCalibration(table.SampleSize, table.Home, table.Draw, table.Away, outcomeNames(table.FallbackUsed))
	case *probability.Classifier:
		home, away := e.Teams()
		engineLog.LogClassifierTrained(e.Samples(), home, away, float64(time.Since(start).Microseconds())/1000.0)
	}
	return est, nil
}

// newPipeline wires source, estimator and engine from configuration
func (c *cli) newPipeline(ctx context.Context, store history.FixtureStore) (*pipeline, error) {
	factory := datasource.NewFactory(c.cfg.OddsAPI, c.log)
	source, err := factory.NewOddsSource()
	if err != nil {
		return nil, err
	}

	est, err := c.buildEstimator(ctx, store)
	if err != nil {
		return nil, err
	}

	settings := strategy.Settings{
		Bankroll:         c.cfg.Betting.Bankroll,
		KellyMultiplier:  c.cfg.Betting.KellyMultiplier,
		MaxStakeFraction: c.cfg.Betting.MaxStakeFraction,
		MinEdge:          c.cfg.Betting.MinEdge,
		Workers:          c.cfg.Betting.Workers,
	}
	engine, err := strategy.NewValueEngine(est, settings, c.log)
	if err != nil {
		return nil, err
	}

	return &pipeline{source: source, query: factory.Query(), engine: engine, cli: c}, nil
}

// run fetches odds, evaluates them and renders the report to w
func (p *pipeline) run(ctx context.Context, w io.Writer, out outputOptions) (report.Report, error) {
	payloads, err := p.source.FetchOdds(ctx, p.query)
	if err != nil {
		return report.Report{}, fmt.Errorf("odds source %s: %w", p.source.Name(), err)
	}

	validator := normalizer.NewPayloadValidator(0)
	now := time.Now()
	for i := range payloads {
		if problems := validator.ValidatePayload(&payloads[i], now); len(problems) > 0 {
			p.cli.log.WithField("match_id", payloads[i].ID).WithField("problems", problems).Warn("Payload failed validation")
		}
	}

	result, err := p.engine.Evaluate(ctx, payloads)
	if err != nil {
		return report.Report{}, err
	}

	topN := out.topN
	if topN == 0 {
		topN = p.cli.cfg.Betting.TopN
	}
	rep := report.Build(result, report.Options{TopN: topN, BetsOnly: out.betsOnly})
	if err := report.Render(w, rep, out.format); err != nil {
		return rep, err
	}
	return rep, nil
}

func outcomeNames(outcomes []models.Outcome) []string {
	names := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		names = append(names, string(o))
	}
	return names
}
