package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/value-better/internal/config"
	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/probability"
	"github.com/yourusername/value-better/internal/strategy"
)

// DefaultTrainFraction is the share of fixtures, oldest first, used to fit the estimator
const DefaultTrainFraction = 0.5

// Config holds the replay settings
type Config struct {
	Estimator     probability.Params
	Settings      strategy.Settings
	TrainFraction float64
	// Compound sizes each stake from the running bankroll instead of the starting one
	Compound bool
}

// FromConfig builds a replay config from the application config
func FromConfig(cfg *config.Config, trainFraction float64, compound bool) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is required")
	}
	strat, err := probability.ParseStrategy(cfg.Betting.Strategy)
	if err != nil {
		return Config{}, err
	}

	fb := cfg.History.Fallback
	bt := Config{
		Estimator: probability.Params{
			Strategy: strat,
			Fallback: models.Distribution{Home: fb.Home, Draw: fb.Draw, Away: fb.Away},
			Train: probability.TrainConfig{
				LearningRate: cfg.Classifier.LearningRate,
				Epochs:       cfg.Classifier.Epochs,
				L2:           cfg.Classifier.L2,
			},
		},
		Settings: strategy.Settings{
			Bankroll:         cfg.Betting.Bankroll,
			KellyMultiplier:  cfg.Betting.KellyMultiplier,
			MaxStakeFraction: cfg.Betting.MaxStakeFraction,
			MinEdge:          cfg.Betting.MinEdge,
			Workers:          1,
		},
		TrainFraction: trainFraction,
		Compound:      compound,
	}
	return bt, bt.Validate()
}

// Validate validates replay parameters
func (c Config) Validate() error {
	if c.Settings.Bankroll <= 0 || math.IsNaN(c.Settings.Bankroll) {
		return fmt.Errorf("bankroll must be positive")
	}
	if c.TrainFraction < 0 || c.TrainFraction >= 1 || math.IsNaN(c.TrainFraction) {
		return fmt.Errorf("train fraction must be in [0, 1), got %v", c.TrainFraction)
	}
	if c.Settings.MinEdge < 0 {
		return fmt.Errorf("min edge cannot be negative")
	}
	return nil
}
