// Package probability estimates home/draw/away distributions for a match using one of
// three interchangeable strategies.
package probability

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/value-better/internal/models"
)

var (
	// ErrMissingOdds indicates a required odds field is absent or NaN
	ErrMissingOdds = errors.New("missing odds")

	// ErrInvalidOdds indicates an odds value that cannot be inverted
	ErrInvalidOdds = errors.New("invalid odds")

	// ErrUnknownCategory indicates a team identity the classifier was not trained on
	ErrUnknownCategory = errors.New("unknown category")

	// ErrEmptyTrainingSet indicates a classifier fit without fixtures
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrUnknownStrategy indicates an unsupported strategy name
	ErrUnknownStrategy = errors.New("unknown probability strategy")
)

// Strategy selects how probabilities are estimated
type Strategy string

const (
	StrategyFrequency  Strategy = "frequency"
	StrategyDevig      Strategy = "devig"
	StrategyClassifier Strategy = "classifier"
)

// Strategies lists the supported strategies in display order
var Strategies = []Strategy{StrategyFrequency, StrategyDevig, StrategyClassifier}

// ParseStrategy parses a strategy name, case-insensitively
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Estimator produces a probability distribution over the canonical outcomes
type Estimator interface {
	Strategy() Strategy
	Estimate(record models.MatchRecord) (models.Distribution, error)
}

// Params carries the strategy choice and the inputs that strategy needs. Fixtures feed
// frequency calibration and classifier training; de-vig ignores them.
type Params struct {
	Strategy Strategy
	Fixtures []models.HistoricalFixture
	Fallback models.Distribution
	Train    TrainConfig
}

// New builds the estimator selected by params.Strategy
func New(params Params) (Estimator, error) {
	switch params.Strategy {
	case StrategyFrequency:
		return NewFrequencyEstimator(Calibrate(params.Fixtures, params.Fallback)), nil
	case StrategyDevig:
		return DevigEstimator{}, nil
	case StrategyClassifier:
		classifier, err := Fit(params.Fixtures, params.Train)
		if err != nil {
			return nil, fmt.Errorf("failed to train classifier: %w", err)
		}
		return classifier, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, params.Strategy)
	}
}
