package probability

import (
	"fmt"
	"math"

	"github.com/yourusername/value-better/internal/models"
)

// ImpliedProbabilities returns 1/odds for each canonical outcome. The result carries the
// bookmaker margin and usually sums to more than 1.
func ImpliedProbabilities(record models.MatchRecord) (models.Distribution, error) {
	var implied [3]float64
	for i, outcome := range models.CanonicalOutcomes {
		odds, ok := record.Odds(outcome)
		if !ok || math.IsNaN(odds) {
			return models.Distribution{}, fmt.Errorf("%w: %s", ErrMissingOdds, outcome)
		}
		if odds <= 0 || math.IsInf(odds, 0) {
			return models.Distribution{}, fmt.Errorf("%w: %s odds %v", ErrInvalidOdds, outcome, odds)
		}
		implied[i] = 1.0 / odds
	}
	return models.DistributionFromValues(implied), nil
}

// Devig removes the bookmaker margin by dividing each implied probability by their sum
func Devig(record models.MatchRecord) (models.Distribution, error) {
	implied, err := ImpliedProbabilities(record)
	if err != nil {
		return models.Distribution{}, err
	}
	return implied.Normalized(), nil
}

// Overround returns the summed implied probability minus 1
func Overround(record models.MatchRecord) (float64, error) {
	implied, err := ImpliedProbabilities(record)
	if err != nil {
		return 0, err
	}
	return implied.Sum() - 1.0, nil
}

// DevigEstimator estimates probabilities from the match's own quoted odds
type DevigEstimator struct{}

// Strategy implements Estimator
func (DevigEstimator) Strategy() Strategy {
	return StrategyDevig
}

// Estimate implements Estimator
func (DevigEstimator) Estimate(record models.MatchRecord) (models.Distribution, error) {
	return Devig(record)
}
