package models

import "math"

// DistributionTolerance bounds the allowed deviation of a normalised distribution from 1
const DistributionTolerance = 1e-9

// Distribution is a probability per canonical outcome
type Distribution struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Get returns the probability for an outcome; unknown labels yield 0
func (d Distribution) Get(outcome Outcome) float64 {
	switch outcome {
	case OutcomeHome:
		return d.Home
	case OutcomeDraw:
		return d.Draw
	case OutcomeAway:
		return d.Away
	default:
		return 0
	}
}

// Values returns the probabilities in canonical order
func (d Distribution) Values() [3]float64 {
	return [3]float64{d.Home, d.Draw, d.Away}
}

// Sum returns the total probability mass
func (d Distribution) Sum() float64 {
	return d.Home + d.Draw + d.Away
}

// Normalized rescales the distribution to sum to 1. A zero or non-finite total is
// returned unchanged.
func (d Distribution) Normalized() Distribution {
	total := d.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return d
	}
	return Distribution{Home: d.Home / total, Draw: d.Draw / total, Away: d.Away / total}
}

// IsNormalized reports whether the distribution sums to 1 within tolerance
func (d Distribution) IsNormalized() bool {
	return math.Abs(d.Sum()-1.0) <= DistributionTolerance
}

// DistributionFromValues builds a distribution from canonical-order values
func DistributionFromValues(v [3]float64) Distribution {
	return Distribution{Home: v[0], Draw: v[1], Away: v[2]}
}
