package strategy

import "math"

// KellyFraction returns the full Kelly fraction (b*p - q)/b with b = odds-1 and q = 1-p,
// floored at 0. Odds at or below 1 give 0.
func KellyFraction(probability, odds float64) float64 {
	if math.IsNaN(probability) || math.IsNaN(odds) {
		return 0
	}
	b := odds - 1.0
	if b <= 0 {
		return 0
	}
	q := 1.0 - probability
	f := (b*probability - q) / b
	if f <= 0 || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Sizer converts a Kelly fraction into a stake. Multiplier scales f* for fractional
// Kelly; MaxFraction caps the share of bankroll put on a single bet.
type Sizer struct {
	Bankroll    float64
	Multiplier  float64
	MaxFraction float64
}

// NewSizer creates a sizer. A non-positive multiplier means full Kelly and a
// MaxFraction outside (0,1] means no cap beyond the bankroll itself.
func NewSizer(bankroll, multiplier, maxFraction float64) Sizer {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	if maxFraction <= 0 || maxFraction > 1 {
		maxFraction = 1.0
	}
	return Sizer{Bankroll: bankroll, Multiplier: multiplier, MaxFraction: maxFraction}
}

// Fraction returns the share of bankroll to stake
func (s Sizer) Fraction(probability, odds float64) float64 {
	f := KellyFraction(probability, odds) * s.Multiplier
	maxFraction := s.MaxFraction
	if maxFraction <= 0 || maxFraction > 1 {
		maxFraction = 1.0
	}
	return math.Min(math.Max(f, 0), maxFraction)
}

// Stake returns the unrounded stake, never negative and never above the bankroll
func (s Sizer) Stake(probability, odds float64) float64 {
	if s.Bankroll <= 0 {
		return 0
	}
	return s.Fraction(probability, odds) * s.Bankroll
}
