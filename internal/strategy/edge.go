// Package strategy scores outcomes against quoted odds, picks the best value bet per
// match and sizes stakes with fractional Kelly.
package strategy

import (
	"math"

	"github.com/yourusername/value-better/internal/models"
)

// Score is the edge of a single (probability, odds) pair
type Score struct {
	Implied    float64
	Edge       float64
	Degenerate bool
}

// ScoreOutcome returns the implied probability and edge p*odds - 1. Odds that cannot be
// inverted give an implied probability of 0 and are flagged degenerate.
func ScoreOutcome(probability, odds float64) Score {
	if odds <= 0 || math.IsNaN(odds) || math.IsInf(odds, 0) {
		return Score{Implied: 0, Edge: probability*odds - 1.0, Degenerate: true}
	}
	return Score{
		Implied: 1.0 / odds,
		Edge:    probability*odds - 1.0,
	}
}

// ExpectedProfit returns the expected profit of staking stake at odds
func ExpectedProfit(probability, odds, stake float64) float64 {
	if probability <= 0 || odds <= 1 || stake <= 0 {
		return 0
	}
	winProfit := (odds - 1.0) * stake
	loss := stake
	return probability*winProfit - (1.0-probability)*loss
}

// NormalizeProbability clamps p into [0,1], mapping NaN and Inf to 0
func NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ScoreRow annotates an outcome row with a model probability. The stake is sized only
// when the edge clears minEdge.
func ScoreRow(row models.OutcomeRow, probability float64, sizer Sizer, minEdge float64) models.EVRow {
	probability = NormalizeProbability(probability)
	score := ScoreOutcome(probability, row.Odds)

	ev := models.EVRow{
		MatchID:      row.MatchID,
		Match:        row.Match,
		League:       row.League,
		CommenceTime: row.CommenceTime,
		Market:       row.Market,
		Outcome:      row.Outcome,
		Point:        row.Point,
		Odds:         row.Odds,
		ProbModel:    probability,
		ProbImplied:  score.Implied,
		Edge:         score.Edge,
		Bookmaker:    row.Bookmaker,
	}
	if !score.Degenerate && score.Edge > 0 && score.Edge >= minEdge {
		ev.StakeSuggested = sizer.Stake(probability, row.Odds)
	}
	return ev
}
