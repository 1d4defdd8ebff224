package models

import "time"

// Decision is the bet selector verdict for a match
type Decision string

const (
	DecisionBet  Decision = "BET"
	DecisionSkip Decision = "SKIP"
)

// EVRow is an outcome annotated with model and market probabilities, edge and the
// suggested stake. Values are unrounded; rounding belongs to the presentation layer.
type EVRow struct {
	MatchID        string    `json:"match_id"`
	Match          string    `json:"match"`
	League         string    `json:"league"`
	CommenceTime   time.Time `json:"commence_time"`
	Market         Market    `json:"market"`
	Outcome        Outcome   `json:"outcome"`
	Point          *float64  `json:"point,omitempty"`
	Odds           float64   `json:"odds"`
	ProbModel      float64   `json:"prob_model"`
	ProbImplied    float64   `json:"prob_implied"`
	Edge           float64   `json:"edge"`
	StakeSuggested float64   `json:"stake_suggested"`
	SuggestedBet   bool      `json:"suggested_bet"`
	Bookmaker      string    `json:"bookmaker"`
}

// Recommendation is the best-bet summary for one bookmaker's view of a match
type Recommendation struct {
	MatchID   string   `json:"match_id"`
	Match     string   `json:"match"`
	Bookmaker string   `json:"bookmaker"`
	Decision  Decision `json:"decision"`
	Outcome   Outcome  `json:"outcome,omitempty"`
	Row       *EVRow   `json:"row,omitempty"`
}

// IsBet reports whether the recommendation carries a wager
func (r Recommendation) IsBet() bool {
	return r.Decision == DecisionBet
}
