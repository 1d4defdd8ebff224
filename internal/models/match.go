package models

import "time"

// MatchRecord is the per-bookmaker head-to-head view of a fixture. Odds for an outcome
// the bookmaker did not quote are nil, never zero.
type MatchRecord struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	League       string    `json:"league"`
	CommenceTime time.Time `json:"commence_time"`
	Market       Market    `json:"market"`
	Bookmaker    string    `json:"bookmaker"`
	HomeOdds     *float64  `json:"home_odds"`
	DrawOdds     *float64  `json:"draw_odds"`
	AwayOdds     *float64  `json:"away_odds"`
}

// Odds returns the quoted price for an outcome and whether it is present
func (m MatchRecord) Odds(outcome Outcome) (float64, bool) {
	var p *float64
	switch outcome {
	case OutcomeHome:
		p = m.HomeOdds
	case OutcomeDraw:
		p = m.DrawOdds
	case OutcomeAway:
		p = m.AwayOdds
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// HasCompleteOdds reports whether all three outcomes are quoted
func (m MatchRecord) HasCompleteOdds() bool {
	return m.HomeOdds != nil && m.DrawOdds != nil && m.AwayOdds != nil
}

// MatchName returns the "Home vs Away" label
func (m MatchRecord) MatchName() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

// OutcomeRow is one flat (match, market, outcome, odds, bookmaker) row produced by the
// normalizer. Outcome holds a canonical label for h2h markets and the lowercased
// outcome name for every other market.
type OutcomeRow struct {
	MatchID      string    `json:"match_id"`
	Match        string    `json:"match"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	League       string    `json:"league"`
	CommenceTime time.Time `json:"commence_time"`
	Market       Market    `json:"market"`
	Outcome      Outcome   `json:"outcome"`
	OutcomeName  string    `json:"outcome_name"`
	Point        *float64  `json:"point,omitempty"`
	Odds         float64   `json:"odds"`
	Bookmaker    string    `json:"bookmaker"`
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
