package models

import "time"

// HistoricalFixture is a completed match with the odds quoted before kick-off and the
// realised result.
type HistoricalFixture struct {
	HomeTeam string    `db:"home_team" json:"home_team"`
	AwayTeam string    `db:"away_team" json:"away_team"`
	League   string    `db:"league" json:"league"`
	Kickoff  time.Time `db:"kickoff" json:"kickoff"`
	HomeOdds *float64  `db:"home_odds" json:"home_odds"`
	DrawOdds *float64  `db:"draw_odds" json:"draw_odds"`
	AwayOdds *float64  `db:"away_odds" json:"away_odds"`
	Result   Outcome   `db:"result" json:"result" validate:"required,oneof=home draw away"`
}

// Record converts the fixture into a MatchRecord for estimators that read odds
func (f HistoricalFixture) Record() MatchRecord {
	return MatchRecord{
		HomeTeam:     f.HomeTeam,
		AwayTeam:     f.AwayTeam,
		League:       f.League,
		CommenceTime: f.Kickoff,
		Market:       MarketH2H,
		HomeOdds:     f.HomeOdds,
		DrawOdds:     f.DrawOdds,
		AwayOdds:     f.AwayOdds,
	}
}
