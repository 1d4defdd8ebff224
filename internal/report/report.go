// Package report turns engine results into ranked, rounded rows and renders them as a
// terminal table or JSON. Values are rounded here and nowhere else.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/strategy"
)

// NoDataMessage is printed when a pass produced no rows
const NoDataMessage = "No matches returned or data unavailable."

// DefaultTopN is the number of rows shown when no limit is configured
const DefaultTopN = 10

const (
	probPlaces  = 3
	moneyPlaces = 2
)

// RoundProb rounds a probability or edge for display
func RoundProb(v float64) decimal.Decimal {
	return round(v, probPlaces)
}

// RoundMoney rounds a stake or profit for display
func RoundMoney(v float64) decimal.Decimal {
	return round(v, moneyPlaces)
}

func round(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

// Row is one rounded output line. Odds keep the quoted precision.
type Row struct {
	MatchID        string          `json:"match_id"`
	Match          string          `json:"match"`
	League         string          `json:"league"`
	Kickoff        time.Time       `json:"commence_time"`
	Market         models.Market   `json:"market"`
	Outcome        models.Outcome  `json:"outcome"`
	Point          *float64        `json:"point,omitempty"`
	Odds           decimal.Decimal `json:"odds"`
	ProbModel      decimal.Decimal `json:"prob_model"`
	ProbImplied    decimal.Decimal `json:"prob_implied"`
	Edge           decimal.Decimal `json:"edge"`
	Stake          decimal.Decimal `json:"stake_suggested"`
	ExpectedProfit decimal.Decimal `json:"expected_profit"`
	SuggestedBet   bool            `json:"suggested_bet"`
	Bookmaker      string          `json:"bookmaker"`
}

// Options controls which rows a report keeps
type Options struct {
	TopN     int
	BetsOnly bool
}

// Report is the presentation view of one engine pass
type Report struct {
	RunID      string          `json:"run_id"`
	Strategy   string          `json:"strategy"`
	Matches    int             `json:"matches"`
	Rows       []Row           `json:"rows"`
	Bets       int             `json:"bets"`
	TotalStake decimal.Decimal `json:"total_stake"`
	Dropped    map[string]int  `json:"dropped,omitempty"`
}

// Empty reports whether there is nothing to show
func (r Report) Empty() bool {
	return len(r.Rows) == 0
}

// Build ranks the result rows by edge and keeps the top rows. With BetsOnly only the
// selected bet of each match and bookmaker is kept. A non-positive TopN keeps all.
func Build(result *strategy.Result, opts Options) Report {
	rep := Report{TotalStake: decimal.Zero}
	if result == nil {
		return rep
	}
	rep.RunID = result.RunID
	rep.Strategy = string(result.Strategy)
	rep.Matches = result.Matches
	rep.Dropped = result.Dropped

	rows := result.Rows
	if opts.BetsOnly {
		rows = make([]models.EVRow, 0, len(result.Recommendations))
		for _, rec := range result.Recommendations {
			if rec.IsBet() && rec.Row != nil {
				rows = append(rows, *rec.Row)
			}
		}
	}

	for _, ev := range Rank(rows, opts.TopN) {
		row := NewRow(ev)
		if ev.SuggestedBet {
			rep.Bets++
			rep.TotalStake = rep.TotalStake.Add(row.Stake)
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

// Rank returns a copy of rows sorted by edge descending, truncated to topN when it is
// positive. Ties keep their input order.
func Rank(rows []models.EVRow, topN int) []models.EVRow {
	ranked := append([]models.EVRow(nil), rows...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return edgeKey(ranked[i].Edge) > edgeKey(ranked[j].Edge)
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func edgeKey(edge float64) float64 {
	if math.IsNaN(edge) {
		return math.Inf(-1)
	}
	return edge
}

// NewRow rounds an EVRow for display
func NewRow(ev models.EVRow) Row {
	return Row{
		MatchID:        ev.MatchID,
		Match:          ev.Match,
		League:         ev.League,
		Kickoff:        ev.CommenceTime,
		Market:         ev.Market,
		Outcome:        ev.Outcome,
		Point:          ev.Point,
		Odds:           decimal.NewFromFloat(ev.Odds),
		ProbModel:      RoundProb(ev.ProbModel),
		ProbImplied:    RoundProb(ev.ProbImplied),
		Edge:           RoundProb(ev.Edge),
		Stake:          RoundMoney(ev.StakeSuggested),
		ExpectedProfit: RoundMoney(strategy.ExpectedProfit(ev.ProbModel, ev.Odds, ev.StakeSuggested)),
		SuggestedBet:   ev.SuggestedBet,
		Bookmaker:      ev.Bookmaker,
	}
}
