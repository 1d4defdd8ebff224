// Package normalizer flattens raw bookmaker payloads into uniform outcome rows and
// per-bookmaker match records.
package normalizer

import (
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/models"
)

// Drop reasons reported in Stats
const (
	ReasonUnrecognizedOutcome = "unrecognized_outcome"
	ReasonInvalidPrice        = "invalid_price"
	ReasonMissingTeam         = "missing_team"
)

// drawAliases are outcome names treated as a draw in head-to-head markets
var drawAliases = map[string]bool{
	"draw": true,
	"tie":  true,
	"x":    true,
}

// Stats counts rows dropped during normalization, keyed by reason
type Stats struct {
	Rows    int
	Dropped map[string]int
}

func newStats() Stats {
	return Stats{Dropped: make(map[string]int)}
}

func (s *Stats) drop(reason string) {
	s.Dropped[reason]++
}

// TotalDropped returns the number of dropped rows across all reasons
func (s Stats) TotalDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// OddsNormalizer converts provider payloads to OutcomeRows and MatchRecords
type OddsNormalizer struct {
	logger *logrus.Entry
}

// NewOddsNormalizer creates a normalizer. A nil logger discards warnings.
func NewOddsNormalizer(logger *logrus.Logger) *OddsNormalizer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &OddsNormalizer{logger: logger.WithField("component", "normalizer")}
}

// Normalize flattens a payload into one row per (market, outcome, bookmaker).
// Malformed outcomes are dropped and counted; nothing here is fatal.
func (n *OddsNormalizer) Normalize(payload *models.MatchPayload) ([]models.OutcomeRow, Stats) {
	stats := newStats()
	if payload == nil {
		return nil, stats
	}

	home, away := sanitizeTeam(payload.HomeTeam), sanitizeTeam(payload.AwayTeam)
	if home == "" || away == "" {
		n.logger.WithField("match_id", payload.ID).Warn("Payload missing team names, skipping match")
		stats.drop(ReasonMissingTeam)
		return nil, stats
	}

	var rows []models.OutcomeRow
	for _, bookmaker := range payload.Bookmakers {
		for _, market := range bookmaker.Markets {
			marketKey := models.ParseMarket(market.Key)
			for _, outcome := range market.Outcomes {
				price, ok := validPrice(outcome.Price)
				if !ok {
					n.logger.WithFields(logrus.Fields{
						"match_id":  payload.ID,
						"bookmaker": bookmaker.Key,
						"market":    marketKey,
						"outcome":   outcome.Name,
					}).Warn("Dropping outcome with invalid price")
					stats.drop(ReasonInvalidPrice)
					continue
				}

				label, ok := n.label(marketKey, outcome.Name, home, away)
				if !ok {
					n.logger.WithFields(logrus.Fields{
						"match_id":  payload.ID,
						"bookmaker": bookmaker.Key,
						"outcome":   outcome.Name,
					}).Warn("Dropping unrecognized head-to-head outcome")
					stats.drop(ReasonUnrecognizedOutcome)
					continue
				}

				rows = append(rows, models.OutcomeRow{
					MatchID:      payload.ID,
					Match:        payload.MatchName(),
					HomeTeam:     payload.HomeTeam,
					AwayTeam:     payload.AwayTeam,
					League:       payload.League(),
					CommenceTime: payload.CommenceTime.UTC(),
					Market:       marketKey,
					Outcome:      label,
					OutcomeName:  outcome.Name,
					Point:        outcome.Point,
					Odds:         price,
					Bookmaker:    bookmaker.BookmakerName(),
				})
			}
		}
	}

	stats.Rows = len(rows)
	return rows, stats
}

// BuildRecords groups head-to-head rows into one MatchRecord per bookmaker, in the
// order bookmakers first appear. The first quote for an outcome wins.
func BuildRecords(payload *models.MatchPayload, rows []models.OutcomeRow) []models.MatchRecord {
	if payload == nil {
		return nil
	}

	index := make(map[string]int)
	var records []models.MatchRecord
	for _, row := range rows {
		if row.Market != models.MarketH2H || !row.Outcome.IsCanonical() {
			continue
		}
		i, ok := index[row.Bookmaker]
		if !ok {
			records = append(records, models.MatchRecord{
				ID:           payload.ID,
				HomeTeam:     payload.HomeTeam,
				AwayTeam:     payload.AwayTeam,
				League:       payload.League(),
				CommenceTime: payload.CommenceTime.UTC(),
				Market:       models.MarketH2H,
				Bookmaker:    row.Bookmaker,
			})
			i = len(records) - 1
			index[row.Bookmaker] = i
		}
		setOdds(&records[i], row.Outcome, row.Odds)
	}
	return records
}

// label maps a provider outcome name to the row's outcome label
func (n *OddsNormalizer) label(market models.Market, name, home, away string) (models.Outcome, bool) {
	cleaned := sanitizeTeam(name)
	if market != models.MarketH2H {
		return models.Outcome(strings.ToLower(cleaned)), cleaned != ""
	}
	switch {
	case strings.EqualFold(cleaned, home):
		return models.OutcomeHome, true
	case strings.EqualFold(cleaned, away):
		return models.OutcomeAway, true
	case drawAliases[strings.ToLower(cleaned)]:
		return models.OutcomeDraw, true
	default:
		return "", false
	}
}

func setOdds(record *models.MatchRecord, outcome models.Outcome, price float64) {
	switch outcome {
	case models.OutcomeHome:
		if record.HomeOdds == nil {
			record.HomeOdds = models.Float64Ptr(price)
		}
	case models.OutcomeDraw:
		if record.DrawOdds == nil {
			record.DrawOdds = models.Float64Ptr(price)
		}
	case models.OutcomeAway:
		if record.AwayOdds == nil {
			record.AwayOdds = models.Float64Ptr(price)
		}
	}
}

func validPrice(price *float64) (float64, bool) {
	if price == nil {
		return 0, false
	}
	p := *price
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 1.0 {
		return 0, false
	}
	return p, true
}

// sanitizeTeam trims and collapses internal whitespace
func sanitizeTeam(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
