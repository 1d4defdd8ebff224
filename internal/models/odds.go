package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Market identifies a bookmaker market type
type Market string

const (
	MarketH2H     Market = "h2h"
	MarketTotals  Market = "totals"
	MarketSpreads Market = "spreads"
)

// ParseMarket normalizes a market key from a provider payload
func ParseMarket(key string) Market {
	return Market(strings.ToLower(strings.TrimSpace(key)))
}

// OddsQuote is a single decimal price offered by a bookmaker for a named outcome
type OddsQuote struct {
	Bookmaker   string   `json:"bookmaker" validate:"required"`
	Market      Market   `json:"market" validate:"required"`
	OutcomeName string   `json:"outcome_name" validate:"required"`
	Price       float64  `json:"price" validate:"gt=1"`
	Point       *float64 `json:"point,omitempty"`
}

// Validate checks the decimal odds convention
func (q OddsQuote) Validate() error {
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 1.0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, q.Price)
	}
	return nil
}

// GetImpliedProbability returns 1/price, or 0 for a non-positive price
func (q OddsQuote) GetImpliedProbability() float64 {
	if q.Price <= 0 {
		return 0
	}
	return 1.0 / q.Price
}

// MatchPayload is one fixture as delivered by the odds source, bookmakers nested
// below it in the bookmaker -> market -> outcome shape.
type MatchPayload struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	SportTitle   string             `json:"sport_title"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []BookmakerPayload `json:"bookmakers"`
}

// BookmakerPayload holds one bookmaker's markets for a fixture
type BookmakerPayload struct {
	Key        string          `json:"key"`
	Title      string          `json:"title"`
	LastUpdate time.Time       `json:"last_update"`
	Markets    []MarketPayload `json:"markets"`
}

// MarketPayload holds the priced outcomes of a single market
type MarketPayload struct {
	Key        string           `json:"key"`
	LastUpdate time.Time        `json:"last_update"`
	Outcomes   []OutcomePayload `json:"outcomes"`
}

// OutcomePayload is a named outcome with its decimal price. Price is a pointer so a
// missing price can be told apart from a zero one.
type OutcomePayload struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// MatchName returns the "Home vs Away" label used in output rows
func (p *MatchPayload) MatchName() string {
	return fmt.Sprintf("%s vs %s", p.HomeTeam, p.AwayTeam)
}

// League returns the competition label, preferring the human readable title
func (p *MatchPayload) League() string {
	if p.SportTitle != "" {
		return p.SportTitle
	}
	return p.SportKey
}

// BookmakerName returns the display title, falling back to the key
func (b *BookmakerPayload) BookmakerName() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Key
}
