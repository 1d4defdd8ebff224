package normalizer

import (
	"fmt"
	"time"

	"github.com/yourusername/value-better/internal/models"
)

// PayloadValidator reports problems with raw payloads. Problems are informational:
// the normalizer already drops bad rows on its own.
type PayloadValidator struct {
	maxAge time.Duration
}

// NewPayloadValidator creates a validator that flags fixtures that kicked off more
// than maxAge ago. Zero disables the age check.
func NewPayloadValidator(maxAge time.Duration) *PayloadValidator {
	return &PayloadValidator{maxAge: maxAge}
}

// ValidatePayload returns a list of human readable problems, empty when clean
func (v *PayloadValidator) ValidatePayload(payload *models.MatchPayload, now time.Time) []string {
	var problems []string
	if payload == nil {
		return []string{"payload is nil"}
	}

	if payload.ID == "" {
		problems = append(problems, "id is required")
	}
	if payload.HomeTeam == "" {
		problems = append(problems, "home_team is required")
	}
	if payload.AwayTeam == "" {
		problems = append(problems, "away_team is required")
	}
	if payload.HomeTeam != "" && payload.HomeTeam == payload.AwayTeam {
		problems = append(problems, fmt.Sprintf("home_team and away_team are identical: %s", payload.HomeTeam))
	}
	if payload.CommenceTime.IsZero() {
		problems = append(problems, "commence_time is required")
	} else if v.maxAge > 0 && payload.CommenceTime.Before(now.Add(-v.maxAge)) {
		problems = append(problems, fmt.Sprintf("fixture started %v ago", now.Sub(payload.CommenceTime).Round(time.Minute)))
	}
	if len(payload.Bookmakers) == 0 {
		problems = append(problems, "no bookmakers quoted")
	}

	for _, bookmaker := range payload.Bookmakers {
		for _, market := range bookmaker.Markets {
			for _, outcome := range market.Outcomes {
				if outcome.Price == nil {
					problems = append(problems, fmt.Sprintf("%s/%s/%s: missing price", bookmaker.Key, market.Key, outcome.Name))
					continue
				}
				quote := models.OddsQuote{
					Bookmaker:   bookmaker.Key,
					Market:      models.ParseMarket(market.Key),
					OutcomeName: outcome.Name,
					Price:       *outcome.Price,
				}
				if err := quote.Validate(); err != nil {
					problems = append(problems, fmt.Sprintf("%s/%s/%s: %v", bookmaker.Key, market.Key, outcome.Name, err))
				}
			}
		}
	}

	return problems
}
