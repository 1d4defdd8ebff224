package normalizer

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-better/internal/models"
)

func price(v float64) *float64 {
	return &v
}

func samplePayload() *models.MatchPayload {
	return &models.MatchPayload{
		ID:           "evt-1",
		SportKey:     "soccer_epl",
		SportTitle:   "EPL",
		CommenceTime: time.Date(2026, 10, 24, 14, 0, 0, 0, time.UTC),
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers: []models.BookmakerPayload{
			{
				Key:   "williamhill",
				Title: "William Hill",
				Markets: []models.MarketPayload{
					{
						Key: "h2h",
						Outcomes: []models.OutcomePayload{
							{Name: "Arsenal", Price: price(2.0)},
							{Name: "Draw", Price: price(3.5)},
							{Name: "Chelsea", Price: price(4.0)},
						},
					},
					{
						Key: "totals",
						Outcomes: []models.OutcomePayload{
							{Name: "Over", Price: price(1.9), Point: price(2.5)},
							{Name: "Under", Price: price(1.95), Point: price(2.5)},
						},
					},
				},
			},
			{
				Key:   "betfair",
				Title: "Betfair",
				Markets: []models.MarketPayload{
					{
						Key: "h2h",
						Outcomes: []models.OutcomePayload{
							{Name: " arsenal ", Price: price(2.1)},
							{Name: "Chelsea", Price: price(3.9)},
						},
					},
				},
			},
		},
	}
}

func TestNormalizeMapsHeadToHeadLabels(t *testing.T) {
	n := NewOddsNormalizer(nil)
	rows, stats := n.Normalize(samplePayload())

	require.Len(t, rows, 7)
	assert.Equal(t, 7, stats.Rows)
	assert.Equal(t, 0, stats.TotalDropped())

	assert.Equal(t, models.OutcomeHome, rows[0].Outcome)
	assert.Equal(t, models.OutcomeDraw, rows[1].Outcome)
	assert.Equal(t, models.OutcomeAway, rows[2].Outcome)
	assert.Equal(t, "Arsenal vs Chelsea", rows[0].Match)
	assert.Equal(t, "EPL", rows[0].League)
	assert.Equal(t, "William Hill", rows[0].Bookmaker)

	assert.Equal(t, models.MarketTotals, rows[3].Market)
	assert.Equal(t, models.Outcome("over"), rows[3].Outcome)
	require.NotNil(t, rows[3].Point)
	assert.Equal(t, 2.5, *rows[3].Point)

	assert.Equal(t, models.OutcomeHome, rows[5].Outcome, "team names match case-insensitively after trimming")
}

func TestNormalizeDropsUnrecognizedOutcomeWithWarning(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	payload := samplePayload()
	payload.Bookmakers[0].Markets[0].Outcomes = append(payload.Bookmakers[0].Markets[0].Outcomes,
		models.OutcomePayload{Name: "Tottenham", Price: price(5.0)})

	rows, stats := NewOddsNormalizer(log).Normalize(payload)
	assert.Len(t, rows, 7)
	assert.Equal(t, 1, stats.Dropped[ReasonUnrecognizedOutcome])

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))[0], &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "normalizer", entry["component"])
	assert.Equal(t, "Tottenham", entry["outcome"])
}

func TestNormalizeDropsInvalidPrices(t *testing.T) {
	payload := samplePayload()
	payload.Bookmakers[0].Markets[0].Outcomes[0].Price = nil
	payload.Bookmakers[0].Markets[0].Outcomes[1].Price = price(1.0)
	payload.Bookmakers[0].Markets[0].Outcomes[2].Price = price(0)

	rows, stats := NewOddsNormalizer(nil).Normalize(payload)
	assert.Len(t, rows, 4)
	assert.Equal(t, 3, stats.Dropped[ReasonInvalidPrice])
}

func TestNormalizeMissingDataIsEmptyNotError(t *testing.T) {
	n := NewOddsNormalizer(nil)

	rows, stats := n.Normalize(nil)
	assert.Empty(t, rows)
	assert.Equal(t, 0, stats.TotalDropped())

	payload := samplePayload()
	payload.Bookmakers = nil
	rows, stats = n.Normalize(payload)
	assert.Empty(t, rows)
	assert.Equal(t, 0, stats.TotalDropped())

	payload = samplePayload()
	payload.AwayTeam = "  "
	rows, stats = n.Normalize(payload)
	assert.Empty(t, rows)
	assert.Equal(t, 1, stats.Dropped[ReasonMissingTeam])
}

func TestBuildRecordsPerBookmaker(t *testing.T) {
	payload := samplePayload()
	rows, _ := NewOddsNormalizer(nil).Normalize(payload)

	records := BuildRecords(payload, rows)
	require.Len(t, records, 2)

	wh := records[0]
	assert.Equal(t, "William Hill", wh.Bookmaker)
	assert.True(t, wh.HasCompleteOdds())
	home, ok := wh.Odds(models.OutcomeHome)
	require.True(t, ok)
	assert.Equal(t, 2.0, home)

	bf := records[1]
	assert.Equal(t, "Betfair", bf.Bookmaker)
	assert.Nil(t, bf.DrawOdds, "missing outcome stays absent, never zero")
	_, ok = bf.Odds(models.OutcomeDraw)
	assert.False(t, ok)
}

func TestBuildRecordsFirstQuoteWins(t *testing.T) {
	payload := samplePayload()
	payload.Bookmakers[0].Markets[0].Outcomes = append(payload.Bookmakers[0].Markets[0].Outcomes,
		models.OutcomePayload{Name: "Arsenal", Price: price(9.0)})

	rows, _ := NewOddsNormalizer(nil).Normalize(payload)
	records := BuildRecords(payload, rows)
	home, _ := records[0].Odds(models.OutcomeHome)
	assert.Equal(t, 2.0, home)
}

func TestPayloadValidator(t *testing.T) {
	v := NewPayloadValidator(6 * time.Hour)
	now := time.Date(2026, 10, 24, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, v.ValidatePayload(samplePayload(), now))

	payload := samplePayload()
	payload.HomeTeam = ""
	payload.Bookmakers[0].Markets[0].Outcomes[1].Price = price(0.9)
	problems := v.ValidatePayload(payload, now)
	assert.Contains(t, problems, "home_team is required")
	assert.Len(t, problems, 2)

	stale := samplePayload()
	stale.CommenceTime = now.Add(-48 * time.Hour)
	assert.Len(t, v.ValidatePayload(stale, now), 1)
}
