package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOddsQuoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		wantErr bool
	}{
		{"evens", 2.0, false},
		{"short price", 1.01, false},
		{"exactly one", 1.0, true},
		{"below one", 0.5, true},
		{"zero", 0, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := OddsQuote{Bookmaker: "bk", Market: MarketH2H, OutcomeName: "Draw", Price: tt.price}.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidPrice))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistributionNormalized(t *testing.T) {
	d := Distribution{Home: 0.5, Draw: 0.3, Away: 0.4}
	assert.False(t, d.IsNormalized())

	n := d.Normalized()
	assert.True(t, n.IsNormalized())
	assert.InDelta(t, 0.5/1.2, n.Get(OutcomeHome), 1e-12)
	assert.Equal(t, 0.0, n.Get(Outcome("over")))

	zero := Distribution{}
	assert.Equal(t, zero, zero.Normalized())
}

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("draw")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDraw, o)
	assert.Equal(t, 1, o.Index())
	assert.Equal(t, "Draw", o.Title())

	_, err = ParseOutcome("Draw")
	assert.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestMatchRecordOdds(t *testing.T) {
	record := MatchRecord{HomeTeam: "A", AwayTeam: "B", HomeOdds: Float64Ptr(2.0), AwayOdds: Float64Ptr(4.0)}

	odds, ok := record.Odds(OutcomeHome)
	assert.True(t, ok)
	assert.Equal(t, 2.0, odds)

	_, ok = record.Odds(OutcomeDraw)
	assert.False(t, ok)
	assert.False(t, record.HasCompleteOdds())
	assert.Equal(t, "A vs B", record.MatchName())
}
