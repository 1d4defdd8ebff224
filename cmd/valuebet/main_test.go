package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-better/internal/datasource"
	"github.com/yourusername/value-better/internal/report"
)

const oddsFixture = "../../internal/datasource/testdata/epl_odds.json"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VALUE_BETTER_ODDS_API_KEY", "")
	t.Setenv("VALUE_BETTER_APP_LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", "testdata/absent.yaml", "--env-file", "testdata/absent.env"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScoreSuggestsHomeOnSampleHistory(t *testing.T) {
	out, err := execute(t, "score", oddsFixture, "--format", "json", "--bets-only")
	require.NoError(t, err)

	var decoded struct {
		Strategy string `json:"strategy"`
		Matches  int    `json:"matches"`
		Bets     int    `json:"bets"`
		Rows     []struct {
			Outcome string  `json:"outcome"`
			Edge    float64 `json:"edge"`
			Stake   float64 `json:"stake_suggested"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "frequency", decoded.Strategy)
	assert.Equal(t, 1, decoded.Matches)
	require.Len(t, decoded.Rows, 1)
	// Home and away tie on edge; the canonical order picks home.
	assert.Equal(t, "home", decoded.Rows[0].Outcome)
	assert.Equal(t, 0.143, decoded.Rows[0].Edge)
	assert.Equal(t, 142.86, decoded.Rows[0].Stake)
}

func TestScoreTableListsAllMarkets(t *testing.T) {
	out, err := execute(t, "score", oddsFixture, "--top=-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Arsenal vs Chelsea")
	assert.Contains(t, out, "Over 2.5")
	assert.Contains(t, out, "1 match(es), 5 row(s), 1 bet(s)")
}

func TestScoreDevigFindsNoValue(t *testing.T) {
	out, err := execute(t, "score", oddsFixture, "--strategy", "devig", "--bets-only")
	require.NoError(t, err)
	assert.Equal(t, report.NoDataMessage+"\n", out)
}

func TestScoreRejectsUnknownStrategy(t *testing.T) {
	_, err := execute(t, "score", oddsFixture, "--strategy", "astrology")
	assert.Error(t, err)
}

func TestScanRequiresAPIKey(t *testing.T) {
	_, err := execute(t, "scan")
	require.Error(t, err)
	assert.ErrorIs(t, err, datasource.ErrMissingAPIKey)
}

func TestHistoryCommandsRunWithoutAPIKey(t *testing.T) {
	for _, args := range [][]string{
		{"calibrate"},
		{"backtest", "--format", "json"},
	} {
		_, err := execute(t, args...)
		assert.NoError(t, err, args[0])
	}
}

func TestCalibrate(t *testing.T) {
	out, err := execute(t, "calibrate", "--strategy", "classifier")
	require.NoError(t, err)

	assert.Contains(t, out, "7 historical fixture(s)")
	assert.Contains(t, out, "classifier: 7 samples")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "valuebet dev")
}

func TestBacktestOnSampleHistory(t *testing.T) {
	curve := filepath.Join(t.TempDir(), "curve.csv")
	out, err := execute(t, "backtest", "--strategy", "devig", "--format", "json", "--curve", curve)
	require.NoError(t, err)

	var decoded struct {
		Strategy      string `json:"strategy"`
		TrainFixtures int    `json:"train_fixtures"`
		TestFixtures  int    `json:"test_fixtures"`
		Bets          []any  `json:"bets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "devig", decoded.Strategy)
	assert.Equal(t, 3, decoded.TrainFixtures)
	assert.Equal(t, 4, decoded.TestFixtures)
	assert.Empty(t, decoded.Bets)

	data, err := os.ReadFile(curve)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,value,drawdown\n"))
}

func TestBacktestRejectsTrainFraction(t *testing.T) {
	_, err := execute(t, "backtest", "--train-fraction", "1")
	assert.Error(t, err)
}
