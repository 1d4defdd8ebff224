package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yourusername/value-better/internal/report"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	wonStyle    = cellStyle.Foreground(lipgloss.Color("2"))
	lostStyle   = cellStyle.Foreground(lipgloss.Color("1"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Render writes the replay in the given format
func Render(w io.Writer, res *Result, format string) error {
	switch strings.ToLower(format) {
	case report.FormatTable, "":
		return RenderTable(w, res)
	case report.FormatJSON:
		return RenderJSON(w, res)
	default:
		return fmt.Errorf("%w: %s", report.ErrUnknownFormat, format)
	}
}

// RenderJSON writes the replay as indented JSON
func RenderJSON(w io.Writer, res *Result) error {
	out := *res
	if out.Bets == nil {
		out.Bets = []SettledBet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// RenderTable writes the settled bets followed by a metrics summary
func RenderTable(w io.Writer, res *Result) error {
	var b strings.Builder

	if len(res.Bets) > 0 {
		bets := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers("Kickoff", "Match", "Bet", "Result", "Odds", "P(model)", "Edge", "Stake", "P/L", "Bankroll").
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case row >= 0 && row < len(res.Bets) && res.Bets[row].Won:
					return wonStyle
				default:
					return lostStyle
				}
			})
		for _, bet := range res.Bets {
			bets.Row(
				bet.Kickoff.UTC().Format("2006-01-02"),
				bet.Match,
				bet.Outcome.Title(),
				bet.Result.Title(),
				strconv.FormatFloat(bet.Odds, 'f', -1, 64),
				report.RoundProb(bet.Probability).StringFixed(3),
				report.RoundProb(bet.Edge).StringFixed(3),
				report.RoundMoney(bet.Stake).StringFixed(2),
				report.RoundMoney(bet.ProfitLoss).StringFixed(2),
				report.RoundMoney(bet.BankrollAfter).StringFixed(2),
			)
		}
		b.WriteString(bets.String())
		b.WriteString("\n")
	}

	m := res.Metrics
	summary := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Metric", "Value").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(
			[]string{"Strategy", string(res.Strategy)},
			[]string{"Fixtures (train/replay)", strconv.Itoa(res.TrainFixtures) + "/" + strconv.Itoa(res.TestFixtures)},
			[]string{"Bets", strconv.Itoa(m.TotalBets)},
			[]string{"Win rate", percent(m.WinRate)},
			[]string{"Staked", report.RoundMoney(m.TotalStaked).StringFixed(2)},
			[]string{"Net profit", report.RoundMoney(m.NetProfit).StringFixed(2)},
			[]string{"Expected profit", report.RoundMoney(m.ExpectedProfit).StringFixed(2)},
			[]string{"ROI", percent(m.ROI)},
			[]string{"Total return", percent(m.TotalReturn)},
			[]string{"Max drawdown", percent(m.MaxDrawdown)},
			[]string{"Profit factor", report.RoundMoney(m.ProfitFactor).StringFixed(2)},
		)
	b.WriteString(summary.String())

	if skipped := skippedSummary(res.Skipped); skipped != "" {
		b.WriteString("\nskipped " + skipped)
	}
	_, err := fmt.Fprintln(w, b.String())
	return err
}

func percent(v float64) string {
	return report.RoundMoney(v*100).StringFixed(2) + "%"
}

func skippedSummary(skipped map[string]int) string {
	reasons := []string{SkipNoOdds, SkipInvalidOdds, SkipUnknownCategory, SkipNoValue, SkipBankrupt}
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if n := skipped[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	return strings.Join(parts, ", ")
}
