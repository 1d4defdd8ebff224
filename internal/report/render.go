package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/probability"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ErrUnknownFormat is returned for an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	betStyle    = cellStyle.Foreground(lipgloss.Color("2"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var columns = []string{
	"Match", "League", "Market", "Outcome", "Odds", "Bookmaker",
	"P(model)", "P(implied)", "Edge", "Stake", "Exp. Profit", "Bet",
}

// Render writes rep in the given format. An empty report prints NoDataMessage.
func Render(w io.Writer, rep Report, format string) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return RenderTable(w, rep)
	case FormatJSON:
		return RenderJSON(w, rep)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// RenderTable writes rep as a bordered terminal table followed by a summary line
func RenderTable(w io.Writer, rep Report) error {
	if rep.Empty() {
		_, err := fmt.Fprintln(w, NoDataMessage)
		return err
	}

	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{
			r.Match,
			r.League,
			string(r.Market),
			outcomeLabel(r),
			r.Odds.String(),
			r.Bookmaker,
			r.ProbModel.StringFixed(probPlaces),
			r.ProbImplied.StringFixed(probPlaces),
			r.Edge.StringFixed(probPlaces),
			r.Stake.StringFixed(moneyPlaces),
			r.ExpectedProfit.StringFixed(moneyPlaces),
			betLabel(r.SuggestedBet),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rep.Rows) && rep.Rows[row].SuggestedBet:
				return betStyle
			default:
				return cellStyle
			}
		})

	footer := fmt.Sprintf("%d match(es), %d row(s), %d bet(s), total stake %s",
		rep.Matches, len(rep.Rows), rep.Bets, rep.TotalStake.StringFixed(moneyPlaces))
	if dropped := droppedSummary(rep.Dropped); dropped != "" {
		footer += "; dropped " + dropped
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, t.String(), footerStyle.Render(footer)))
	return err
}

// RenderJSON writes rep as indented JSON. Decimal values are emitted as numbers.
func RenderJSON(w io.Writer, rep Report) error {
	if rep.Rows == nil {
		rep.Rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport(rep))
}

// RenderCalibration writes a frequency calibration table
func RenderCalibration(w io.Writer, cal probability.CalibrationTable) error {
	fallback := make(map[models.Outcome]bool, len(cal.FallbackUsed))
	for _, o := range cal.FallbackUsed {
		fallback[o] = true
	}

	dist := cal.Distribution()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Outcome", "Count", "Probability", "Fallback").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, o := range models.CanonicalOutcomes {
		t.Row(
			o.Title(),
			strconv.Itoa(cal.Counts[i]),
			RoundProb(dist.Get(o)).StringFixed(probPlaces),
			betLabel(fallback[o]),
		)
	}

	footer := footerStyle.Render(fmt.Sprintf("%d historical fixture(s)", cal.SampleSize))
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, t.String(), footer))
	return err
}

func outcomeLabel(r Row) string {
	label := r.Outcome.Title()
	if label != "" && label == string(r.Outcome) {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	if r.Point != nil {
		label += " " + strconv.FormatFloat(*r.Point, 'f', -1, 64)
	}
	return label
}

func betLabel(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func droppedSummary(dropped map[string]int) string {
	reasons := make([]string, 0, len(dropped))
	for reason, n := range dropped {
		if n > 0 {
			reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	sort.Strings(reasons)
	return strings.Join(reasons, ", ")
}

type jsonRow struct {
	Row
	Odds           float64 `json:"odds"`
	ProbModel      float64 `json:"prob_model"`
	ProbImplied    float64 `json:"prob_implied"`
	Edge           float64 `json:"edge"`
	Stake          float64 `json:"stake_suggested"`
	ExpectedProfit float64 `json:"expected_profit"`
}

type jsonReportView struct {
	RunID      string         `json:"run_id"`
	Strategy   string         `json:"strategy"`
	Matches    int            `json:"matches"`
	Rows       []jsonRow      `json:"rows"`
	Bets       int            `json:"bets"`
	TotalStake float64        `json:"total_stake"`
	Dropped    map[string]int `json:"dropped,omitempty"`
}

func jsonReport(rep Report) jsonReportView {
	rows := make([]jsonRow, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, jsonRow{
			Row:            r,
			Odds:           number(r.Odds),
			ProbModel:      number(r.ProbModel),
			ProbImplied:    number(r.ProbImplied),
			Edge:           number(r.Edge),
			Stake:          number(r.Stake),
			ExpectedProfit: number(r.ExpectedProfit),
		})
	}
	return jsonReportView{
		RunID:      rep.RunID,
		Strategy:   rep.Strategy,
		Matches:    rep.Matches,
		Rows:       rows,
		Bets:       rep.Bets,
		TotalStake: number(rep.TotalStake),
		Dropped:    rep.Dropped,
	}
}

func number(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
