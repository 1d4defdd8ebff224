package backtest

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// EquityPoint is the bankroll after a settled bet
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
}

// EquityCurve is the bankroll over the replay, starting with the initial bankroll
type EquityCurve []EquityPoint

// GetReturns calculates per-bet returns from the curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (e[i].Value-prev)/prev)
	}
	return returns
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction of the peak
func (e EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	for _, p := range e {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

// Final returns the last bankroll value
func (e EquityCurve) Final() float64 {
	if len(e) == 0 {
		return 0
	}
	return e[len(e)-1].Value
}

// WriteCSV exports the curve with a header row
func (e EquityCurve) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "value", "drawdown"}); err != nil {
		return err
	}
	for _, p := range e {
		if err := cw.Write([]string{
			p.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.Value, 'f', 6, 64),
			strconv.FormatFloat(p.Drawdown, 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// appendPoint adds a point, deriving its drawdown from the running peak
func (e EquityCurve) appendPoint(t time.Time, value float64) EquityCurve {
	peak := value
	for _, p := range e {
		if p.Value > peak {
			peak = p.Value
		}
	}
	dd := 0.0
	if peak > 0 {
		dd = (peak - value) / peak
	}
	return append(e, EquityPoint{Time: t, Value: value, Drawdown: dd})
}
