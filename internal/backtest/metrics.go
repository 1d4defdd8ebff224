package backtest

import (
	"math"
	"sort"
)

// Metrics summarises a replay
type Metrics struct {
	TotalBets      int     `json:"total_bets"`
	WinningBets    int     `json:"winning_bets"`
	LosingBets     int     `json:"losing_bets"`
	WinRate        float64 `json:"win_rate"`
	TotalStaked    float64 `json:"total_staked"`
	NetProfit      float64 `json:"net_profit"`
	ExpectedProfit float64 `json:"expected_profit"`
	ROI            float64 `json:"roi"`
	TotalReturn    float64 `json:"total_return"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	ProfitFactor   float64 `json:"profit_factor"`
	AverageWin     float64 `json:"average_win"`
	AverageLoss    float64 `json:"average_loss"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
	Expectancy     float64 `json:"expectancy"`
	ValueAtRisk95  float64 `json:"var_95"`
}

// CalculateMetrics derives replay metrics from the settled bets and the equity curve
func CalculateMetrics(bets []SettledBet, curve EquityCurve, initial float64) Metrics {
	m := Metrics{TotalBets: len(bets)}

	for _, b := range bets {
		m.TotalStaked += b.Stake
		m.NetProfit += b.ProfitLoss
		m.ExpectedProfit += b.ExpectedProfit
	}
	if m.TotalStaked > 0 {
		m.ROI = m.NetProfit / m.TotalStaked
	}
	if initial > 0 && len(curve) > 0 {
		m.TotalReturn = (curve.Final() - initial) / initial
	}

	m.MaxDrawdown = curve.MaxDrawdown()
	returns := curve.GetReturns()
	m.SharpeRatio = calculateSharpeRatio(returns)
	m.ValueAtRisk95 = calculateVaR(returns, 0.95)

	m.WinningBets, m.LosingBets, m.AverageWin, m.AverageLoss, m.LargestWin, m.LargestLoss = calculateBetStats(bets)
	m.WinRate = calculateWinRate(m.WinningBets, m.TotalBets)
	m.ProfitFactor = calculateProfitFactor(bets)
	if m.TotalBets > 0 {
		m.Expectancy = m.NetProfit / float64(m.TotalBets)
	}
	return m
}

// calculateSharpeRatio is the mean per-bet return over its deviation, not annualised
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std
}

func calculateProfitFactor(bets []SettledBet) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, bet := range bets {
		if bet.ProfitLoss > 0 {
			grossProfit += bet.ProfitLoss
		} else {
			grossLoss += math.Abs(bet.ProfitLoss)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}

func calculateVaR(returns []float64, level float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64{}, returns...)
	sort.Float64s(sorted)
	index := int(math.Floor((1.0 - level) * float64(len(sorted))))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func calculateBetStats(bets []SettledBet) (int, int, float64, float64, float64, float64) {
	wins := 0
	losses := 0
	winSum := 0.0
	lossSum := 0.0
	largestWin := 0.0
	largestLoss := 0.0
	for _, bet := range bets {
		pl := bet.ProfitLoss
		if pl > 0 {
			wins++
			winSum += pl
			if pl > largestWin {
				largestWin = pl
			}
		} else if pl < 0 {
			losses++
			lossSum += pl
			if pl < largestLoss {
				largestLoss = pl
			}
		}
	}

	avgWin := 0.0
	avgLoss := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, largestWin, largestLoss
}

func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
