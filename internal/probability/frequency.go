package probability

import (
	"math"

	"github.com/yourusername/value-better/internal/models"
)

// DefaultFallback is applied to outcomes that never occur in the historical sample
var DefaultFallback = models.Distribution{Home: 0.33, Draw: 0.33, Away: 0.34}

// CalibrationTable holds the historical outcome frequencies for a run. It is built once
// and read-only afterwards.
type CalibrationTable struct {
	Home         float64          `json:"home"`
	Draw         float64          `json:"draw"`
	Away         float64          `json:"away"`
	SampleSize   int              `json:"sample_size"`
	Counts       [3]int           `json:"counts"`
	FallbackUsed []models.Outcome `json:"fallback_used,omitempty"`
}

// Distribution returns the calibrated probabilities
func (t CalibrationTable) Distribution() models.Distribution {
	return models.Distribution{Home: t.Home, Draw: t.Draw, Away: t.Away}
}

// Calibrate computes the relative frequency of each result. An outcome with no
// occurrences takes its fallback value and the table is renormalised, so no entry is
// ever zero. Fixtures without a canonical result are ignored.
func Calibrate(fixtures []models.HistoricalFixture, fallback models.Distribution) CalibrationTable {
	if !validFallback(fallback) {
		fallback = DefaultFallback
	}

	var table CalibrationTable
	for _, f := range fixtures {
		if i := f.Result.Index(); i >= 0 {
			table.Counts[i]++
			table.SampleSize++
		}
	}

	fb := fallback.Values()
	var values [3]float64
	for i, outcome := range models.CanonicalOutcomes {
		if table.Counts[i] == 0 {
			values[i] = fb[i]
			table.FallbackUsed = append(table.FallbackUsed, outcome)
			continue
		}
		values[i] = float64(table.Counts[i]) / float64(table.SampleSize)
	}

	d := models.DistributionFromValues(values).Normalized()
	table.Home, table.Draw, table.Away = d.Home, d.Draw, d.Away
	return table
}

func validFallback(d models.Distribution) bool {
	for _, v := range d.Values() {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FrequencyEstimator returns the same calibrated distribution for every match
type FrequencyEstimator struct {
	table CalibrationTable
}

// NewFrequencyEstimator wraps a calibration table
func NewFrequencyEstimator(table CalibrationTable) *FrequencyEstimator {
	return &FrequencyEstimator{table: table}
}

// Strategy implements Estimator
func (e *FrequencyEstimator) Strategy() Strategy {
	return StrategyFrequency
}

// Table returns the underlying calibration table
func (e *FrequencyEstimator) Table() CalibrationTable {
	return e.table
}

// Estimate implements Estimator. The record is not consulted.
func (e *FrequencyEstimator) Estimate(models.MatchRecord) (models.Distribution, error) {
	return e.table.Distribution(), nil
}
