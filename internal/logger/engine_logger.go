package logger

import (
	"github.com/sirupsen/logrus"
)

// EngineLogger provides dedicated logging for value engine passes.
type EngineLogger struct {
	*logrus.Entry
}

// NewEngineLogger creates a new engine logger.
func NewEngineLogger(baseLogger *logrus.Logger) *EngineLogger {
	return &EngineLogger{
		Entry: baseLogger.WithField("component", "engine"),
	}
}

// LogEvaluation logs an evaluation pass summary.
func (el *EngineLogger) LogEvaluation(runID, strategy string, matches, rows, bets, dropped int, durationMs float64) {
	el.WithFields(logrus.Fields{
		"run_id":                 runID,
		"strategy":               strategy,
		"matches_evaluated":      matches,
		"rows_scored":            rows,
		"bets_recommended":       bets,
		"rows_dropped":           dropped,
		"evaluation_duration_ms": durationMs,
	}).Info("Value evaluation completed")
}

// LogDecision logs a bet selector decision for one bookmaker's view of a match.
func (el *EngineLogger) LogDecision(runID, matchID, bookmaker, decision, outcome string, edge, kellyFraction, stake, odds float64) {
	el.WithFields(logrus.Fields{
		"run_id":         runID,
		"match_id":       matchID,
		"bookmaker":      bookmaker,
		"decision":       decision,
		"outcome":        outcome,
		"edge":           edge,
		"kelly_fraction": kellyFraction,
		"stake":          stake,
		"odds":           odds,
	}).Debug("Bet decision made")
}

// LogSkippedRecord logs a record that could not be estimated.
func (el *EngineLogger) LogSkippedRecord(runID, matchID, bookmaker, reason string, err error) {
	el.WithFields(logrus.Fields{
		"run_id":    runID,
		"match_id":  matchID,
		"bookmaker": bookmaker,
		"reason":    reason,
	}).WithError(err).Warn("Skipping match record")
}

// LogCalibration logs the calibration table built for a run.
func (el *EngineLogger) LogCalibration(sampleSize int, home, draw, away float64, fallbackUsed []string) {
	el.WithFields(logrus.Fields{
		"sample_size":   sampleSize,
		"home":          home,
		"draw":          draw,
		"away":          away,
		"fallback_used": fallbackUsed,
	}).Info("Calibration table built")
}

// LogClassifierTrained logs classifier training.
func (el *EngineLogger) LogClassifierTrained(samples, homeTeams, awayTeams int, durationMs float64) {
	el.WithFields(logrus.Fields{
		"samples":          samples,
		"home_teams":       homeTeams,
		"away_teams":       awayTeams,
		"training_time_ms": durationMs,
	}).Info("Classifier trained")
}
