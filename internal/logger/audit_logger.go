package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for recommendations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunStarted logs the settings an evaluation run used.
func (al *AuditLogger) LogRunStarted(runID, strategy string, bankroll, kellyMultiplier, maxStakeFraction, minEdge float64) {
	al.WithFields(logrus.Fields{
		"run_id":             runID,
		"strategy":           strategy,
		"bankroll":           bankroll,
		"kelly_multiplier":   kellyMultiplier,
		"max_stake_fraction": maxStakeFraction,
		"min_edge":           minEdge,
	}).Info("Evaluation run started")
}

// LogRecommendation logs a bet recommendation.
func (al *AuditLogger) LogRecommendation(runID, matchID, match, bookmaker, outcome string, odds, edge, stake float64, commence time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":        runID,
		"match_id":      matchID,
		"match":         match,
		"bookmaker":     bookmaker,
		"outcome":       outcome,
		"odds":          odds,
		"edge":          edge,
		"stake":         stake,
		"commence_time": commence.Unix(),
	}).Info("Bet recommended")
}
