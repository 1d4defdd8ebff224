package logger

import (
	"github.com/sirupsen/logrus"
)

// FetchLogger provides dedicated logging for odds source calls.
type FetchLogger struct {
	*logrus.Entry
}

// NewFetchLogger creates a new fetch logger for the named source.
func NewFetchLogger(baseLogger *logrus.Logger, source string) *FetchLogger {
	return &FetchLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "datasource",
			"source":    source,
		}),
	}
}

// LogFetch logs a completed odds fetch.
func (fl *FetchLogger) LogFetch(sport string, markets []string, matches int, cacheHit bool, latencyMs float64) {
	fl.WithFields(logrus.Fields{
		"sport":      sport,
		"markets":    markets,
		"matches":    matches,
		"cache_hit":  cacheHit,
		"latency_ms": latencyMs,
	}).Info("Odds fetch completed")
}

// LogQuota logs the provider request quota.
func (fl *FetchLogger) LogQuota(remaining, used string) {
	fl.WithFields(logrus.Fields{
		"requests_remaining": remaining,
		"requests_used":      used,
	}).Debug("Odds provider quota")
}

// LogFetchError logs a failed odds fetch.
func (fl *FetchLogger) LogFetchError(sport string, err error) {
	fl.WithField("sport", sport).WithError(err).Error("Odds fetch failed")
}
