package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/config"
	"github.com/yourusername/value-better/internal/logger"
)

// SourceType represents the type of odds source
type SourceType string

const (
	// TheOddsAPISourceType fetches live odds over HTTP
	TheOddsAPISourceType SourceType = "the_odds_api"
	// FileSourceType replays a saved response
	FileSourceType SourceType = "file"
)

// Factory creates OddsSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config config.OddsAPIConfig
}

// NewFactory creates a new odds source factory
func NewFactory(cfg config.OddsAPIConfig, log *logrus.Logger) *Factory {
	if log == nil {
		log = logger.Discard()
	}
	return &Factory{
		logger: log,
		config: cfg,
	}
}

// HTTPClientConfig derives the HTTP client settings from configuration
func (f *Factory) HTTPClientConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	if f.config.TimeoutSeconds > 0 {
		cfg.Timeout = f.config.Timeout()
	}
	cfg.MaxRetries = f.config.MaxRetries
	if f.config.RateLimit > 0 {
		cfg.RateLimit = f.config.RateLimit
	}
	if f.config.CircuitBreakerMax > 0 {
		cfg.CircuitBreakerMax = f.config.CircuitBreakerMax
	}
	if f.config.CooldownSeconds > 0 {
		cfg.CircuitBreakerCooldown = f.config.CircuitBreakerCooldown()
	}
	return cfg
}

// NewOddsSource creates the configured odds source
func (f *Factory) NewOddsSource() (OddsSource, error) {
	switch SourceType(f.config.Provider) {
	case TheOddsAPISourceType:
		if f.config.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		httpClient := NewRateLimitedHTTPClient(f.HTTPClientConfig(), f.logger)
		cache := NewOddsCache(f.config.CacheTTL())
		f.logger.WithField("source", f.config.Provider).Debug("Created odds source")
		return NewTheOddsAPIClient(httpClient, f.config.BaseURL, f.config.APIKey, true, cache, f.logger), nil

	case FileSourceType:
		if f.config.FixturePath == "" {
			return nil, fmt.Errorf("fixture_path is required for the file source")
		}
		return NewFileOddsSource(f.config.FixturePath), nil

	default:
		return nil, fmt.Errorf("unknown odds source: %s", f.config.Provider)
	}
}

// Query builds the fetch query from configuration
func (f *Factory) Query() Query {
	return Query{
		Sport:      f.config.Sport,
		Regions:    f.config.Regions,
		Markets:    f.config.Markets,
		OddsFormat: f.config.OddsFormat,
	}
}

// ListAvailableSources returns the supported source types
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{TheOddsAPISourceType, FileSourceType}
}
