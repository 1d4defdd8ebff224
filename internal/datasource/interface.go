// Package datasource fetches bookmaker odds from external providers.
package datasource

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/yourusername/value-better/internal/models"
)

// OddsSource defines the interface for fetching upcoming fixtures with odds
type OddsSource interface {
	// FetchOdds retrieves fixtures and their bookmaker odds for a query
	FetchOdds(ctx context.Context, query Query) ([]models.MatchPayload, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// OddsFormatDecimal is the only supported odds format
const OddsFormatDecimal = "decimal"

// Query selects the fixtures and markets to fetch
type Query struct {
	Sport      string
	Regions    []string
	Markets    []string
	OddsFormat string
}

// Validate rejects queries the engine cannot consume
func (q Query) Validate() error {
	if strings.TrimSpace(q.Sport) == "" {
		return ErrMissingSport
	}
	if !strings.EqualFold(q.OddsFormat, OddsFormatDecimal) {
		return ErrUnsupportedOddsFormat
	}
	if len(q.Regions) == 0 {
		return ErrMissingRegion
	}
	return nil
}

// Key returns a stable cache key; region and market order do not matter
func (q Query) Key() string {
	regions := append([]string(nil), q.Regions...)
	markets := append([]string(nil), q.Markets...)
	sort.Strings(regions)
	sort.Strings(markets)
	return strings.Join([]string{
		strings.ToLower(q.Sport),
		strings.ToLower(strings.Join(regions, ",")),
		strings.ToLower(strings.Join(markets, ",")),
		strings.ToLower(q.OddsFormat),
	}, "|")
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidRequest       = "invalid_request"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
)

var (
	ErrUnsupportedOddsFormat = errors.New("only decimal odds are supported")
	ErrMissingSport          = errors.New("sport key is required")
	ErrMissingRegion         = errors.New("at least one region is required")
	ErrCircuitOpen           = errors.New("circuit breaker open")
	ErrMissingAPIKey         = errors.New("odds_api.api_key is required for the_odds_api provider")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the DataSourceError code carried by err, or "" if none
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ""
}
