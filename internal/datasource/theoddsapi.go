package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/metrics"
	"github.com/yourusername/value-better/internal/models"
)

// TheOddsAPISourceName identifies The Odds API in errors, logs and metrics
const TheOddsAPISourceName = "the_odds_api"

// Quota headers returned by The Odds API
const (
	headerRequestsRemaining = "x-requests-remaining"
	headerRequestsUsed      = "x-requests-used"
)

const maxErrorBody = 512

// TheOddsAPIClient implements OddsSource for The Odds API v4
type TheOddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	cache      *OddsCache
	logger     *logger.FetchLogger
}

// NewTheOddsAPIClient creates a new client. cache may be nil to disable caching.
func NewTheOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, cache *OddsCache, log *logrus.Logger) *TheOddsAPIClient {
	if log == nil {
		log = logger.Discard()
	}
	return &TheOddsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		cache:      cache,
		logger:     logger.NewFetchLogger(log, TheOddsAPISourceName),
	}
}

// Name returns the name of the data source
func (c *TheOddsAPIClient) Name() string {
	return TheOddsAPISourceName
}

// IsEnabled returns whether this data source is currently enabled
func (c *TheOddsAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchOdds retrieves upcoming fixtures with bookmaker odds. Queries for anything but
// decimal odds are rejected before a request is made.
func (c *TheOddsAPIClient) FetchOdds(ctx context.Context, query Query) ([]models.MatchPayload, error) {
	if !c.enabled {
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeDisabled, "data source is disabled", nil)
	}
	if err := query.Validate(); err != nil {
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeInvalidRequest, "invalid query", err)
	}

	start := time.Now()
	if c.cache != nil {
		if payloads, ok := c.cache.Get(query); ok {
			c.logger.LogFetch(query.Sport, query.Markets, len(payloads), true, elapsedMs(start))
			return payloads, nil
		}
	}

	payloads, err := c.fetch(ctx, query)
	if err != nil {
		metrics.RecordOddsFetch(TheOddsAPISourceName, "error", time.Since(start).Seconds())
		c.logger.LogFetchError(query.Sport, err)
		return nil, err
	}
	metrics.RecordOddsFetch(TheOddsAPISourceName, "success", time.Since(start).Seconds())

	if c.cache != nil {
		c.cache.Set(query, payloads)
	}
	c.logger.LogFetch(query.Sport, query.Markets, len(payloads), false, elapsedMs(start))
	return payloads, nil
}

func (c *TheOddsAPIClient) fetch(ctx context.Context, query Query) ([]models.MatchPayload, error) {
	endpoint := c.oddsURL(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp.Header)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeRateLimitExceeded, "request quota exhausted", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeNotFound, fmt.Sprintf("unknown sport %q", query.Sport), nil)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeInvalidRequest, readErrorBody(resp.Body), nil)
	case resp.StatusCode >= 500:
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body)), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeInvalidRequest, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body)), nil)
	}

	var payloads []models.MatchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, NewDataSourceError(TheOddsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return payloads, nil
}

func (c *TheOddsAPIClient) oddsURL(query Query) string {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", strings.Join(query.Regions, ","))
	if len(query.Markets) > 0 {
		params.Set("markets", strings.Join(query.Markets, ","))
	}
	params.Set("oddsFormat", OddsFormatDecimal)
	return fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.baseURL, url.PathEscape(query.Sport), params.Encode())
}

func (c *TheOddsAPIClient) recordQuota(header http.Header) {
	remaining, used := header.Get(headerRequestsRemaining), header.Get(headerRequestsUsed)
	if remaining == "" && used == "" {
		return
	}
	c.logger.LogQuota(remaining, used)
	if n, err := strconv.ParseFloat(remaining, 64); err == nil {
		metrics.UpdateRequestsRemaining(n)
	}
}

func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return strings.TrimSpace(string(data))
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
