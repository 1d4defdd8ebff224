// Package history loads completed fixtures used to calibrate and train probability
// estimators.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/config"
	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/models"
)

// Source names
const (
	SourceSample   = "sample"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNoStore       = errors.New("postgres history requires a fixture store")
	ErrUnknownSource = errors.New("unknown history source")
)

// FixtureSource loads historical fixtures
type FixtureSource interface {
	LoadFixtures(ctx context.Context) ([]models.HistoricalFixture, error)
	Name() string
}

// FixtureStore is the persistence side of the postgres source
type FixtureStore interface {
	ListFixtures(ctx context.Context, league string, limit int) ([]*models.HistoricalFixture, error)
}

// StoreSource adapts a FixtureStore to FixtureSource
type StoreSource struct {
	store  FixtureStore
	league string
	limit  int
}

// NewStoreSource creates a source reading at most limit fixtures of league from store.
// An empty league or a zero limit means no filter.
func NewStoreSource(store FixtureStore, league string, limit int) *StoreSource {
	return &StoreSource{store: store, league: league, limit: limit}
}

// Name returns the source name
func (s *StoreSource) Name() string {
	return SourcePostgres
}

// LoadFixtures reads fixtures from the store
func (s *StoreSource) LoadFixtures(ctx context.Context) ([]models.HistoricalFixture, error) {
	rows, err := s.store.ListFixtures(ctx, s.league, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list historical fixtures: %w", err)
	}
	fixtures := make([]models.HistoricalFixture, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			fixtures = append(fixtures, *row)
		}
	}
	return fixtures, nil
}

// NewSource builds the configured source. store is only used by the postgres source
// and may be nil otherwise.
func NewSource(cfg config.HistoryConfig, store FixtureStore, log *logrus.Logger) (FixtureSource, error) {
	if log == nil {
		log = logger.Discard()
	}
	switch strings.ToLower(cfg.Source) {
	case SourceSample, "":
		return NewSampleSource(cfg.League, cfg.Limit), nil
	case SourceCSV:
		return NewCSVSource(cfg.CSVPath, cfg.League, cfg.Limit, log), nil
	case SourcePostgres:
		if store == nil {
			return nil, ErrNoStore
		}
		return NewStoreSource(store, cfg.League, cfg.Limit), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, cfg.Source)
	}
}

// Filter keeps fixtures of league (case-insensitive, empty keeps all). When more than
// limit remain, the limit latest by kick-off are returned in kick-off order; otherwise
// the input order is kept. A zero limit keeps all.
func Filter(fixtures []models.HistoricalFixture, league string, limit int) []models.HistoricalFixture {
	out := make([]models.HistoricalFixture, 0, len(fixtures))
	for _, f := range fixtures {
		if league != "" && !strings.EqualFold(f.League, league) {
			continue
		}
		out = append(out, f)
	}
	if limit > 0 && len(out) > limit {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Kickoff.Before(out[j].Kickoff)
		})
		out = out[len(out)-limit:]
	}
	return out
}
