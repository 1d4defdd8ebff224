package repository

import (
	"context"

	"github.com/yourusername/value-better/internal/models"
)

// FixtureRepository defines the interface for historical fixture data access
type FixtureRepository interface {
	// ListFixtures returns the most recent fixtures of league, oldest first. An empty
	// league or a non-positive limit means no filter.
	ListFixtures(ctx context.Context, league string, limit int) ([]*models.HistoricalFixture, error)
	InsertBatch(ctx context.Context, fixtures []*models.HistoricalFixture) (int64, error)
	Count(ctx context.Context) (int64, error)
}
