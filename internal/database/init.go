package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/config"
)

// SchemaSQL creates the historical fixtures table when it does not exist
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS historical_fixtures (
	id         BIGSERIAL PRIMARY KEY,
	home_team  TEXT NOT NULL,
	away_team  TEXT NOT NULL,
	league     TEXT NOT NULL DEFAULT '',
	kickoff    TIMESTAMPTZ NOT NULL,
	home_odds  DOUBLE PRECISION,
	draw_odds  DOUBLE PRECISION,
	away_odds  DOUBLE PRECISION,
	result     TEXT NOT NULL CHECK (result IN ('home', 'draw', 'away')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_historical_fixtures_league_kickoff
	ON historical_fixtures (league, kickoff DESC);
`

// Initialize connects to the database and makes sure the fixture schema exists
func Initialize(ctx context.Context, cfg *config.DatabaseConfig, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, SchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	var count int64
	if err := db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM historical_fixtures").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count historical fixtures: %w", err)
	}
	if count == 0 && log != nil {
		log.WithField("component", "database").Warn("historical_fixtures is empty; calibration will use fallback probabilities")
	}

	return db, nil
}
