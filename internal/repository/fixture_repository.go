package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/value-better/internal/database"
	"github.com/yourusername/value-better/internal/models"
)

const fixturesTable = "historical_fixtures"

var fixtureColumns = []string{
	"home_team", "away_team", "league", "kickoff", "home_odds", "draw_odds", "away_odds", "result",
}

// PostgresFixtureRepository implements FixtureRepository for PostgreSQL
type PostgresFixtureRepository struct {
	db *database.DB
}

// NewPostgresFixtureRepository creates a new fixture repository
func NewPostgresFixtureRepository(db *database.DB) FixtureRepository {
	return &PostgresFixtureRepository{db: db}
}

// ListFixtures retrieves fixtures ordered by kickoff
func (r *PostgresFixtureRepository) ListFixtures(ctx context.Context, league string, limit int) ([]*models.HistoricalFixture, error) {
	query, args := buildListQuery(league, limit)

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical fixtures: %w", err)
	}

	fixtures, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.HistoricalFixture])
	if err != nil {
		return nil, fmt.Errorf("failed to scan historical fixtures: %w", err)
	}

	return fixtures, nil
}

// InsertBatch inserts fixtures using COPY
func (r *PostgresFixtureRepository) InsertBatch(ctx context.Context, fixtures []*models.HistoricalFixture) (int64, error) {
	if len(fixtures) == 0 {
		return 0, nil
	}

	copyCount, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{fixturesTable},
		fixtureColumns,
		pgx.CopyFromRows(fixtureRows(fixtures)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert historical fixtures: %w", err)
	}

	if copyCount != int64(len(fixtures)) {
		return copyCount, fmt.Errorf("inserted %d rows, expected %d", copyCount, len(fixtures))
	}

	return copyCount, nil
}

// Count returns the number of stored fixtures
func (r *PostgresFixtureRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM "+fixturesTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count historical fixtures: %w", err)
	}
	return count, nil
}

// buildListQuery selects the newest fixtures in a subquery and returns them oldest first
func buildListQuery(league string, limit int) (string, []interface{}) {
	cols := strings.Join(fixtureColumns, ", ")

	var b strings.Builder
	var args []interface{}
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, fixturesTable)
	if league != "" {
		args = append(args, league)
		fmt.Fprintf(&b, " WHERE lower(league) = lower($%d)", len(args))
	}
	b.WriteString(" ORDER BY kickoff DESC")
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return fmt.Sprintf("SELECT %s FROM (%s) recent ORDER BY kickoff ASC", cols, b.String()), args
}

func fixtureRows(fixtures []*models.HistoricalFixture) [][]interface{} {
	rows := make([][]interface{}, 0, len(fixtures))
	for _, f := range fixtures {
		rows = append(rows, []interface{}{
			f.HomeTeam, f.AwayTeam, f.League, f.Kickoff,
			f.HomeOdds, f.DrawOdds, f.AwayOdds, string(f.Result),
		})
	}
	return rows
}
