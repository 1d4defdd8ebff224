package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/models"
)

// Columns of a results file. Odds columns are optional.
const (
	colHomeTeam = "home_team"
	colAwayTeam = "away_team"
	colLeague   = "league"
	colKickoff  = "kickoff"
	colHomeOdds = "home_odds"
	colDrawOdds = "draw_odds"
	colAwayOdds = "away_odds"
	colResult   = "result"
)

var requiredColumns = []string{colHomeTeam, colAwayTeam, colResult}

var kickoffLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02", "02/01/2006"}

// resultAliases accepts full labels and the H/D/A shorthand used by results archives
var resultAliases = map[string]models.Outcome{
	"home": models.OutcomeHome,
	"h":    models.OutcomeHome,
	"draw": models.OutcomeDraw,
	"d":    models.OutcomeDraw,
	"x":    models.OutcomeDraw,
	"away": models.OutcomeAway,
	"a":    models.OutcomeAway,
}

// RowError describes a skipped line of a results file
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error
func (e RowError) Unwrap() error {
	return e.Err
}

// CSVSource reads fixtures from a results file
type CSVSource struct {
	path   string
	league string
	limit  int
	logger *logrus.Entry
}

// NewCSVSource creates a source for path
func NewCSVSource(path, league string, limit int, log *logrus.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		league: league,
		limit:  limit,
		logger: log.WithFields(logrus.Fields{"component": "history", "source": SourceCSV}),
	}
}

// Name returns the source name
func (s *CSVSource) Name() string {
	return SourceCSV
}

// LoadFixtures parses the file. Malformed rows are skipped with a warning.
func (s *CSVSource) LoadFixtures(ctx context.Context) ([]models.HistoricalFixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	fixtures, skipped, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	for _, rowErr := range skipped {
		s.logger.WithField("line", rowErr.Line).WithError(rowErr.Err).Warn("Skipped malformed result row")
	}

	fixtures = Filter(fixtures, s.league, s.limit)
	s.logger.WithFields(logrus.Fields{
		"path":     s.path,
		"fixtures": len(fixtures),
		"skipped":  len(skipped),
	}).Info("Loaded historical fixtures")
	return fixtures, nil
}

// ParseCSV reads a results file with a header row. Column order is free and matched
// case-insensitively. Rows that fail to parse are returned as RowErrors.
func ParseCSV(r io.Reader) ([]models.HistoricalFixture, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	validate := validator.New()
	var fixtures []models.HistoricalFixture
	var skipped []RowError
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}
		fixture, err := parseRow(record, index)
		if err == nil {
			err = validate.Struct(fixture)
		}
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, skipped, nil
}

func parseRow(record []string, index map[string]int) (models.HistoricalFixture, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	fixture := models.HistoricalFixture{
		HomeTeam: field(colHomeTeam),
		AwayTeam: field(colAwayTeam),
		League:   field(colLeague),
	}
	if fixture.HomeTeam == "" || fixture.AwayTeam == "" {
		return fixture, models.ErrMissingTeam
	}

	result, ok := resultAliases[strings.ToLower(field(colResult))]
	if !ok {
		return fixture, fmt.Errorf("%w: %q", models.ErrUnknownOutcome, field(colResult))
	}
	fixture.Result = result

	if raw := field(colKickoff); raw != "" {
		kickoff, err := parseKickoff(raw)
		if err != nil {
			return fixture, err
		}
		fixture.Kickoff = kickoff
	}

	var err error
	if fixture.HomeOdds, err = parseOdds(field(colHomeOdds)); err != nil {
		return fixture, err
	}
	if fixture.DrawOdds, err = parseOdds(field(colDrawOdds)); err != nil {
		return fixture, err
	}
	if fixture.AwayOdds, err = parseOdds(field(colAwayOdds)); err != nil {
		return fixture, err
	}
	return fixture, nil
}

func parseKickoff(raw string) (time.Time, error) {
	for _, layout := range kickoffLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid kickoff %q", raw)
}

// parseOdds returns nil for a blank cell so a missing price stays distinguishable
func parseOdds(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid odds %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 1.0 {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPrice, v)
	}
	return &v, nil
}
