package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yourusername/value-better/internal/models"
)

// FileSourceName identifies the file source in errors and logs
const FileSourceName = "file"

// FileOddsSource serves odds from a saved provider response, for offline scoring and
// replays. The file holds the same JSON array The Odds API returns.
type FileOddsSource struct {
	path string
}

// NewFileOddsSource creates a source reading path on every fetch
func NewFileOddsSource(path string) *FileOddsSource {
	return &FileOddsSource{path: path}
}

// Name returns the name of the data source
func (s *FileOddsSource) Name() string {
	return FileSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (s *FileOddsSource) IsEnabled() bool {
	return s.path != ""
}

// FetchOdds reads the file and keeps fixtures of the queried sport. Markets not in
// the query are removed so a file can be replayed with a narrower market set.
func (s *FileOddsSource) FetchOdds(ctx context.Context, query Query) ([]models.MatchPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(query.OddsFormat, OddsFormatDecimal) {
		return nil, NewDataSourceError(FileSourceName, ErrCodeInvalidRequest, "invalid query", ErrUnsupportedOddsFormat)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, NewDataSourceError(FileSourceName, ErrCodeNotFound, fmt.Sprintf("failed to read %s", s.path), err)
	}

	var payloads []models.MatchPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, NewDataSourceError(FileSourceName, ErrCodeInvalidData, "failed to parse odds file", err)
	}

	return filterPayloads(payloads, query), nil
}

func filterPayloads(payloads []models.MatchPayload, query Query) []models.MatchPayload {
	markets := make(map[models.Market]bool, len(query.Markets))
	for _, m := range query.Markets {
		markets[models.ParseMarket(m)] = true
	}

	out := make([]models.MatchPayload, 0, len(payloads))
	for _, p := range payloads {
		if query.Sport != "" && p.SportKey != "" && !strings.EqualFold(p.SportKey, query.Sport) {
			continue
		}
		if len(markets) > 0 {
			bookmakers := make([]models.BookmakerPayload, 0, len(p.Bookmakers))
			for _, b := range p.Bookmakers {
				kept := make([]models.MarketPayload, 0, len(b.Markets))
				for _, m := range b.Markets {
					if markets[models.ParseMarket(m.Key)] {
						kept = append(kept, m)
					}
				}
				b.Markets = kept
				bookmakers = append(bookmakers, b)
			}
			p.Bookmakers = bookmakers
		}
		out = append(out, p)
	}
	return out
}
