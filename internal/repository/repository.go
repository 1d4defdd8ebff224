// Package repository provides Postgres access to historical fixtures.
package repository

import (
	"fmt"

	"github.com/yourusername/value-better/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Fixtures FixtureRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Fixtures: NewPostgresFixtureRepository(db),
	}, nil
}
