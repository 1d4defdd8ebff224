package models

import "errors"

// Custom errors
var (
	ErrInvalidPrice   = errors.New("price must be greater than 1.0")
	ErrUnknownOutcome = errors.New("unknown outcome label")
	ErrMissingTeam    = errors.New("home and away team names are required")
	ErrNotFound       = errors.New("record not found")
)
