package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("candidate not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidScore = errors.New("invalid cohort score")
	ErrInvalidID    = errors.New("invalid candidate id")
)
