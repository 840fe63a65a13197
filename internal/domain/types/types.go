// Package types contains common types used across the application
package types

// Entry represents a cohort leaderboard entry
type Entry struct {
	Rank        int     `json:"rank"`
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
	Percentile  int     `json:"percentile"`
}

// CohortStats is the population view the profile engine compares against.
type CohortStats struct {
	Scores          []float64 `json:"scores"`
	PlatformAverage float64   `json:"platform_average"`
}
