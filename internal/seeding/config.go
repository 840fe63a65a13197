// Package seeding generates synthetic candidates and attempts, submits them
// to a running talentlens server and verifies the rankings and profiles it
// serves back.
package seeding

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/talentlens/internal/domain/model"
)

// Sentinel kinds for seeding errors.
var (
	ErrInvalidConfig = errors.New("invalid seeding config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrVerification  = errors.New("verification failed")
)

// Default seeding parameters.
const (
	DefaultBaseURL              = "http://localhost:9080"
	DefaultCandidates           = 200
	DefaultAttemptsPerCandidate = 4
	DefaultTopN                 = 25
	DefaultDuplicateRate        = 0.05
	DefaultTimeout              = 10 * time.Second
	DefaultSettleTimeout        = 30 * time.Second
)

// Config holds the seeding run parameters.
type Config struct {
	BaseURL              string        // Base URL of the service
	Candidates           int           // Number of candidates to register
	AttemptsPerCandidate int           // Attempts generated per candidate
	DuplicateRate        float64       // Share of attempt events resubmitted verbatim
	TopN                 int           // Leaderboard entries to verify
	Workers              int           // Concurrent HTTP workers
	Timeout              time.Duration // Per-request timeout
	SettleTimeout        time.Duration // How long to wait for ingestion to finish
	Seed                 uint64        // Generator seed; 0 picks one at random
	OutputFile           string        // Optional YAML dump of the generated dataset
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:              DefaultBaseURL,
		Candidates:           DefaultCandidates,
		AttemptsPerCandidate: DefaultAttemptsPerCandidate,
		DuplicateRate:        DefaultDuplicateRate,
		TopN:                 DefaultTopN,
		Workers:              runtime.NumCPU() * 2,
		Timeout:              DefaultTimeout,
		SettleTimeout:        DefaultSettleTimeout,
	}
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url must not be empty", ErrInvalidConfig)
	case c.Candidates < 1:
		return fmt.Errorf("%w: candidates must be positive, got %d", ErrInvalidConfig, c.Candidates)
	case c.AttemptsPerCandidate < 1:
		return fmt.Errorf("%w: attempts per candidate must be positive, got %d", ErrInvalidConfig, c.AttemptsPerCandidate)
	case c.DuplicateRate < 0 || c.DuplicateRate > 1:
		return fmt.Errorf("%w: duplicate rate must be within [0, 1], got %.2f", ErrInvalidConfig, c.DuplicateRate)
	case c.TopN < 1:
		return fmt.Errorf("%w: top must be positive, got %d", ErrInvalidConfig, c.TopN)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Timeout <= 0 || c.SettleTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// AttemptRequest is the POST /attempts payload.
type AttemptRequest struct {
	EventID     string                  `json:"event_id" yaml:"event_id"`
	CandidateID string                  `json:"candidate_id" yaml:"candidate_id"`
	TS          string                  `json:"ts" yaml:"ts"`
	Attempt     model.AssessmentAttempt `json:"attempt" yaml:"attempt"`
}

// Stats summarizes a seeding run.
type Stats struct {
	CandidatesRegistered int
	EventsSubmitted      int
	EventsAccepted       int
	EventsDuplicate      int
	EventsRejected       int
	EventsFailed         int
	RanksChecked         int
	ProfilesChecked      int
	LeaderboardEntries   int
	Mismatches           []string
	Duration             time.Duration
}
