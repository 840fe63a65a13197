// Package repository holds the in-memory attempt and cohort stores.
package repository

import (
	"context"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/types"
)

// Entry represents a cohort leaderboard row.
type Entry struct {
	Rank        int
	CandidateID string
	Score       float64
}

// CohortStore keeps one average score per candidate, ordered for ranking.
type CohortStore interface {
	// Set stores score for a candidate, replacing any previous value even when
	// it is lower. Returns true if the stored value changed.
	Set(ctx context.Context, candidateID string, score float64) (bool, error)

	// Remove drops a candidate from the cohort. Returns true if it was present.
	Remove(ctx context.Context, candidateID string) bool

	// Rank returns the current dense rank and score for a candidate.
	// Returns ErrNotFound if the candidate has no cohort score.
	Rank(ctx context.Context, candidateID string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc, id asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of candidates in the cohort.
	Count(ctx context.Context) int

	// Stats returns every cohort score, highest first, and their mean.
	Stats(ctx context.Context) types.CohortStats
}

// AttemptRepository stores candidates and their attempt histories.
type AttemptRepository interface {
	// PutCandidate creates or replaces a candidate record.
	PutCandidate(ctx context.Context, c model.Candidate) error

	// Candidate returns a candidate record or ErrNotFound.
	Candidate(ctx context.Context, id string) (model.Candidate, error)

	// Upsert inserts an attempt or moves an existing one forward in its
	// lifecycle. Returns ErrNotFound for unknown candidates and
	// model.ErrInvalidTransition for backward moves.
	Upsert(ctx context.Context, candidateID string, a model.AssessmentAttempt) error

	// Attempts returns a copy of the candidate's attempts in insertion order.
	Attempts(ctx context.Context, candidateID string) ([]model.AssessmentAttempt, error)

	// History is Attempts plus the candidate's write version, read under one
	// lock. The version grows by one with every accepted Upsert.
	History(ctx context.Context, candidateID string) ([]model.AssessmentAttempt, uint64, error)

	// Candidates returns every candidate record ordered by id.
	Candidates(ctx context.Context) []model.Candidate

	// Count returns the number of candidates.
	Count(ctx context.Context) int
}
