// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for attempt validation.
var (
	ErrInvalidAttempt    = errors.New("invalid attempt")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// AssessmentType classifies the assessment an attempt belongs to.
type AssessmentType string

// Known assessment types.
const (
	AssessmentGeneral AssessmentType = "assessment"
	AssessmentDSA     AssessmentType = "dsa"
	AssessmentCloud   AssessmentType = "cloud"
	AssessmentAI      AssessmentType = "ai"
)

// Valid reports whether t is one of the known assessment types.
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentGeneral, AssessmentDSA, AssessmentCloud, AssessmentAI:
		return true
	}
	return false
}

// AttemptStatus is the lifecycle state of an attempt.
type AttemptStatus string

// Attempt lifecycle states.
const (
	StatusPending    AttemptStatus = "pending"
	StatusInProgress AttemptStatus = "in-progress"
	StatusCompleted  AttemptStatus = "completed"
	StatusFailed     AttemptStatus = "failed"
)

// Valid reports whether s is a known status.
func (s AttemptStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is completed or failed.
func (s AttemptStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// stage orders statuses along the forward-only lifecycle.
func (s AttemptStatus) stage() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	}
	return -1
}

// CanTransition reports whether an attempt may move from one status to another.
// Staying in a non-terminal status is allowed; terminal states never change.
func CanTransition(from, to AttemptStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from.Terminal() {
		return from == to
	}
	return to.stage() >= from.stage()
}

// SectionScores holds optional raw scores per assessment section.
type SectionScores struct {
	MCQ        *float64 `json:"mcq,omitempty" yaml:"mcq,omitempty"`
	Coding     *float64 `json:"coding,omitempty" yaml:"coding,omitempty"`
	Subjective *float64 `json:"subjective,omitempty" yaml:"subjective,omitempty"`
}

// AssessmentAttempt is one candidate's participation in one assessment.
type AssessmentAttempt struct {
	ID              string         `json:"id" yaml:"id"`
	CandidateID     string         `json:"candidate_id,omitempty" yaml:"candidate_id,omitempty"`
	AssessmentID    string         `json:"assessment_id" yaml:"assessment_id"`
	AssessmentTitle string         `json:"assessment_title" yaml:"assessment_title"`
	AssessmentType  AssessmentType `json:"assessment_type" yaml:"assessment_type"`
	Score           *float64       `json:"score,omitempty" yaml:"score,omitempty"`
	Status          AttemptStatus  `json:"status" yaml:"status"`
	AppliedAt       time.Time      `json:"applied_at" yaml:"applied_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	TimeSpent       int            `json:"time_spent" yaml:"time_spent"` // minutes
	Sections        *SectionScores `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// QualifyingScore returns the score when it is present and strictly positive.
// A score of exactly zero is treated the same as an ungraded attempt.
func (a *AssessmentAttempt) QualifyingScore() (float64, bool) {
	if a.Score == nil || *a.Score <= 0 {
		return 0, false
	}
	return *a.Score, true
}

// RecencyTime is the timestamp used to order attempts by recency.
func (a *AssessmentAttempt) RecencyTime() time.Time {
	if a.CompletedAt != nil {
		return *a.CompletedAt
	}
	return a.AppliedAt
}

// Validate checks the structural invariants of an attempt.
func (a *AssessmentAttempt) Validate() error {
	switch {
	case a.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidAttempt)
	case !a.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidAttempt, a.Status)
	case a.AssessmentType != "" && !a.AssessmentType.Valid():
		return fmt.Errorf("%w: unknown assessment type %q", ErrInvalidAttempt, a.AssessmentType)
	case a.CompletedAt != nil && !a.Status.Terminal():
		return fmt.Errorf("%w: completed_at set on %s attempt", ErrInvalidAttempt, a.Status)
	case a.Score != nil && (*a.Score < 0 || *a.Score > 100):
		return fmt.Errorf("%w: score %.2f outside 0-100", ErrInvalidAttempt, *a.Score)
	}
	return nil
}

// Clone returns a deep copy that shares no pointers with a.
func (a AssessmentAttempt) Clone() AssessmentAttempt {
	a.Score = clonePtr(a.Score)
	a.CompletedAt = clonePtr(a.CompletedAt)
	if a.Sections != nil {
		s := SectionScores{
			MCQ:        clonePtr(a.Sections.MCQ),
			Coding:     clonePtr(a.Sections.Coding),
			Subjective: clonePtr(a.Sections.Subjective),
		}
		a.Sections = &s
	}
	return a
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
