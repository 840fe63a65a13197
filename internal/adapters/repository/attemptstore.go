package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/pkg/metrics"
)

// history is one candidate's record plus attempts in insertion order.
type history struct {
	candidate model.Candidate
	attempts  []model.AssessmentAttempt
	index     map[string]int // attempt id -> position in attempts
	version   uint64         // bumped on every accepted attempt write
}

// AttemptStore is the in-memory AttemptRepository.
type AttemptStore struct {
	mu   sync.RWMutex
	byID map[string]*history
}

// NewAttemptStore creates an empty attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{byID: make(map[string]*history)}
}

// PutCandidate implements AttemptRepository. Existing attempts are kept.
func (s *AttemptStore) PutCandidate(_ context.Context, c model.Candidate) error {
	if c.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.byID[c.ID]; ok {
		h.candidate = c
		return nil
	}
	s.byID[c.ID] = &history{candidate: c, index: make(map[string]int)}
	metrics.UpdateCandidatesTotal(len(s.byID))
	return nil
}

// Candidate implements AttemptRepository.
func (s *AttemptStore) Candidate(_ context.Context, id string) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byID[id]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	return h.candidate, nil
}

// Upsert implements AttemptRepository.
func (s *AttemptStore) Upsert(_ context.Context, candidateID string, a model.AssessmentAttempt) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(sinceMs(start)) }()

	if err := a.Validate(); err != nil {
		return err
	}
	a.CandidateID = candidateID
	a = a.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.byID[candidateID]
	if !ok {
		return ErrNotFound
	}
	if i, exists := h.index[a.ID]; exists {
		prev := h.attempts[i].Status
		if !model.CanTransition(prev, a.Status) {
			return fmt.Errorf("%w: attempt %s %s -> %s", model.ErrInvalidTransition, a.ID, prev, a.Status)
		}
		h.attempts[i] = a
		h.version++
		return nil
	}
	h.index[a.ID] = len(h.attempts)
	h.attempts = append(h.attempts, a)
	h.version++
	return nil
}

// Attempts implements AttemptRepository.
func (s *AttemptStore) Attempts(ctx context.Context, candidateID string) ([]model.AssessmentAttempt, error) {
	out, _, err := s.History(ctx, candidateID)
	return out, err
}

// History implements AttemptRepository.
func (s *AttemptStore) History(_ context.Context, candidateID string) ([]model.AssessmentAttempt, uint64, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(sinceMs(start)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byID[candidateID]
	if !ok {
		return nil, 0, ErrNotFound
	}
	out := make([]model.AssessmentAttempt, len(h.attempts))
	for i := range h.attempts {
		out[i] = h.attempts[i].Clone()
	}
	return out, h.version, nil
}

// Candidates implements AttemptRepository.
func (s *AttemptStore) Candidates(_ context.Context) []model.Candidate {
	s.mu.RLock()
	out := make([]model.Candidate, 0, len(s.byID))
	for _, h := range s.byID {
		out = append(out, h.candidate)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count implements AttemptRepository.
func (s *AttemptStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
