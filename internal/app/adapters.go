package service

import (
	"context"
	"sync"

	"github.com/okian/talentlens/internal/adapters/cache"
	"github.com/okian/talentlens/internal/adapters/mq/worker"
	"github.com/okian/talentlens/internal/adapters/repository"
	"github.com/okian/talentlens/internal/domain/scoring"
)

// attemptRecorder adapts the attempt store to worker.Recorder. The
// candidate's cached profile is dropped after every successful write.
type attemptRecorder struct {
	attempts repository.AttemptRepository
	cache    *cache.ProfileCache
}

func (r *attemptRecorder) Record(ctx context.Context, e worker.Event) (worker.Result, error) { //nolint:gocritic // hugeParam: Event mirrors the queue payload
	if err := r.attempts.Upsert(ctx, e.CandidateID, e.Attempt); err != nil {
		return worker.Result{}, err
	}
	r.cache.Invalidate(e.CandidateID)

	attempts, version, err := r.attempts.History(ctx, e.CandidateID)
	if err != nil {
		return worker.Result{}, err
	}
	scores := scoring.QualifyingScores(attempts)
	return worker.Result{
		Average: scoring.Mean(scores),
		Scored:  len(scores) > 0,
		Version: version,
	}, nil
}

// cohortUpdater adapts the cohort store to worker.Updater. Any cohort change
// moves every percentile, so the whole cache is dropped.
//
// applied holds the newest history version published per candidate, removals
// included. It grows with the registered candidates and no further.
type cohortUpdater struct {
	cohort repository.CohortStore
	cache  *cache.ProfileCache

	mu      sync.Mutex
	applied map[string]uint64
}

func newCohortUpdater(cohort repository.CohortStore, c *cache.ProfileCache) *cohortUpdater {
	return &cohortUpdater{cohort: cohort, cache: c, applied: make(map[string]uint64)}
}

// stale reports whether version is older than one already published.
// Callers hold u.mu.
func (u *cohortUpdater) stale(candidateID string, version uint64) bool {
	return version < u.applied[candidateID]
}

func (u *cohortUpdater) Set(ctx context.Context, candidateID string, score float64, version uint64) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.stale(candidateID, version) {
		return false, nil
	}

	changed, err := u.cohort.Set(ctx, candidateID, score)
	if err != nil {
		return false, err
	}
	u.applied[candidateID] = version
	if changed {
		u.cache.InvalidateAll()
	}
	return changed, nil
}

func (u *cohortUpdater) Remove(ctx context.Context, candidateID string, version uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.stale(candidateID, version) {
		return false
	}

	u.applied[candidateID] = version
	removed := u.cohort.Remove(ctx, candidateID)
	if removed {
		u.cache.InvalidateAll()
	}
	return removed
}
