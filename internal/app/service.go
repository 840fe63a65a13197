// Package service wires the attempt store, cohort ranking, ingestion workers
// and the profile engine into one application service.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/talentlens/internal/adapters/cache"
	"github.com/okian/talentlens/internal/adapters/mq/queue"
	"github.com/okian/talentlens/internal/adapters/mq/worker"
	"github.com/okian/talentlens/internal/adapters/repository"
	"github.com/okian/talentlens/internal/domain/dedupe"
	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/profile"
	"github.com/okian/talentlens/internal/domain/scoring"
	"github.com/okian/talentlens/internal/domain/types"
	"github.com/okian/talentlens/pkg/logger"
	"github.com/okian/talentlens/pkg/metrics"
)

// Service orchestrates ingestion and profile reads.
type Service struct {
	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	cacheSize       int
	seniorBenchmark float64
	trendWindow     int
	trendThreshold  float64
	parallel        bool
	warmConcurrency int

	// Components
	logger    logger.Logger
	attempts  repository.AttemptRepository
	cohort    *repository.TreapStore
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	cache     *cache.ProfileCache
	assembler *profile.Assembler

	// Runtime state
	mu        sync.RWMutex
	started   bool
	runCancel context.CancelFunc
}

// New creates a new service with the given options. Components are created
// on Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       queue.DefaultCapacity,
		dedupeSize:      dedupe.DefaultMaxSize,
		cacheSize:       cache.DefaultMaxEntries,
		seniorBenchmark: profile.DefaultSeniorBenchmark,
		trendWindow:     scoring.DefaultTrendWindow,
		trendThreshold:  scoring.DefaultTrendThreshold,
		warmConcurrency: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes every component and launches the worker pool. The
// workers keep running after ctx is cancelled until Stop drains them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCancel = cancel

	s.attempts = repository.NewAttemptStore()
	s.cohort = repository.NewTreapStore(runCtx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.cache = cache.New(cache.WithMaxEntries(s.cacheSize))
	s.assembler = profile.NewAssembler(
		profile.WithSeniorBenchmark(s.seniorBenchmark),
		profile.WithTrendDetector(scoring.NewTrendDetector(
			scoring.WithWindow(s.trendWindow),
			scoring.WithThreshold(s.trendThreshold),
		)),
		profile.WithConcurrency(s.parallel),
	)

	recorder := &attemptRecorder{attempts: s.attempts, cache: s.cache}
	updater := newCohortUpdater(s.cohort, s.cache)
	s.pool = worker.NewPool(s.workerCount, s.queue, recorder, updater)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_capacity", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("profile_cache_size", s.cacheSize),
	)
	return nil
}

// Stop closes the queue, waits for the workers to drain it and releases the
// cohort store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("worker pool: %w", err))
	}
	s.runCancel()
	if err := s.cohort.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cohort store: %w", err))
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
	return errors.Join(errs...)
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// SeenAndRecord implements dedupe.Deduper and counts duplicates.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if !s.isStarted() {
		return false
	}
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordAttemptDuplicate()
	}
	return seen
}

// Unrecord implements dedupe.Deduper.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if !s.isStarted() {
		return
	}
	s.deduper.Unrecord(ctx, id)
}

// Size implements dedupe.Deduper.
func (s *Service) Size() int64 {
	if !s.isStarted() {
		return 0
	}
	return s.deduper.Size()
}

// RegisterCandidate creates or replaces a candidate record.
func (s *Service) RegisterCandidate(ctx context.Context, c model.Candidate) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	if err := s.attempts.PutCandidate(ctx, c); err != nil {
		return err
	}
	s.cache.Invalidate(c.ID)
	return nil
}

// Candidate returns a registered candidate or repository.ErrNotFound.
func (s *Service) Candidate(ctx context.Context, id string) (model.Candidate, error) {
	if !s.isStarted() {
		return model.Candidate{}, ErrNotStarted
	}
	return s.attempts.Candidate(ctx, id)
}

// Enqueue hands an attempt event to the workers. Returns false when the
// queue is full or closed.
func (s *Service) Enqueue(ctx context.Context, e model.AttemptEvent) bool { //nolint:gocritic // hugeParam: event is copied into the queue anyway
	if !s.isStarted() {
		return false
	}
	return s.queue.Enqueue(ctx, e)
}

// Profile returns the assembled profile of a candidate, served from the cache
// while nothing it depends on has changed.
func (s *Service) Profile(ctx context.Context, id string) (model.CandidateProfile, error) {
	if !s.isStarted() {
		return model.CandidateProfile{}, ErrNotStarted
	}

	if p, ok := s.cache.Get(id); ok {
		return p, nil
	}

	tok := s.cache.Token(id)
	p, err := s.assemble(ctx, id)
	if err != nil {
		return model.CandidateProfile{}, err
	}
	s.cache.Put(id, tok, p)
	return p, nil
}

func (s *Service) assemble(ctx context.Context, id string) (model.CandidateProfile, error) {
	start := time.Now()

	c, err := s.attempts.Candidate(ctx, id)
	if err != nil {
		return model.CandidateProfile{}, err
	}
	attempts, err := s.attempts.Attempts(ctx, id)
	if err != nil {
		return model.CandidateProfile{}, err
	}

	stats := s.cohort.Stats(ctx)
	if len(stats.Scores) == 0 {
		// nobody is ranked yet; the candidate is compared against itself
		own := scoring.AverageScore(attempts)
		stats = types.CohortStats{Scores: []float64{own}, PlatformAverage: own}
	}

	p, err := s.assembler.Assemble(ctx, profile.Input{
		Candidate:       c,
		Attempts:        attempts,
		CohortScores:    stats.Scores,
		PlatformAverage: stats.PlatformAverage,
	})
	if err != nil {
		metrics.RecordProfileAssemblyError()
		s.logger.Error(ctx, "profile assembly failed",
			logger.String("candidate_id", id),
			logger.Error(err),
		)
		return model.CandidateProfile{}, err
	}

	metrics.RecordProfileAssemblyLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	return p, nil
}

// Warm assembles and caches the profile of every registered candidate.
// Returns the number of profiles assembled.
func (s *Service) Warm(ctx context.Context) (int, error) {
	if !s.isStarted() {
		return 0, ErrNotStarted
	}

	candidates := s.attempts.Candidates(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.warmConcurrency)
	for _, c := range candidates {
		g.Go(func() error {
			if _, err := s.Profile(gctx, c.ID); err != nil {
				return fmt.Errorf("warm %s: %w", c.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(candidates), nil
}

// TopN returns the top-N cohort entries with their percentile ranks.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	entries, err := s.cohort.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	stats := s.cohort.Stats(ctx)

	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = toEntry(e, stats.Scores)
	}
	return out, nil
}

// Rank returns a candidate's cohort entry or repository.ErrNotFound.
func (s *Service) Rank(ctx context.Context, candidateID string) (types.Entry, error) {
	if !s.isStarted() {
		return types.Entry{}, ErrNotStarted
	}

	e, err := s.cohort.Rank(ctx, candidateID)
	if err != nil {
		return types.Entry{}, err
	}
	return toEntry(e, s.cohort.Stats(ctx).Scores), nil
}

// Cohort returns the current cohort scores and platform average.
func (s *Service) Cohort(ctx context.Context) types.CohortStats {
	if !s.isStarted() {
		return types.CohortStats{}
	}
	return s.cohort.Stats(ctx)
}

func toEntry(e repository.Entry, sortedScores []float64) types.Entry {
	return types.Entry{
		Rank:        e.Rank,
		CandidateID: e.CandidateID,
		Score:       e.Score,
		Percentile:  scoring.PercentileRankSorted(e.Score, sortedScores),
	}
}

// GetStats returns service statistics.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueCapacity":  s.queueSize,
		"dedupeCapacity": s.dedupeSize,
		"cacheCapacity":  s.cacheSize,
	}

	if s.started {
		cohort := s.cohort.Stats(ctx)
		stats["queueLength"] = s.queue.Len(ctx)
		stats["activeWorkers"] = s.pool.Busy()
		stats["dedupeEntries"] = s.deduper.Size()
		stats["candidates"] = s.attempts.Count(ctx)
		stats["cohortSize"] = len(cohort.Scores)
		stats["platformAverage"] = cohort.PlatformAverage
		stats["cachedProfiles"] = s.cache.Len()
	}

	return stats
}
