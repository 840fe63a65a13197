package repository

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/talentlens/internal/domain/scoring"
	"github.com/okian/talentlens/internal/domain/types"
	"github.com/okian/talentlens/pkg/metrics"
)

// Treap-based, in-memory CohortStore implementation.
//
// Ordering: score DESC, then candidateID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst.

// scoreScale controls fixed-point scaling from float64. Scores live in 0..100.
const scoreScale = 1_000_000_000

const defaultMetricsUpdateInterval = 5 * time.Second

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	return scoreFP(math.Round(x * scoreScale))
}

// record keeps the exact score next to the fixed-point key used for ordering.
type record struct {
	score scoreFP
	value float64
}

// treap node
type node struct {
	id    string
	score scoreFP
	value float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, fresh *node) *node {
	if n == nil {
		return fresh
	}
	if less(fresh.score, fresh.id, n.score, n.id) {
		n.left = insert(n.left, fresh)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, fresh)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

// TreapStore is the in-memory CohortStore.
type TreapStore struct {
	mu    sync.RWMutex
	root  *node
	byID  map[string]record
	sum   float64
	rng   *rand.Rand
	seed  uint64
	rngMu sync.Mutex

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	stopOnce              sync.Once
}

// NewTreapStore constructs a treap store with configuration options. The
// background metrics updater stops when ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]record),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed != 0 {
		s.rng = rand.New(rand.NewPCG(s.seed, s.seed))
	}

	s.startMetricsUpdater(ctx)
	return s
}

func (s *TreapStore) priority() uint64 {
	if s.rng == nil {
		return rand.Uint64()
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Uint64()
}

// Close stops the metrics updater.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Set implements CohortStore.Set with O(log n) expected time.
func (s *TreapStore) Set(_ context.Context, candidateID string, score float64) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(sinceMs(start)) }()

	if candidateID == "" {
		return false, ErrInvalidID
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 100 {
		metrics.RecordErrorByComponent("repository", "invalid_score")
		return false, ErrInvalidScore
	}

	ns := toFixedPoint(score)
	fresh := &node{id: candidateID, score: ns, value: score, prio: s.priority(), size: 1}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byID[candidateID]; ok {
		if old.value == score {
			return false, nil
		}
		s.root = deleteNode(s.root, candidateID, old.score)
		s.sum -= old.value
	}
	s.byID[candidateID] = record{score: ns, value: score}
	s.sum += score
	s.root = insert(s.root, fresh)
	return true, nil
}

// Remove implements CohortStore.Remove.
func (s *TreapStore) Remove(_ context.Context, candidateID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[candidateID]
	if !ok {
		return false
	}
	s.root = deleteNode(s.root, candidateID, old.score)
	s.sum -= old.value
	delete(s.byID, candidateID)
	if len(s.byID) == 0 {
		s.sum = 0
	}
	return true
}

// Rank walks the leaderboard up to the candidate, counting distinct scores.
func (s *TreapStore) Rank(_ context.Context, candidateID string) (Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(sinceMs(start)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.byID[candidateID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	rank := 0
	var prev scoreFP
	walk(s.root, func(n *node) bool {
		if rank == 0 || n.score != prev {
			rank++
			prev = n.score
		}
		return n.score != target.score
	})
	return Entry{Rank: rank, CandidateID: candidateID, Score: target.value}, nil
}

// TopN returns the top N entries ordered by score desc with dense ranks.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(sinceMs(start)) }()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	walk(s.root, func(nd *node) bool {
		out = append(out, Entry{CandidateID: nd.id, Score: nd.value})
		return len(out) < n
	})
	assignDenseRanks(out)
	return out, nil
}

// Count returns the number of candidates in the cohort.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Stats returns every cohort score in rank order plus the running mean.
func (s *TreapStore) Stats(_ context.Context) types.CohortStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scores := make([]float64, 0, len(s.byID))
	walk(s.root, func(n *node) bool {
		scores = append(scores, n.value)
		return true
	})
	return types.CohortStats{Scores: scores, PlatformAverage: scoring.Mean(scores)}
}

// assignDenseRanks gives equal scores the same rank; the next distinct score
// takes the following rank.
func assignDenseRanks(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || toFixedPoint(entries[i].Score) != toFixedPoint(entries[i-1].Score) {
			rank++
		}
		entries[i].Rank = rank
	}
}

// startMetricsUpdater periodically publishes cohort size and average.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	count := len(s.byID)
	avg := 0.0
	if count > 0 {
		avg = s.sum / float64(count)
	}
	s.mu.RUnlock()

	metrics.UpdateCohortSize(count)
	metrics.UpdatePlatformAverage(avg)
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
