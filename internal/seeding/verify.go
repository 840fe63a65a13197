package seeding

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/okian/talentlens/internal/domain/types"
	"github.com/okian/talentlens/pkg/logger"
)

const (
	scoreTolerance = 1e-6
	settlePoll     = 100 * time.Millisecond
)

// waitSettled polls /stats until the cohort holds want candidates, nothing
// is queued or in flight, and the platform average held still for one poll.
func waitSettled(ctx context.Context, c *Client, want int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()

	var last map[string]any
	prevAvg := math.NaN()
	for {
		stats, err := c.Stats(ctx)
		if err == nil {
			last = stats
			size, _ := stats["cohortSize"].(float64)
			queued, _ := stats["queueLength"].(float64)
			active, _ := stats["activeWorkers"].(float64)
			avg, _ := stats["platformAverage"].(float64)
			idle := int(size) == want && queued == 0 && active == 0
			if idle && avg == prevAvg {
				return nil
			}
			prevAvg = math.NaN()
			if idle {
				prevAvg = avg
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ingestion did not settle (last stats %v): %w", last, ctx.Err())
		case <-ticker.C:
		}
	}
}

// verifier accumulates mismatches found while checking server state.
type verifier struct {
	mu         sync.Mutex
	mismatches []string
}

func (v *verifier) fail(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mismatches = append(v.mismatches, fmt.Sprintf(format, args...))
}

// verifyRanks checks every expected candidate's rank score.
func (v *verifier) verifyRanks(ctx context.Context, c *Client, workers int, expected map[string]float64) int {
	ids := make([]string, 0, len(expected))
	for id := range expected {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	forEach(ctx, workers, ids, func(ctx context.Context, id string) {
		e, err := c.Rank(ctx, id)
		if err != nil {
			v.fail("rank %s: %v", id, err)
			return
		}
		if math.Abs(e.Score-expected[id]) > scoreTolerance {
			v.fail("rank %s: score %.6f, want %.6f", id, e.Score, expected[id])
		}
	})
	return len(ids)
}

// verifyLeaderboard checks ordering and dense ranks of the top entries
// against the expected averages.
func (v *verifier) verifyLeaderboard(entries []types.Entry, expected map[string]float64) {
	want := make([]float64, 0, len(expected))
	for _, s := range expected {
		want = append(want, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(want)))

	for i, e := range entries {
		if i < len(want) && math.Abs(e.Score-want[i]) > scoreTolerance {
			v.fail("leaderboard[%d]: score %.6f, want %.6f", i, e.Score, want[i])
		}
		if i == 0 {
			if e.Rank != 1 {
				v.fail("leaderboard[0]: rank %d, want 1", e.Rank)
			}
			continue
		}
		prev := entries[i-1]
		switch {
		case e.Score > prev.Score:
			v.fail("leaderboard[%d]: score %.6f above previous %.6f", i, e.Score, prev.Score)
		case e.Score == prev.Score && (e.Rank != prev.Rank || e.CandidateID < prev.CandidateID):
			v.fail("leaderboard[%d]: tie with %s not ordered by id under one rank", i, prev.CandidateID)
		case e.Score < prev.Score && e.Rank != prev.Rank+1:
			v.fail("leaderboard[%d]: rank %d after %d is not dense", i, e.Rank, prev.Rank)
		}
	}
}

// verifyProfiles checks that profiles agree with their leaderboard entries.
func (v *verifier) verifyProfiles(ctx context.Context, c *Client, workers int, entries []types.Entry) int {
	forEach(ctx, workers, entries, func(ctx context.Context, e types.Entry) {
		p, err := c.Profile(ctx, e.CandidateID)
		if err != nil {
			v.fail("profile %s: %v", e.CandidateID, err)
			return
		}
		if math.Abs(p.AverageScore-e.Score) > scoreTolerance {
			v.fail("profile %s: average %.6f, leaderboard %.6f", e.CandidateID, p.AverageScore, e.Score)
		}
		if p.Percentile != e.Percentile {
			v.fail("profile %s: percentile %d, leaderboard %d", e.CandidateID, p.Percentile, e.Percentile)
		}
	})
	return len(entries)
}

func (v *verifier) report(ctx context.Context) []string {
	log := logger.Get().Named("seeding")
	for _, m := range v.mismatches {
		log.Warn(ctx, "mismatch", logger.String("detail", m))
	}
	return v.mismatches
}
