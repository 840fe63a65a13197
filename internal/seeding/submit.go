package seeding

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/pkg/logger"
)

// forEach runs fn over items with a fixed number of workers, stopping early
// when ctx is done.
func forEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T)) {
	ch := make(chan T, workers*2)
	var wg sync.WaitGroup
	for range min(workers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range ch {
				if ctx.Err() != nil {
					continue
				}
				fn(ctx, item)
			}
		}()
	}

	func() {
		defer close(ch)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case ch <- item:
			}
		}
	}()
	wg.Wait()
}

// registerCandidates posts every candidate and returns how many succeeded.
func registerCandidates(ctx context.Context, c *Client, workers int, candidates []model.Candidate) int {
	log := logger.Get().Named("seeding")
	var ok atomic.Int64
	forEach(ctx, workers, candidates, func(ctx context.Context, cand model.Candidate) {
		if err := c.RegisterCandidate(ctx, cand); err != nil {
			log.Warn(ctx, "candidate registration failed", logger.String("candidate_id", cand.ID), logger.Error(err))
			return
		}
		ok.Add(1)
	})
	return int(ok.Load())
}

// submitAttempts posts a batch of attempt events and folds the outcomes into stats.
func submitAttempts(ctx context.Context, c *Client, workers int, reqs []AttemptRequest, stats *Stats) {
	log := logger.Get().Named("seeding")
	var counts [OutcomeFailed + 1]atomic.Int64
	forEach(ctx, workers, reqs, func(ctx context.Context, r AttemptRequest) {
		outcome, err := c.SubmitAttempt(ctx, r)
		counts[outcome].Add(1)
		if err != nil && outcome != OutcomeDuplicate {
			log.Debug(ctx, "attempt submission not accepted",
				logger.String("event_id", r.EventID),
				logger.Int("outcome", int(outcome)),
				logger.Error(err))
		}
	})

	stats.EventsSubmitted += len(reqs)
	stats.EventsAccepted += int(counts[OutcomeAccepted].Load())
	stats.EventsDuplicate += int(counts[OutcomeDuplicate].Load())
	stats.EventsRejected += int(counts[OutcomeRejected].Load())
	stats.EventsFailed += int(counts[OutcomeFailed].Load())
}
