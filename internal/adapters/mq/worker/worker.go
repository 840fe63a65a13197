// Package worker applies queued attempt events to the stores.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/talentlens/internal/adapters/mq/queue"
	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/pkg/logger"
	"github.com/okian/talentlens/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Event abstracts what workers read off the queue.
type Event = queue.Event

// Result is the candidate state an applied event left behind.
type Result struct {
	Average float64 // mean of the candidate's qualifying scores
	Scored  bool    // false while the candidate has no qualifying score
	Version uint64  // per-candidate write sequence Average was computed at
}

// Recorder writes an attempt and returns the candidate's refreshed average.
type Recorder interface {
	Record(ctx context.Context, e Event) (Result, error)
}

// Updater publishes a candidate's average to the cohort. Workers race each
// other between Record and the publish, so implementations must ignore a
// version older than one already applied for the same candidate.
type Updater interface {
	Set(ctx context.Context, candidateID string, score float64, version uint64) (bool, error)
	Remove(ctx context.Context, candidateID string, version uint64) bool
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	updater  Updater
	name     string
	busy     *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, recorder Recorder, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		updater:  updater,
		name:     "worker",
		busy:     new(atomic.Int64),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Warn(ctx, "attempt event not applied",
					logger.String("event_id", e.EventID),
					logger.String("candidate_id", e.CandidateID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker loop.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.busy.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.busy.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res, err := w.recorder.Record(ctx, e)
	if err != nil {
		metrics.RecordWorkerError()
		if errors.Is(err, model.ErrInvalidTransition) || errors.Is(err, model.ErrInvalidAttempt) {
			metrics.RecordAttemptRejected()
			metrics.RecordErrorByComponent("worker", "rejected")
		} else {
			metrics.RecordErrorByComponent("worker", "record_error")
		}
		return fmt.Errorf("record event %s: %w", e.EventID, err)
	}
	metrics.RecordAttemptProcessed()

	var changed bool
	if res.Scored {
		changed, err = w.updater.Set(ctx, e.CandidateID, res.Average, res.Version)
	} else {
		changed = w.updater.Remove(ctx, e.CandidateID, res.Version)
	}
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "cohort_error")
		return fmt.Errorf("cohort update for %s: %w", e.CandidateID, err)
	}
	if changed {
		metrics.RecordCohortUpdate()
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	busy    atomic.Int64
	logger  logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 uses runtime.NumCPU().
func NewPool(workerCount int, q Queue, recorder Recorder, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		w := NewInMemoryWorker(q, recorder, updater, WithName("worker-"+strconv.Itoa(i)))
		w.busy = &p.busy
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Busy returns the number of workers currently processing an event.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
