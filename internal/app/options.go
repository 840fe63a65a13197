package service

import (
	"github.com/okian/talentlens/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the attempt queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of event ids remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithProfileCacheSize bounds the profile cache. Zero disables it.
func WithProfileCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithSeniorBenchmark sets the senior reference score reported in benchmarks.
func WithSeniorBenchmark(score float64) Option {
	return func(s *Service) {
		if score > 0 {
			s.seniorBenchmark = score
		}
	}
}

// WithTrend configures the trend detector window and threshold.
func WithTrend(window int, threshold float64) Option {
	return func(s *Service) {
		if window > 0 {
			s.trendWindow = window
		}
		if threshold >= 0 {
			s.trendThreshold = threshold
		}
	}
}

// WithParallelAssembly runs profile components concurrently.
func WithParallelAssembly(enabled bool) Option {
	return func(s *Service) {
		s.parallel = enabled
	}
}

// WithWarmConcurrency bounds the goroutines Warm uses.
func WithWarmConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.warmConcurrency = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
