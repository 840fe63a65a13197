// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory attempt queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the number of event ids remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// ProfileCacheSize bounds the number of cached profiles.
	ProfileCacheSize int `koanf:"profile_cache_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SeniorBenchmark is the fixed senior reference score in benchmarks.
	SeniorBenchmark float64 `koanf:"senior_benchmark"`

	// TrendWindow is the number of recent scores compared against the previous ones.
	TrendWindow int `koanf:"trend_window"`

	// TrendThreshold is the minimum difference that counts as a trend.
	TrendThreshold float64 `koanf:"trend_threshold"`

	// ParallelAssembly runs the profile components concurrently.
	ParallelAssembly bool `koanf:"parallel_assembly"`

	// WarmConcurrency bounds the goroutines used to rebuild cached profiles.
	WarmConcurrency int `koanf:"warm_concurrency"`

	// MetricsNamespace and MetricsSubsystem prefix every Prometheus series.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels attached to every series.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsBuckets overrides the latency histogram buckets, in milliseconds.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          100_000,
		ProfileCacheSize:    10_000,
		MaxLeaderboardLimit: 100,
		SeniorBenchmark:     82,
		TrendWindow:         3,
		TrendThreshold:      5,
		ParallelAssembly:    false,
		WarmConcurrency:     runtime.NumCPU(),
		MetricsNamespace:    "talentlens",
		MetricsSubsystem:    "profiles",
	}
}

// Validate checks the values a running service depends on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	case c.TrendWindow <= 0:
		return fmt.Errorf("%w: trend_window must be positive, got %d", ErrInvalidConfig, c.TrendWindow)
	case c.TrendThreshold < 0:
		return fmt.Errorf("%w: trend_threshold must not be negative, got %.2f", ErrInvalidConfig, c.TrendThreshold)
	case c.SeniorBenchmark <= 0 || c.SeniorBenchmark > 100:
		return fmt.Errorf("%w: senior_benchmark must be in (0, 100], got %.2f", ErrInvalidConfig, c.SeniorBenchmark)
	case c.WarmConcurrency <= 0:
		return fmt.Errorf("%w: warm_concurrency must be positive, got %d", ErrInvalidConfig, c.WarmConcurrency)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing, got %v", ErrInvalidConfig, c.MetricsBuckets)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
