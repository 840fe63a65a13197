package seeding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/talentlens/pkg/logger"
)

const (
	outputDirPermission  = 0o750
	outputFilePermission = 0o600
)

// Run generates a dataset, submits it to the server and verifies what the
// server reports back. Stats are returned even when verification fails.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("seeding")
	started := time.Now()
	stats := &Stats{}

	log.Info(ctx, "starting seeding run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("candidates", cfg.Candidates),
		logger.Int("attempts_per_candidate", cfg.AttemptsPerCandidate),
		logger.Int("workers", cfg.Workers),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	ds := Generate(cfg, time.Now())
	log.Info(ctx, "generated dataset",
		logger.Any("seed", ds.Seed),
		logger.Int("initial_events", len(ds.Initial)),
		logger.Int("final_events", len(ds.Final)),
		logger.Int("duplicates", len(ds.Duplicates)),
	)
	if cfg.OutputFile != "" {
		if err := saveDataset(cfg.OutputFile, ds); err != nil {
			log.Warn(ctx, "failed to save dataset", logger.Error(err))
		}
	}

	stats.CandidatesRegistered = registerCandidates(ctx, client, cfg.Workers, ds.Candidates)
	// terminal states only after every opening state is in
	submitAttempts(ctx, client, cfg.Workers, ds.Initial, stats)
	submitAttempts(ctx, client, cfg.Workers, ds.Final, stats)
	submitAttempts(ctx, client, cfg.Workers, ds.Duplicates, stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	expected := ds.Expected()
	if err := waitSettled(ctx, client, len(expected), cfg.SettleTimeout); err != nil {
		return stats, err
	}

	v := &verifier{}
	stats.RanksChecked = v.verifyRanks(ctx, client, cfg.Workers, expected)
	top, err := client.Leaderboard(ctx, min(cfg.TopN, max(len(expected), 1)))
	if err != nil {
		return stats, fmt.Errorf("leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(top)
	v.verifyLeaderboard(top, expected)
	stats.ProfilesChecked = v.verifyProfiles(ctx, client, cfg.Workers, top)

	stats.Mismatches = v.report(ctx)
	stats.Duration = time.Since(started)
	log.Info(ctx, "seeding run finished",
		logger.Int("candidates_registered", stats.CandidatesRegistered),
		logger.Int("events_submitted", stats.EventsSubmitted),
		logger.Int("events_accepted", stats.EventsAccepted),
		logger.Int("events_duplicate", stats.EventsDuplicate),
		logger.Int("events_rejected", stats.EventsRejected),
		logger.Int("events_failed", stats.EventsFailed),
		logger.Int("ranks_checked", stats.RanksChecked),
		logger.Int("profiles_checked", stats.ProfilesChecked),
		logger.Int("mismatches", len(stats.Mismatches)),
		logger.Duration("duration", stats.Duration),
	)

	if len(stats.Mismatches) > 0 {
		return stats, fmt.Errorf("%w: %d mismatches", ErrVerification, len(stats.Mismatches))
	}
	return stats, nil
}

// saveDataset writes ds as YAML, creating parent directories.
func saveDataset(path string, ds *Dataset) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, outputDirPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, outputFilePermission); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

// LoadDataset reads a dataset written by a previous run.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}
