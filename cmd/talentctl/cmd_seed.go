package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/talentlens/internal/seeding"
)

const defaultRunTimeout = 10 * time.Minute

func newSeedCommand() *cobra.Command {
	cfg := seeding.DefaultConfig()
	var runTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a running server with synthetic data and verify it",
		Long: `Seed a running talentlens server.

Registers synthetic candidates, submits their attempts as they would arrive
(opened first, finished later, with some events resubmitted), waits for the
server to finish ingesting and then checks ranks, the leaderboard and
profiles against the generated data.`,
		Example: `  talentctl seed --url http://localhost:9080 --candidates 500 --seed 7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			stats, err := seeding.Run(ctx, cfg)
			if stats != nil {
				printStats(cmd, stats)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	f.IntVar(&cfg.Candidates, "candidates", cfg.Candidates, "Number of candidates to register")
	f.IntVar(&cfg.AttemptsPerCandidate, "attempts", cfg.AttemptsPerCandidate, "Attempts per candidate")
	f.Float64Var(&cfg.DuplicateRate, "duplicates", cfg.DuplicateRate, "Share of attempt events resubmitted")
	f.IntVar(&cfg.TopN, "top", cfg.TopN, "Leaderboard entries to verify")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent HTTP workers")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	f.DurationVar(&cfg.SettleTimeout, "settle-timeout", cfg.SettleTimeout, "How long to wait for ingestion to finish")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one at random)")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Write the generated dataset to this YAML file")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "Overall time limit")

	return cmd
}

func printStats(cmd *cobra.Command, s *seeding.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "candidates registered: %d\n", s.CandidatesRegistered)
	fmt.Fprintf(out, "events submitted:      %d (accepted %d, duplicate %d, rejected %d, failed %d)\n",
		s.EventsSubmitted, s.EventsAccepted, s.EventsDuplicate, s.EventsRejected, s.EventsFailed)
	fmt.Fprintf(out, "ranks checked:         %d\n", s.RanksChecked)
	fmt.Fprintf(out, "leaderboard entries:   %d\n", s.LeaderboardEntries)
	fmt.Fprintf(out, "profiles checked:      %d\n", s.ProfilesChecked)
	fmt.Fprintf(out, "duration:              %s\n", s.Duration.Round(time.Millisecond))
	for _, m := range s.Mismatches {
		fmt.Fprintf(out, "mismatch: %s\n", m)
	}
}
