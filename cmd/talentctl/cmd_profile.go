package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/profile"
	"github.com/okian/talentlens/internal/domain/scoring"
)

var errNoFixture = errors.New("--file is required")

// fixture is the offline profile input. JSON fixtures parse as YAML too.
type fixture struct {
	Candidate       model.Candidate           `yaml:"candidate"`
	Attempts        []model.AssessmentAttempt `yaml:"attempts"`
	CohortScores    []float64                 `yaml:"cohort_scores"`
	PlatformAverage *float64                  `yaml:"platform_average"`
	SeniorBenchmark *float64                  `yaml:"senior_benchmark"`
}

func newProfileCommand() *cobra.Command {
	var (
		file    string
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Assemble a candidate profile from a fixture file",
		Long: `Assemble a candidate profile without a running server.

The fixture holds the candidate, its attempts and optionally the cohort
scores, platform average and senior benchmark to compare against. With no
cohort the candidate is compared against its own average.`,
		Example: `  talentctl profile --file candidate.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errNoFixture
			}
			fx, err := loadFixture(file)
			if err != nil {
				return err
			}
			p, err := assembleFixture(cmd, fx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(p)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture file (YAML or JSON)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print the profile on a single line")

	return cmd
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	if fx.Candidate.ID == "" {
		return nil, fmt.Errorf("fixture %s: candidate.id is required", path)
	}
	for i := range fx.Attempts {
		fx.Attempts[i].CandidateID = fx.Candidate.ID
		if err := fx.Attempts[i].Validate(); err != nil {
			return nil, fmt.Errorf("fixture %s: attempt %d: %w", path, i, err)
		}
	}
	return &fx, nil
}

func assembleFixture(cmd *cobra.Command, fx *fixture) (model.CandidateProfile, error) {
	var opts []profile.Option
	if fx.SeniorBenchmark != nil {
		opts = append(opts, profile.WithSeniorBenchmark(*fx.SeniorBenchmark))
	}

	in := profile.Input{
		Candidate:    fx.Candidate,
		Attempts:     fx.Attempts,
		CohortScores: fx.CohortScores,
	}
	if len(in.CohortScores) == 0 {
		own := scoring.AverageScore(fx.Attempts)
		in.CohortScores = []float64{own}
		in.PlatformAverage = own
	}
	switch {
	case fx.PlatformAverage != nil:
		in.PlatformAverage = *fx.PlatformAverage
	case len(fx.CohortScores) > 0:
		in.PlatformAverage = scoring.Mean(fx.CohortScores)
	}

	return profile.NewAssembler(opts...).Assemble(cmd.Context(), in)
}
