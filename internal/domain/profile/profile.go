// Package profile assembles a candidate's derived performance profile from
// their attempt history and cohort statistics.
package profile

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/scoring"
	"github.com/okian/talentlens/internal/domain/skills"
	"github.com/okian/talentlens/internal/domain/timeline"
)

// Profile assembly constants.
const (
	DefaultSeniorBenchmark = 82.0
	radarSize              = 5
	progressionDateLayout  = "Jan 2"
)

// Input is everything a profile is derived from. The assembler treats it as
// read-only.
type Input struct {
	Candidate       model.Candidate
	Attempts        []model.AssessmentAttempt
	CohortScores    []float64
	PlatformAverage float64
}

// Assembler turns an Input into a CandidateProfile. It is stateless apart
// from immutable configuration and safe for concurrent use.
type Assembler struct {
	seniorBenchmark float64
	trend           *scoring.TrendDetector
	extractor       *skills.Extractor
	concurrent      bool
}

// NewAssembler creates an assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		seniorBenchmark: DefaultSeniorBenchmark,
		trend:           scoring.NewTrendDetector(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = skills.NewExtractor(skills.WithTrendDetector(a.trend))
	}
	return a
}

// parts holds the results of the independent components.
type parts struct {
	average    float64
	completion int
	trend      model.Trend
	skills     []model.Skill
	timeline   []model.TimelineEvent
}

// Assemble derives the profile. The only error is a cohort precondition
// violation (scoring.ErrEmptyCohort) or a cancelled context.
func (a *Assembler) Assemble(ctx context.Context, in Input) (model.CandidateProfile, error) {
	p, err := a.compute(ctx, in)
	if err != nil {
		return model.CandidateProfile{}, fmt.Errorf("%w: %w", ErrAssemble, err)
	}

	percentile, err := scoring.PercentileRank(p.average, in.CohortScores)
	if err != nil {
		return model.CandidateProfile{}, fmt.Errorf("%w: %w", ErrAssemble, err)
	}

	benchmark := model.Benchmark{
		PlatformAverage: in.PlatformAverage,
		SeniorBenchmark: a.seniorBenchmark,
		Difference:      p.average - in.PlatformAverage,
		Percentile:      percentile,
	}

	return model.CandidateProfile{
		CandidateID:    in.Candidate.ID,
		Name:           in.Candidate.Name,
		Email:          in.Candidate.Email,
		Phone:          in.Candidate.Phone,
		MemberSince:    in.Candidate.MemberSince,
		AverageScore:   p.average,
		ScoreBand:      scoring.ClassifyBand(p.average).ScoreBand(),
		CompletionRate: p.completion,
		Percentile:     percentile,
		Trend:          p.trend,
		Attempts:       copyAttempts(in.Attempts),
		Skills:         p.skills,
		Timeline:       p.timeline,
		Analytics: model.Analytics{
			ScoreProgression:  scoreProgression(in.Attempts),
			PerformanceByType: performanceByType(in.Attempts),
			SkillRadar:        skillRadar(p.skills),
			Benchmark:         benchmark,
			Insights:          BuildInsights(p.average, p.trend, p.skills),
		},
		Status: Status(p.average, in.Candidate.Status),
		Tags:   Tags(p.average),
	}, nil
}

// compute runs the aggregator, trend detector, skill extractor and timeline
// builder, concurrently when configured.
func (a *Assembler) compute(ctx context.Context, in Input) (parts, error) {
	var p parts
	steps := []func(){
		func() {
			p.average = scoring.AverageScore(in.Attempts)
			p.completion = scoring.CompletionRate(in.Attempts)
		},
		func() { p.trend = a.trend.Detect(in.Attempts) },
		func() { p.skills = a.extractor.Aggregate(in.Attempts) },
		func() { p.timeline = timeline.Build(in.Candidate, in.Attempts) },
	}

	if !a.concurrent {
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return parts{}, err
			}
			step()
		}
		return p, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, step := range steps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return parts{}, err
	}
	return p, nil
}

// scoreProgression lists completed attempts oldest first.
func scoreProgression(attempts []model.AssessmentAttempt) []model.ScorePoint {
	completed := make([]model.AssessmentAttempt, 0, len(attempts))
	for i := range attempts {
		if attempts[i].Status == model.StatusCompleted && attempts[i].CompletedAt != nil {
			completed = append(completed, attempts[i])
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.Before(*completed[j].CompletedAt)
	})

	out := make([]model.ScorePoint, len(completed))
	for i := range completed {
		var s float64
		if completed[i].Score != nil {
			s = *completed[i].Score
		}
		out[i] = model.ScorePoint{
			Date:       completed[i].CompletedAt.Format(progressionDateLayout),
			Score:      s,
			Assessment: completed[i].AssessmentTitle,
			Band:       scoring.ClassifyBand(s).ScoreBand(),
		}
	}
	return out
}

// performanceByType groups completed attempts by type in first-seen order.
func performanceByType(attempts []model.AssessmentAttempt) []model.TypePerformance {
	var order []model.AssessmentType
	groups := make(map[model.AssessmentType][]model.AssessmentAttempt)
	for i := range attempts {
		if attempts[i].Status != model.StatusCompleted {
			continue
		}
		t := attempts[i].AssessmentType
		if _, ok := groups[t]; !ok {
			order = append(order, t)
		}
		groups[t] = append(groups[t], attempts[i])
	}

	out := make([]model.TypePerformance, len(order))
	for i, t := range order {
		out[i] = model.TypePerformance{
			Type:    t,
			Average: scoring.AverageScore(groups[t]),
			Count:   len(groups[t]),
		}
	}
	return out
}

// skillRadar takes the first skills in extraction order, not the best ones.
func skillRadar(list []model.Skill) []model.RadarPoint {
	n := min(len(list), radarSize)
	out := make([]model.RadarPoint, n)
	for i := 0; i < n; i++ {
		out[i] = model.RadarPoint{Skill: list[i].Name, Score: list[i].OverallScore}
	}
	return out
}

// Status derives the profile status from the average and the raw status.
func Status(average float64, raw model.CandidateStatus) model.ProfileStatus {
	if average >= topTalentScore {
		return model.ProfileTopTalent
	}
	switch raw {
	case model.CandidateCompleted:
		return model.ProfileActive
	case model.CandidateActive:
		return model.ProfileInPipeline
	default:
		return model.ProfileActive
	}
}

// Tags derives display tags from the average score.
func Tags(average float64) []string {
	switch {
	case average >= topTalentScore:
		return []string{"Top Performer", "Senior Level"}
	case average >= strongCandidateScore:
		return []string{"Strong Candidate"}
	default:
		return []string{}
	}
}

func copyAttempts(in []model.AssessmentAttempt) []model.AssessmentAttempt {
	out := make([]model.AssessmentAttempt, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
