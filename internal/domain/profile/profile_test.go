package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/profile"
	"github.com/okian/talentlens/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func done(id, title string, typ model.AssessmentType, score float64, day int) model.AssessmentAttempt {
	finished := start.AddDate(0, 0, day)
	return model.AssessmentAttempt{
		ID:              id,
		AssessmentID:    "asm-" + id,
		AssessmentTitle: title,
		AssessmentType:  typ,
		Score:           ptr(score),
		Status:          model.StatusCompleted,
		AppliedAt:       finished.Add(-2 * time.Hour),
		CompletedAt:     &finished,
		TimeSpent:       60,
	}
}

func reactScenario() profile.Input {
	return profile.Input{
		Candidate: model.Candidate{
			ID:          "cand-1",
			Name:        "Ada Park",
			Email:       "ada@example.com",
			MemberSince: start.AddDate(0, -1, 0),
			Status:      model.CandidateActive,
		},
		Attempts: []model.AssessmentAttempt{
			done("1", "React Hooks", model.AssessmentGeneral, 90, 1),
			done("2", "React State Management", model.AssessmentGeneral, 95, 3),
			{
				ID:              "3",
				AssessmentID:    "asm-3",
				AssessmentTitle: "React Rendering",
				AssessmentType:  model.AssessmentGeneral,
				Status:          model.StatusInProgress,
				AppliedAt:       start.AddDate(0, 0, 5),
			},
		},
		CohortScores:    []float64{95, 92.5, 80, 70, 60},
		PlatformAverage: 74,
	}
}

func TestAssemble(t *testing.T) {
	Convey("Given a candidate with two completed React attempts and one in progress", t, func() {
		in := reactScenario()
		ctx := context.Background()

		Convey("When the profile is assembled", func() {
			p, err := profile.NewAssembler().Assemble(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the aggregate metrics are derived from qualifying attempts", func() {
				So(p.AverageScore, ShouldEqual, 92.5)
				So(p.ScoreBand, ShouldResemble, model.ScoreBand{Label: "Excellent", Color: "green"})
				So(p.CompletionRate, ShouldEqual, 67)
				So(p.Trend.Direction, ShouldEqual, model.TrendStable)
				So(p.Trend.Magnitude, ShouldEqual, 0)
			})

			Convey("Then a single React skill is rated expert", func() {
				So(len(p.Skills), ShouldEqual, 1)
				So(p.Skills[0].Name, ShouldEqual, "React")
				So(p.Skills[0].OverallScore, ShouldEqual, 92.5)
				So(p.Skills[0].Proficiency, ShouldEqual, model.ProficiencyExpert)
				So(len(p.Skills[0].Evidence), ShouldEqual, 3)
			})

			Convey("Then the timeline holds every lifecycle event newest first", func() {
				So(len(p.Timeline), ShouldEqual, 7)
				for i := 1; i < len(p.Timeline); i++ {
					So(p.Timeline[i-1].Timestamp.Before(p.Timeline[i].Timestamp), ShouldBeFalse)
				}
				So(p.Timeline[len(p.Timeline)-1].Type, ShouldEqual, model.EventProfileCreated)
			})

			Convey("Then the benchmark compares against the platform and cohort", func() {
				b := p.Analytics.Benchmark
				So(b.PlatformAverage, ShouldEqual, 74)
				So(b.SeniorBenchmark, ShouldEqual, 82)
				So(b.Difference, ShouldEqual, 18.5)
				So(b.Percentile, ShouldEqual, 40)
				So(p.Percentile, ShouldEqual, 40)
			})

			Convey("Then the analytics views are populated", func() {
				So(p.Analytics.ScoreProgression, ShouldResemble, []model.ScorePoint{
					{Date: "Apr 2", Score: 90, Assessment: "React Hooks", Band: model.ScoreBand{Label: "Excellent", Color: "green"}},
					{Date: "Apr 4", Score: 95, Assessment: "React State Management", Band: model.ScoreBand{Label: "Excellent", Color: "green"}},
				})
				So(p.Analytics.PerformanceByType, ShouldResemble, []model.TypePerformance{
					{Type: model.AssessmentGeneral, Average: 92.5, Count: 2},
				})
				So(p.Analytics.SkillRadar, ShouldResemble, []model.RadarPoint{{Skill: "React", Score: 92.5}})
			})

			Convey("Then the insights and status reflect a top performer", func() {
				ins := p.Analytics.Insights
				So(ins.Strengths, ShouldResemble, []string{"Consistently strong in React (93% avg)"})
				So(ins.Weaknesses, ShouldBeEmpty)
				So(len(ins.Recommendations), ShouldEqual, 3)
				So(ins.Recommendations[2], ShouldStartWith, "Top performer")
				So(ins.CareerLevel, ShouldEqual, "Senior")
				So(p.Status, ShouldEqual, model.ProfileTopTalent)
				So(p.Tags, ShouldResemble, []string{"Top Performer", "Senior Level"})
			})

			Convey("Then identity and attempts are passed through", func() {
				So(p.CandidateID, ShouldEqual, "cand-1")
				So(p.Email, ShouldEqual, "ada@example.com")
				So(len(p.Attempts), ShouldEqual, 3)
			})

			Convey("Then the attempts are copies of the input", func() {
				*p.Attempts[0].Score = 10
				So(*in.Attempts[0].Score, ShouldEqual, 90)
			})
		})

		Convey("When the profile is assembled twice", func() {
			a := profile.NewAssembler()
			first, err1 := a.Assemble(ctx, in)
			second, err2 := a.Assemble(ctx, in)

			Convey("Then the results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})

		Convey("When the components run concurrently", func() {
			seq, err1 := profile.NewAssembler().Assemble(ctx, in)
			par, err2 := profile.NewAssembler(profile.WithConcurrency(true)).Assemble(ctx, in)

			Convey("Then the result matches the sequential run", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(par, ShouldResemble, seq)
			})
		})

		Convey("When the inputs are inspected after assembly", func() {
			cohort := []float64{60, 95, 70}
			in.CohortScores = cohort
			_, err := profile.NewAssembler().Assemble(ctx, in)

			Convey("Then they are unchanged", func() {
				So(err, ShouldBeNil)
				So(cohort, ShouldResemble, []float64{60, 95, 70})
				So(in.Attempts[2].Status, ShouldEqual, model.StatusInProgress)
			})
		})

		Convey("When the cohort is empty", func() {
			in.CohortScores = nil
			_, err := profile.NewAssembler().Assemble(ctx, in)

			Convey("Then the precondition violation is returned", func() {
				So(errors.Is(err, scoring.ErrEmptyCohort), ShouldBeTrue)
				So(errors.Is(err, profile.ErrAssemble), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := profile.NewAssembler(profile.WithConcurrency(true)).Assemble(cctx, in)

			Convey("Then assembly stops with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When a custom senior benchmark is configured", func() {
			p, err := profile.NewAssembler(profile.WithSeniorBenchmark(88)).Assemble(ctx, in)

			Convey("Then it is reported in the benchmark", func() {
				So(err, ShouldBeNil)
				So(p.Analytics.Benchmark.SeniorBenchmark, ShouldEqual, 88)
			})
		})
	})

	Convey("Given a candidate with no attempts", t, func() {
		in := profile.Input{
			Candidate:       model.Candidate{ID: "cand-0", Name: "New Joiner", MemberSince: start, Status: model.CandidateActive},
			CohortScores:    []float64{80, 70},
			PlatformAverage: 75,
		}

		p, err := profile.NewAssembler().Assemble(context.Background(), in)

		Convey("Then every aggregate takes its neutral default", func() {
			So(err, ShouldBeNil)
			So(p.AverageScore, ShouldEqual, 0)
			So(p.CompletionRate, ShouldEqual, 0)
			So(p.Trend.Direction, ShouldEqual, model.TrendStable)
			So(p.Skills, ShouldBeEmpty)
			So(len(p.Timeline), ShouldEqual, 1)
			So(p.Timeline[0].Type, ShouldEqual, model.EventProfileCreated)
			So(p.Percentile, ShouldEqual, 100)
			So(p.Analytics.Benchmark.Difference, ShouldEqual, -75)
			So(p.Status, ShouldEqual, model.ProfileInPipeline)
			So(p.Tags, ShouldBeEmpty)
			So(p.Tags, ShouldNotBeNil)
			So(p.Analytics.Insights.CareerLevel, ShouldEqual, "Junior")
		})
	})

	Convey("Given a candidate spanning many skills and types", t, func() {
		in := profile.Input{
			Candidate: model.Candidate{ID: "cand-2", MemberSince: start, Status: model.CandidateCompleted},
			Attempts: []model.AssessmentAttempt{
				done("1", "Frontend Basics", model.AssessmentGeneral, 60, 1),
				done("2", "Backend APIs", model.AssessmentGeneral, 88, 2),
				done("3", "System Design Interview", model.AssessmentGeneral, 86, 3),
				done("4", "AWS Networking", model.AssessmentCloud, 91, 4),
				done("5", "Graph Algorithms", model.AssessmentDSA, 65, 5),
				done("6", "Performance Tuning", model.AssessmentGeneral, 50, 6),
				done("7", "Prompt Engineering", model.AssessmentAI, 0, 7),
			},
			CohortScores:    []float64{90, 80, 70},
			PlatformAverage: 70,
		}

		p, err := profile.NewAssembler().Assemble(context.Background(), in)
		So(err, ShouldBeNil)

		Convey("Then the radar keeps the first five skills in extraction order", func() {
			names := make([]string, len(p.Analytics.SkillRadar))
			for i, r := range p.Analytics.SkillRadar {
				names[i] = r.Skill
			}
			So(names, ShouldResemble, []string{"React", "Node.js", "System Design", "Cloud (AWS)", "DSA"})
			So(len(p.Skills), ShouldEqual, 7)
		})

		Convey("Then strengths and weaknesses are capped", func() {
			ins := p.Analytics.Insights
			So(ins.Strengths, ShouldResemble, []string{
				"Consistently strong in Node.js (88% avg)",
				"Consistently strong in System Design (86% avg)",
				"Consistently strong in Cloud (AWS) (91% avg)",
			})
			So(ins.Weaknesses, ShouldResemble, []string{
				"React needs focus (60%)",
				"DSA needs focus (65%)",
			})
		})

		Convey("Then performance is grouped by assessment type in first-seen order", func() {
			byType := p.Analytics.PerformanceByType
			So(len(byType), ShouldEqual, 4)
			So(byType[0].Type, ShouldEqual, model.AssessmentGeneral)
			So(byType[0].Count, ShouldEqual, 4)
			So(byType[0].Average, ShouldEqual, 71)
			So(byType[3].Type, ShouldEqual, model.AssessmentAI)
			So(byType[3].Average, ShouldEqual, 0)
		})

		Convey("Then the zero-scored attempt is excluded from the average", func() {
			So(p.AverageScore, ShouldEqual, 73.33333333333333)
			So(p.Tags, ShouldBeEmpty)
			So(p.Status, ShouldEqual, model.ProfileActive)
		})
	})
}

func TestStatusAndTags(t *testing.T) {
	Convey("Given averages around the thresholds", t, func() {
		Convey("Then status maps from the raw candidate status below 90", func() {
			So(profile.Status(95, model.CandidateActive), ShouldEqual, model.ProfileTopTalent)
			So(profile.Status(89, model.CandidateCompleted), ShouldEqual, model.ProfileActive)
			So(profile.Status(89, model.CandidateActive), ShouldEqual, model.ProfileInPipeline)
			So(profile.Status(50, "rejected"), ShouldEqual, model.ProfileActive)
		})

		Convey("Then tags follow the score bands", func() {
			So(profile.Tags(90), ShouldResemble, []string{"Top Performer", "Senior Level"})
			So(profile.Tags(80), ShouldResemble, []string{"Strong Candidate"})
			So(profile.Tags(79.9), ShouldResemble, []string{})
		})
	})
}

func TestBuildInsights(t *testing.T) {
	Convey("Given averages in each career band", t, func() {
		Convey("Then the level, roles and role-fit recommendation follow the band", func() {
			senior := profile.BuildInsights(85, model.Trend{Direction: model.TrendImproving}, nil)
			So(senior.CareerLevel, ShouldEqual, "Senior")
			So(senior.RecommendedRoles, ShouldContain, "Tech Lead")
			So(senior.Recommendations[0], ShouldContainSubstring, "senior-level")
			So(senior.Recommendations[1], ShouldContainSubstring, "improving")
			So(senior.Recommendations[2], ShouldNotStartWith, "Top performer")

			mid := profile.BuildInsights(70, model.Trend{Direction: model.TrendDeclining}, nil)
			So(mid.CareerLevel, ShouldEqual, "Mid-Level")
			So(mid.Recommendations[0], ShouldContainSubstring, "mid-level")
			So(mid.Recommendations[1], ShouldContainSubstring, "declining")

			junior := profile.BuildInsights(69.9, model.Trend{Direction: model.TrendStable}, nil)
			So(junior.CareerLevel, ShouldEqual, "Junior")
			So(junior.Recommendations[0], ShouldContainSubstring, "junior")
			So(junior.Recommendations[1], ShouldContainSubstring, "consistent")
			So(len(junior.Recommendations), ShouldEqual, 3)
		})
	})
}
