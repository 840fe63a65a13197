package scoring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/talentlens/internal/domain/model"
	scoring "github.com/okian/talentlens/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

// completedAt builds a completed attempt finished `day` days after base.
func completedAt(id string, score float64, day int) model.AssessmentAttempt {
	done := base.AddDate(0, 0, day)
	return model.AssessmentAttempt{
		ID:          id,
		Score:       ptr(score),
		Status:      model.StatusCompleted,
		AppliedAt:   done.Add(-time.Hour),
		CompletedAt: &done,
	}
}

func TestAverageScore(t *testing.T) {
	Convey("Given a list of attempts", t, func() {
		Convey("When every attempt has a positive score", func() {
			attempts := []model.AssessmentAttempt{
				completedAt("a", 90, 1),
				completedAt("b", 95, 2),
			}

			Convey("Then the average is the plain mean", func() {
				So(scoring.AverageScore(attempts), ShouldEqual, 92.5)
			})
		})

		Convey("When some attempts are ungraded or scored zero", func() {
			attempts := []model.AssessmentAttempt{
				completedAt("a", 80, 1),
				completedAt("b", 0, 2),
				{ID: "c", Status: model.StatusPending, AppliedAt: base},
				completedAt("d", 60, 3),
			}

			Convey("Then they are excluded entirely", func() {
				So(scoring.AverageScore(attempts), ShouldEqual, 70)
			})

			Convey("And the average stays within the qualifying range", func() {
				avg := scoring.AverageScore(attempts)
				So(avg, ShouldBeBetweenOrEqual, 60, 80)
			})
		})

		Convey("When no attempt qualifies", func() {
			attempts := []model.AssessmentAttempt{{ID: "x", Status: model.StatusPending}}

			Convey("Then the average is zero", func() {
				So(scoring.AverageScore(attempts), ShouldEqual, 0)
				So(scoring.AverageScore(nil), ShouldEqual, 0)
			})
		})
	})
}

func TestCompletionRate(t *testing.T) {
	Convey("Given attempt lists of varying completion", t, func() {
		Convey("When the list is empty", func() {
			Convey("Then the rate is zero", func() {
				So(scoring.CompletionRate(nil), ShouldEqual, 0)
			})
		})

		Convey("When two of three attempts are completed", func() {
			attempts := []model.AssessmentAttempt{
				completedAt("a", 90, 1),
				completedAt("b", 95, 2),
				{ID: "c", Status: model.StatusInProgress},
			}

			Convey("Then the rate rounds to 67", func() {
				So(scoring.CompletionRate(attempts), ShouldEqual, 67)
			})
		})

		Convey("When an attempt failed", func() {
			failed := completedAt("b", 30, 2)
			failed.Status = model.StatusFailed
			attempts := []model.AssessmentAttempt{completedAt("a", 90, 1), failed}

			Convey("Then it does not count as completed", func() {
				So(scoring.CompletionRate(attempts), ShouldEqual, 50)
			})
		})
	})
}

func TestClassifyBand(t *testing.T) {
	Convey("Given the default score bands", t, func() {
		cases := []struct {
			score float64
			label string
		}{
			{100, "Excellent"},
			{90, "Excellent"},
			{89.99, "Very Good"},
			{80, "Very Good"},
			{70, "Good"},
			{60, "Average"},
			{50, "Below Average"},
			{49.9, "Poor"},
			{0, "Poor"},
		}

		Convey("Then each lower bound is inclusive", func() {
			for _, c := range cases {
				So(scoring.ClassifyBand(c.score).Label, ShouldEqual, c.label)
			}
		})

		Convey("Then every band carries a color token", func() {
			for _, b := range scoring.DefaultBands() {
				So(b.Color, ShouldNotBeEmpty)
			}
		})

		Convey("When the returned table is modified", func() {
			bands := scoring.DefaultBands()
			bands[0].Label = "Changed"

			Convey("Then later classifications are unaffected", func() {
				So(scoring.ClassifyBand(95).Label, ShouldEqual, "Excellent")
			})
		})

		Convey("When a negative score is classified", func() {
			Convey("Then it falls into the last band", func() {
				So(scoring.ClassifyBand(-5).Label, ShouldEqual, "Poor")
			})
		})
	})
}

func TestPercentileRank(t *testing.T) {
	Convey("Given a cohort of scores", t, func() {
		cohort := []float64{90, 80, 70, 70, 60}

		Convey("When ranking a score equal to a cohort value", func() {
			p, err := scoring.PercentileRank(70, cohort)

			Convey("Then the first position at or below it is used", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 60)
			})
		})

		Convey("When ranking a score above all cohort values", func() {
			p, err := scoring.PercentileRank(99, cohort)

			Convey("Then it gets the smallest percentile number", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 20)
			})
		})

		Convey("When ranking a score below all cohort values", func() {
			p, err := scoring.PercentileRank(10, cohort)

			Convey("Then it ranks 100", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 100)
			})
		})

		Convey("When the cohort is unsorted", func() {
			unsorted := []float64{60, 90, 70, 80, 70}
			p, err := scoring.PercentileRank(70, unsorted)

			Convey("Then the result matches the sorted cohort", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 60)
			})

			Convey("And the input is not reordered", func() {
				So(unsorted, ShouldResemble, []float64{60, 90, 70, 80, 70})
			})
		})

		Convey("When the cohort is very large", func() {
			large := make([]float64, 1000)
			for i := range large {
				large[i] = 50
			}
			p, err := scoring.PercentileRank(99, large)

			Convey("Then the result is bounded below by 1", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 1)
			})
		})

		Convey("When the cohort is empty", func() {
			_, err := scoring.PercentileRank(70, nil)

			Convey("Then the precondition violation is reported", func() {
				So(errors.Is(err, scoring.ErrEmptyCohort), ShouldBeTrue)
			})
		})
	})
}

func TestPercentileRankSorted(t *testing.T) {
	Convey("Given a cohort already sorted highest first", t, func() {
		sorted := []float64{90, 80, 70, 70, 60}

		Convey("Then it agrees with PercentileRank", func() {
			for _, score := range []float64{99, 90, 85, 70, 65, 60, 10} {
				want, err := scoring.PercentileRank(score, sorted)
				So(err, ShouldBeNil)
				So(scoring.PercentileRankSorted(score, sorted), ShouldEqual, want)
			}
		})

		Convey("Then an empty cohort yields zero", func() {
			So(scoring.PercentileRankSorted(50, nil), ShouldEqual, 0)
		})
	})
}
