package scoring_test

import (
	"testing"

	"github.com/okian/talentlens/internal/domain/model"
	scoring "github.com/okian/talentlens/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// history builds attempts whose scores are given most recent first.
func history(scores ...float64) []model.AssessmentAttempt {
	out := make([]model.AssessmentAttempt, len(scores))
	for i, s := range scores {
		out[i] = completedAt(string(rune('a'+i)), s, len(scores)-i)
	}
	return out
}

func TestTrendDetector(t *testing.T) {
	Convey("Given the default trend detector", t, func() {
		d := scoring.NewTrendDetector()

		Convey("When recent scores clearly beat older ones", func() {
			tr := d.Detect(history(85, 80, 75, 60, 55, 50))

			Convey("Then the trend is improving by the mean difference", func() {
				So(tr.Direction, ShouldEqual, model.TrendImproving)
				So(tr.Magnitude, ShouldEqual, 25)
			})
		})

		Convey("When recent scores clearly trail older ones", func() {
			tr := d.Detect(history(50, 55, 60, 75, 80, 85))

			Convey("Then the trend is declining with a negative magnitude", func() {
				So(tr.Direction, ShouldEqual, model.TrendDeclining)
				So(tr.Magnitude, ShouldEqual, -25)
			})
		})

		Convey("When the windows are nearly equal", func() {
			tr := d.Detect(history(71, 70, 69, 70, 70, 71))

			Convey("Then the trend is stable", func() {
				So(tr.Direction, ShouldEqual, model.TrendStable)
				So(tr.Magnitude, ShouldAlmostEqual, -1.0/3.0, 1e-9)
			})
		})

		Convey("When the difference is exactly the threshold", func() {
			tr := d.Detect(history(75, 75, 75, 70, 70, 70))

			Convey("Then the trend is still stable", func() {
				So(tr.Direction, ShouldEqual, model.TrendStable)
			})
		})

		Convey("When there is no older window", func() {
			tr := d.Detect(history(95, 90, 40))

			Convey("Then the trend is stable with zero magnitude", func() {
				So(tr.Direction, ShouldEqual, model.TrendStable)
				So(tr.Magnitude, ShouldEqual, 0)
			})
		})

		Convey("When the older window is partial", func() {
			tr := d.Detect(history(90, 90, 90, 70))

			Convey("Then only the available older scores are averaged", func() {
				So(tr.Direction, ShouldEqual, model.TrendImproving)
				So(tr.Magnitude, ShouldEqual, 20)
			})
		})

		Convey("When attempts arrive out of chronological order", func() {
			attempts := []model.AssessmentAttempt{
				completedAt("old1", 50, 1),
				completedAt("new1", 85, 6),
				completedAt("old2", 55, 2),
				completedAt("new2", 80, 5),
				completedAt("old3", 60, 3),
				completedAt("new3", 75, 4),
			}

			Convey("Then they are ordered by recency first", func() {
				So(scoring.RecentScores(attempts), ShouldResemble, []float64{85, 80, 75, 60, 55, 50})
				So(d.Detect(attempts).Direction, ShouldEqual, model.TrendImproving)
			})
		})

		Convey("When ungraded attempts are mixed in", func() {
			attempts := append(history(85, 80, 75, 60, 55, 50), model.AssessmentAttempt{ID: "p", Status: model.StatusPending, AppliedAt: base.AddDate(0, 0, 30)})

			Convey("Then they are ignored", func() {
				So(d.Detect(attempts).Magnitude, ShouldEqual, 25)
			})
		})
	})

	Convey("Given a detector with custom options", t, func() {
		d := scoring.NewTrendDetector(scoring.WithWindow(2), scoring.WithThreshold(1))

		Convey("When two windows of two differ by more than one point", func() {
			tr := d.OfScores([]float64{80, 80, 78, 78})

			Convey("Then the smaller window and threshold apply", func() {
				So(tr.Direction, ShouldEqual, model.TrendImproving)
				So(tr.Magnitude, ShouldEqual, 2)
			})
		})

		Convey("When invalid options are given", func() {
			d := scoring.NewTrendDetector(scoring.WithWindow(0), scoring.WithThreshold(-1))

			Convey("Then defaults are kept", func() {
				So(d.OfScores([]float64{85, 80, 75, 60, 55, 50}).Direction, ShouldEqual, model.TrendImproving)
				So(d.OfScores([]float64{74, 70, 70, 70}).Direction, ShouldEqual, model.TrendStable)
			})
		})
	})
}
