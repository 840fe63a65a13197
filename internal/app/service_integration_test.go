package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/talentlens/internal/app"
	"github.com/okian/talentlens/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with three registered candidates", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// one worker keeps events in submission order
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		for _, c := range []model.Candidate{
			candidate("c1", "Ada"),
			candidate("c2", "Grace"),
			candidate("c3", "Linus"),
		} {
			So(svc.RegisterCandidate(ctx, c), ShouldBeNil)
		}

		events := []model.AttemptEvent{
			event("e1", "c1", completed("a1", "React", 90, 0)),
			event("e2", "c1", completed("a2", "React", 80, 1)),
			event("e4", "c3", inProgress("a4", "Python", 2)),
			event("e3", "c2", completed("a3", "Go", 70, 0)),
		}
		for _, e := range events {
			So(svc.Enqueue(ctx, e), ShouldBeTrue)
		}
		So(waitFor(func() bool {
			return len(svc.Cohort(ctx).Scores) == 2
		}, 5*time.Second), ShouldBeTrue)

		Convey("When reading the leaderboard", func() {
			top, err := svc.TopN(ctx, 10)

			Convey("Then only scored candidates are ranked", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 2)
				So(top[0].CandidateID, ShouldEqual, "c1")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[0].Score, ShouldEqual, 85)
				So(top[0].Percentile, ShouldEqual, 50)
				So(top[1].CandidateID, ShouldEqual, "c2")
				So(top[1].Rank, ShouldEqual, 2)
				So(top[1].Percentile, ShouldEqual, 100)
			})

			Convey("And the cohort average covers ranked candidates only", func() {
				So(svc.Cohort(ctx).PlatformAverage, ShouldEqual, 77.5)
			})
		})

		Convey("When reading profiles", func() {
			p1, err := svc.Profile(ctx, "c1")
			So(err, ShouldBeNil)
			p3, err := svc.Profile(ctx, "c3")
			So(err, ShouldBeNil)

			Convey("Then scores and benchmarks reflect the cohort", func() {
				So(p1.AverageScore, ShouldEqual, 85)
				So(p1.Percentile, ShouldEqual, 50)
				So(p1.Analytics.Benchmark.PlatformAverage, ShouldEqual, 77.5)
				So(p1.Analytics.Benchmark.Difference, ShouldEqual, 7.5)
				So(p1.Attempts, ShouldHaveLength, 2)
			})

			Convey("And an unscored candidate ranks last", func() {
				So(p3.AverageScore, ShouldEqual, 0)
				So(p3.Percentile, ShouldEqual, 100)
				So(p3.CompletionRate, ShouldEqual, 0)
				So(p3.Attempts, ShouldHaveLength, 1)
			})
		})

		Convey("When an in-progress attempt completes", func() {
			_, err := svc.Profile(ctx, "c1")
			So(err, ShouldBeNil)

			done := completed("a4", "Python", 95, 2)
			So(svc.Enqueue(ctx, event("e5", "c3", done)), ShouldBeTrue)
			So(waitFor(func() bool {
				e, err := svc.Rank(ctx, "c3")
				return err == nil && e.Rank == 1
			}, 5*time.Second), ShouldBeTrue)

			Convey("Then the candidate joins the cohort at the top", func() {
				e, err := svc.Rank(ctx, "c3")
				So(err, ShouldBeNil)
				So(e.Score, ShouldEqual, 95)
				So(e.Percentile, ShouldEqual, 33)
			})

			Convey("And other cached profiles see the new cohort", func() {
				p1, err := svc.Profile(ctx, "c1")
				So(err, ShouldBeNil)
				So(p1.Percentile, ShouldEqual, 67)
			})

			Convey("And a backward transition is rejected", func() {
				So(svc.Enqueue(ctx, event("e6", "c3", inProgress("a4", "Python", 2))), ShouldBeTrue)
				// a later event on the single worker proves e6 was handled
				So(svc.Enqueue(ctx, event("e7", "c2", completed("a7", "Go", 90, 3))), ShouldBeTrue)
				So(waitFor(func() bool {
					e, err := svc.Rank(ctx, "c2")
					return err == nil && e.Score == 80
				}, 5*time.Second), ShouldBeTrue)

				p3, err := svc.Profile(ctx, "c3")
				So(err, ShouldBeNil)
				So(p3.Attempts[0].Status, ShouldEqual, model.StatusCompleted)
				So(p3.AverageScore, ShouldEqual, 95)
			})
		})

		Convey("When an attempt for an unknown candidate is processed", func() {
			So(svc.Enqueue(ctx, event("e8", "ghost", completed("a8", "Go", 99, 0))), ShouldBeTrue)
			So(svc.Enqueue(ctx, event("e9", "c2", completed("a9", "Go", 50, 1))), ShouldBeTrue)
			So(waitFor(func() bool {
				e, err := svc.Rank(ctx, "c2")
				return err == nil && e.Score == 60
			}, 5*time.Second), ShouldBeTrue)

			Convey("Then it never reaches the cohort", func() {
				_, err := svc.Rank(ctx, "ghost")
				So(err, ShouldNotBeNil)
				So(svc.Cohort(ctx).Scores, ShouldHaveLength, 2)
			})
		})

		Convey("When warming the cache", func() {
			n, err := svc.Warm(ctx)

			Convey("Then every candidate profile is cached", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
				So(svc.GetStats(ctx)["cachedProfiles"], ShouldEqual, 3)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a service with several workers", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(10_000),
			service.WithParallelAssembly(true),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		const candidates = 20
		const perCandidate = 5
		for i := range candidates {
			So(svc.RegisterCandidate(ctx, candidate(fmt.Sprintf("c%02d", i), "Candidate")), ShouldBeNil)
		}

		Convey("When goroutines enqueue and read concurrently", func() {
			var wg sync.WaitGroup
			for i := range candidates {
				wg.Add(1)
				go func() {
					defer wg.Done()
					id := fmt.Sprintf("c%02d", i)
					for j := range perCandidate {
						a := completed(fmt.Sprintf("%s-a%d", id, j), "Go", float64(50+i), j)
						svc.Enqueue(ctx, event(fmt.Sprintf("%s-e%d", id, j), id, a))
						_, _ = svc.Profile(ctx, id)
						_, _ = svc.TopN(ctx, 5)
					}
				}()
			}
			wg.Wait()

			Convey("Then every candidate ends up ranked", func() {
				So(waitFor(func() bool {
					return len(svc.Cohort(ctx).Scores) == candidates
				}, 5*time.Second), ShouldBeTrue)

				top, err := svc.TopN(ctx, 3)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 3)
				So(top[0].CandidateID, ShouldEqual, "c19")
				So(top[0].Score, ShouldEqual, 69)
			})

			Convey("And profiles read after ingestion are complete", func() {
				So(waitFor(func() bool {
					p, err := svc.Profile(ctx, "c00")
					return err == nil && len(p.Attempts) == perCandidate
				}, 5*time.Second), ShouldBeTrue)
			})
		})
	})
}

func TestServiceSameCandidateOrdering(t *testing.T) {
	Convey("Given a service whose workers share one candidate's events", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(service.WithWorkerCount(8), service.WithQueueSize(1000))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()
		So(svc.RegisterCandidate(ctx, candidate("c1", "Ada")), ShouldBeNil)

		Convey("When many attempts for that candidate are ingested at once", func() {
			const n = 200
			for i := range n {
				a := completed(fmt.Sprintf("a%03d", i), "Go", float64(1+(i*37)%100), i%30)
				So(svc.Enqueue(ctx, event(fmt.Sprintf("e%03d", i), "c1", a)), ShouldBeTrue)
			}
			So(waitFor(func() bool {
				stats := svc.GetStats(ctx)
				p, err := svc.Profile(ctx, "c1")
				return err == nil && len(p.Attempts) == n &&
					stats["queueLength"] == 0 && stats["activeWorkers"] == 0
			}, 10*time.Second), ShouldBeTrue)

			Convey("Then the ranked score is the candidate's current average", func() {
				p, err := svc.Profile(ctx, "c1")
				So(err, ShouldBeNil)
				e, err := svc.Rank(ctx, "c1")
				So(err, ShouldBeNil)
				So(e.Score, ShouldEqual, p.AverageScore)
				So(svc.Cohort(ctx).PlatformAverage, ShouldEqual, p.AverageScore)
			})
		})
	})
}
