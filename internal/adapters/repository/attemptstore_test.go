package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/talentlens/internal/adapters/repository"
	"github.com/okian/talentlens/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func attempt(id string, status model.AttemptStatus, score *float64) model.AssessmentAttempt {
	a := model.AssessmentAttempt{
		ID:              id,
		AssessmentID:    "asm-" + id,
		AssessmentTitle: "Backend APIs",
		AssessmentType:  model.AssessmentGeneral,
		Status:          status,
		AppliedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Score:           score,
	}
	if status.Terminal() {
		done := a.AppliedAt.Add(time.Hour)
		a.CompletedAt = &done
	}
	return a
}

func score(v float64) *float64 { return &v }

func TestAttemptStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an attempt store with one candidate", t, func() {
		store := repository.NewAttemptStore()
		So(store.PutCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada"}), ShouldBeNil)

		Convey("When an attempt is inserted", func() {
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusPending, nil)), ShouldBeNil)

			Convey("Then it is returned with the candidate id set", func() {
				got, err := store.Attempts(ctx, "c1")
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].CandidateID, ShouldEqual, "c1")
			})

			Convey("And it can move forward through its lifecycle", func() {
				So(store.Upsert(ctx, "c1", attempt("a1", model.StatusInProgress, nil)), ShouldBeNil)
				So(store.Upsert(ctx, "c1", attempt("a1", model.StatusCompleted, score(88))), ShouldBeNil)

				got, _ := store.Attempts(ctx, "c1")
				So(len(got), ShouldEqual, 1)
				So(got[0].Status, ShouldEqual, model.StatusCompleted)
				So(*got[0].Score, ShouldEqual, 88)
			})
		})

		Convey("When a completed attempt is moved backwards", func() {
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusCompleted, score(70))), ShouldBeNil)
			err := store.Upsert(ctx, "c1", attempt("a1", model.StatusInProgress, nil))

			Convey("Then the write is rejected and the stored attempt is kept", func() {
				So(errors.Is(err, model.ErrInvalidTransition), ShouldBeTrue)
				got, _ := store.Attempts(ctx, "c1")
				So(got[0].Status, ShouldEqual, model.StatusCompleted)
			})
		})

		Convey("When a completed attempt is re-graded", func() {
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusCompleted, score(70))), ShouldBeNil)
			err := store.Upsert(ctx, "c1", attempt("a1", model.StatusCompleted, score(75)))

			Convey("Then the new score replaces the old one", func() {
				So(err, ShouldBeNil)
				got, _ := store.Attempts(ctx, "c1")
				So(*got[0].Score, ShouldEqual, 75)
			})
		})

		Convey("When an invalid attempt is written", func() {
			err := store.Upsert(ctx, "c1", attempt("", model.StatusPending, nil))

			Convey("Then validation fails", func() {
				So(errors.Is(err, model.ErrInvalidAttempt), ShouldBeTrue)
			})
		})

		Convey("When an attempt targets an unknown candidate", func() {
			err := store.Upsert(ctx, "ghost", attempt("a1", model.StatusPending, nil))

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Attempts(ctx, "ghost")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Candidate(ctx, "ghost")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the caller mutates returned attempts", func() {
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusCompleted, score(70))), ShouldBeNil)
			got, _ := store.Attempts(ctx, "c1")
			*got[0].Score = 1
			got[0].Status = model.StatusFailed

			Convey("Then the stored state is unchanged", func() {
				again, _ := store.Attempts(ctx, "c1")
				So(*again[0].Score, ShouldEqual, 70)
				So(again[0].Status, ShouldEqual, model.StatusCompleted)
			})
		})

		Convey("When the candidate record is replaced", func() {
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusPending, nil)), ShouldBeNil)
			So(store.PutCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada Park"}), ShouldBeNil)

			Convey("Then its attempts survive", func() {
				c, err := store.Candidate(ctx, "c1")
				So(err, ShouldBeNil)
				So(c.Name, ShouldEqual, "Ada Park")
				got, _ := store.Attempts(ctx, "c1")
				So(len(got), ShouldEqual, 1)
			})
		})

		Convey("When more candidates are registered", func() {
			So(store.PutCandidate(ctx, model.Candidate{ID: "c0"}), ShouldBeNil)
			So(store.PutCandidate(ctx, model.Candidate{ID: "c2"}), ShouldBeNil)

			Convey("Then Candidates lists them by id", func() {
				list := store.Candidates(ctx)
				So(len(list), ShouldEqual, 3)
				So(list[0].ID, ShouldEqual, "c0")
				So(list[2].ID, ShouldEqual, "c2")
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When attempts are written and one write is rejected", func() {
			_, v0, err := store.History(ctx, "c1")
			So(err, ShouldBeNil)
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusPending, nil)), ShouldBeNil)
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusCompleted, score(70))), ShouldBeNil)
			So(store.Upsert(ctx, "c1", attempt("a1", model.StatusPending, nil)), ShouldNotBeNil)

			Convey("Then the version counts accepted writes only", func() {
				got, v, err := store.History(ctx, "c1")
				So(err, ShouldBeNil)
				So(v0, ShouldEqual, uint64(0))
				So(v, ShouldEqual, uint64(2))
				So(got, ShouldHaveLength, 1)
			})

			Convey("And re-registering the candidate keeps the version", func() {
				So(store.PutCandidate(ctx, model.Candidate{ID: "c1", Name: "Ada L."}), ShouldBeNil)
				_, v, _ := store.History(ctx, "c1")
				So(v, ShouldEqual, uint64(2))
			})
		})

		Convey("When the history of an unknown candidate is read", func() {
			_, _, err := store.History(ctx, "ghost")

			Convey("Then not found is reported", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a candidate without an id is registered", func() {
			err := store.PutCandidate(ctx, model.Candidate{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidID), ShouldBeTrue)
			})
		})

		Convey("When attempts are written concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					id := string(rune('A'+i%26)) + string(rune('a'+i/26))
					_ = store.Upsert(ctx, "c1", attempt(id, model.StatusPending, nil))
				}()
			}
			wg.Wait()

			Convey("Then every attempt is stored once", func() {
				got, _ := store.Attempts(ctx, "c1")
				So(len(got), ShouldEqual, 50)
			})
		})
	})
}
