package cache

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestVersionsReset(t *testing.T) {
	convey.Convey("Given candidates invalidated one by one", t, func() {
		c := New(WithMaxEntries(4))
		for _, id := range []string{"c1", "c2", "c3"} {
			c.Invalidate(id)
		}
		convey.So(c.versions, convey.ShouldHaveLength, 3)

		convey.Convey("When the cohort changes", func() {
			c.InvalidateAll()

			convey.Convey("Then the per-candidate versions are dropped", func() {
				convey.So(c.versions, convey.ShouldBeEmpty)
			})
		})
	})
}
