package scoring

import (
	"math"
	"sort"
)

// PercentileRank positions score within cohort as a rank from the top:
// the cohort is sorted descending, the first index holding a value <= score is
// found, and round(100 * (index+1) / len(cohort)) is returned, bounded to 1..100.
// Lower numbers are closer to the best. A score below every cohort value
// ranks 100. The cohort slice is not modified.
func PercentileRank(score float64, cohort []float64) (int, error) {
	n := len(cohort)
	if n == 0 {
		return 0, ErrEmptyCohort
	}

	sorted := make([]float64, n)
	copy(sorted, cohort)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	return PercentileRankSorted(score, sorted), nil
}

// PercentileRankSorted is PercentileRank over a cohort already sorted highest
// first. It returns 0 for an empty cohort.
func PercentileRankSorted(score float64, sortedDesc []float64) int {
	n := len(sortedDesc)
	if n == 0 {
		return 0
	}
	// first index holding a value <= score; n when every value is higher
	index := sort.Search(n, func(i int) bool { return sortedDesc[i] <= score })
	if index == n {
		index = n - 1
	}

	p := int(math.Round(percentScale * float64(index+1) / float64(n)))
	if p < 1 {
		p = 1
	}
	if p > percentScale {
		p = percentScale
	}
	return p
}
