package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrEmptyCohort is returned when a percentile is requested against an
	// empty cohort. Callers must supply at least one cohort score.
	ErrEmptyCohort = errors.New("empty cohort")
)
