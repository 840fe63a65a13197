// Package scoring aggregates attempt scores into the numeric metrics of a
// candidate profile: averages, completion, score bands, cohort percentile
// and trend.
package scoring

import (
	"math"

	"github.com/okian/talentlens/internal/domain/model"
)

// Score bounds.
const (
	minScoreValue = 0
	maxScoreValue = 100
	percentScale  = 100
)

// Mean returns the arithmetic mean of values, or 0 when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// QualifyingScores returns the scores that count toward numeric aggregates,
// in input order. Missing and zero scores are skipped.
func QualifyingScores(attempts []model.AssessmentAttempt) []float64 {
	out := make([]float64, 0, len(attempts))
	for i := range attempts {
		if v, ok := attempts[i].QualifyingScore(); ok {
			out = append(out, v)
		}
	}
	return out
}

// AverageScore is the mean over qualifying scores. Attempts without a score,
// or with a score of exactly zero, are excluded. Returns 0 when none qualify.
func AverageScore(attempts []model.AssessmentAttempt) float64 {
	return Mean(QualifyingScores(attempts))
}

// CompletionRate returns round(100 * completed / total) as an integer
// percentage. An empty list yields 0.
func CompletionRate(attempts []model.AssessmentAttempt) int {
	if len(attempts) == 0 {
		return 0
	}
	completed := 0
	for i := range attempts {
		if attempts[i].Status == model.StatusCompleted {
			completed++
		}
	}
	return int(math.Round(percentScale * float64(completed) / float64(len(attempts))))
}

// Clamp bounds a score to the 0-100 range.
func Clamp(score float64) float64 {
	return math.Max(minScoreValue, math.Min(maxScoreValue, score))
}
