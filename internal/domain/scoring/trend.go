package scoring

import (
	"sort"

	"github.com/okian/talentlens/internal/domain/model"
)

// Default trend configuration constants.
const (
	DefaultTrendWindow    = 3
	DefaultTrendThreshold = 5.0
	minTrendScores        = 2
)

// TrendOption applies a configuration option to the TrendDetector.
type TrendOption func(*TrendDetector)

// WithWindow sets how many scores each comparison window holds.
func WithWindow(window int) TrendOption {
	return func(d *TrendDetector) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithThreshold sets the mean difference that must be exceeded before a
// trend is reported as improving or declining.
func WithThreshold(threshold float64) TrendOption {
	return func(d *TrendDetector) {
		if threshold >= 0 {
			d.threshold = threshold
		}
	}
}

// TrendDetector compares a recent window of scores against the window before it.
// It holds only immutable configuration and is safe for concurrent use.
type TrendDetector struct {
	window    int
	threshold float64
}

// NewTrendDetector creates a detector with configuration options.
func NewTrendDetector(opts ...TrendOption) *TrendDetector {
	d := &TrendDetector{
		window:    DefaultTrendWindow,
		threshold: DefaultTrendThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect labels the momentum of attempts. Qualifying scores are ordered most
// recent first by completion time (application time when not completed).
func (d *TrendDetector) Detect(attempts []model.AssessmentAttempt) model.Trend {
	return d.OfScores(RecentScores(attempts))
}

// OfScores applies the window rule to scores already ordered most recent first.
func (d *TrendDetector) OfScores(scores []float64) model.Trend {
	stable := model.Trend{Direction: model.TrendStable}
	if len(scores) < minTrendScores || len(scores) <= d.window {
		return stable
	}

	recent := scores[:d.window]
	olderEnd := min(len(scores), 2*d.window)
	older := scores[d.window:olderEnd]

	diff := Mean(recent) - Mean(older)
	switch {
	case diff > d.threshold:
		return model.Trend{Direction: model.TrendImproving, Magnitude: diff}
	case diff < -d.threshold:
		return model.Trend{Direction: model.TrendDeclining, Magnitude: diff}
	default:
		return model.Trend{Direction: model.TrendStable, Magnitude: diff}
	}
}

// DetectTrend runs the default detector over attempts.
func DetectTrend(attempts []model.AssessmentAttempt) model.Trend {
	return NewTrendDetector().Detect(attempts)
}

// RecentScores returns qualifying scores ordered most recent first. Attempts
// sharing a timestamp keep their input order.
func RecentScores(attempts []model.AssessmentAttempt) []float64 {
	idx := make([]int, 0, len(attempts))
	for i := range attempts {
		if _, ok := attempts[i].QualifyingScore(); ok {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return attempts[idx[a]].RecencyTime().After(attempts[idx[b]].RecencyTime())
	})

	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i], _ = attempts[j].QualifyingScore()
	}
	return out
}
