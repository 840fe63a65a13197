package profile

import (
	"github.com/okian/talentlens/internal/domain/scoring"
	"github.com/okian/talentlens/internal/domain/skills"
)

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithSeniorBenchmark overrides the fixed senior reference score.
func WithSeniorBenchmark(score float64) Option {
	return func(a *Assembler) {
		if score > 0 {
			a.seniorBenchmark = score
		}
	}
}

// WithTrendDetector sets the detector used for the overall and per-skill trends.
func WithTrendDetector(d *scoring.TrendDetector) Option {
	return func(a *Assembler) {
		if d != nil {
			a.trend = d
		}
	}
}

// WithExtractor sets the skill extractor.
func WithExtractor(e *skills.Extractor) Option {
	return func(a *Assembler) {
		if e != nil {
			a.extractor = e
		}
	}
}

// WithConcurrency runs the independent components on separate goroutines.
func WithConcurrency(enabled bool) Option {
	return func(a *Assembler) {
		a.concurrent = enabled
	}
}
