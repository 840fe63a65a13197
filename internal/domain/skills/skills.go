// Package skills infers skill tags from assessment metadata and aggregates
// attempt scores per skill.
package skills

import (
	"strings"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/scoring"
)

// Rule maps any of its keywords, found in an assessment title, to a skill.
type Rule struct {
	Keywords []string
	Skill    string
}

// DefaultRules returns the keyword table in matching order.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"react", "frontend"}, Skill: "React"},
		{Keywords: []string{"node", "backend"}, Skill: "Node.js"},
		{Keywords: []string{"system design", "architecture"}, Skill: "System Design"},
		{Keywords: []string{"aws", "cloud"}, Skill: "Cloud (AWS)"},
		{Keywords: []string{"dsa", "coding", "algorithm"}, Skill: "DSA"},
		{Keywords: []string{"performance"}, Skill: "Performance Optimization"},
		{Keywords: []string{"test", "testing"}, Skill: "Testing Strategies"},
	}
}

// DefaultFallbacks returns the skill used per assessment type when no
// keyword matches. Types missing from the map fall back to FullStack.
func DefaultFallbacks() map[model.AssessmentType]string {
	return map[model.AssessmentType]string{
		model.AssessmentDSA:   "DSA",
		model.AssessmentCloud: "Cloud (AWS)",
		model.AssessmentAI:    "AI/ML",
	}
}

// FullStack is the catch-all skill.
const FullStack = "Full Stack"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithRules replaces the keyword table.
func WithRules(rules []Rule) Option {
	return func(e *Extractor) {
		if len(rules) > 0 {
			e.rules = normalize(rules)
		}
	}
}

// WithTrendDetector sets the detector used for per-skill trends.
func WithTrendDetector(d *scoring.TrendDetector) Option {
	return func(e *Extractor) {
		if d != nil {
			e.trend = d
		}
	}
}

// Extractor turns attempts into skills. Its tables are copied at
// construction and never modified, so one Extractor may serve concurrent calls.
type Extractor struct {
	rules     []Rule
	fallbacks map[model.AssessmentType]string
	trend     *scoring.TrendDetector
}

// NewExtractor creates an extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		rules:     normalize(DefaultRules()),
		fallbacks: DefaultFallbacks(),
		trend:     scoring.NewTrendDetector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// normalize lower-cases keywords into a fresh table.
func normalize(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			kws[j] = strings.ToLower(k)
		}
		out[i] = Rule{Keywords: kws, Skill: r.Skill}
	}
	return out
}

// Extract returns the skills an attempt evidences, in table order. A title
// may match several rules. With no match the assessment type decides.
func (e *Extractor) Extract(a *model.AssessmentAttempt) []string {
	title := strings.ToLower(a.AssessmentTitle)
	var out []string
	for _, r := range e.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(title, kw) {
				out = appendUnique(out, r.Skill)
				break
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	if s, ok := e.fallbacks[a.AssessmentType]; ok {
		return []string{s}
	}
	return []string{FullStack}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// Aggregate folds attempts into skills ordered by first extraction. Every
// attempt counts toward each skill it produced. The overall score is the mean
// of qualifying scores; ungraded attempts still appear as evidence.
func (e *Extractor) Aggregate(attempts []model.AssessmentAttempt) []model.Skill {
	var order []string
	grouped := make(map[string][]model.AssessmentAttempt)
	for i := range attempts {
		for _, name := range e.Extract(&attempts[i]) {
			if _, seen := grouped[name]; !seen {
				order = append(order, name)
			}
			grouped[name] = append(grouped[name], attempts[i])
		}
	}

	out := make([]model.Skill, 0, len(order))
	for _, name := range order {
		group := grouped[name]
		avg := scoring.AverageScore(group)
		evidence := make([]model.Evidence, len(group))
		for i := range group {
			evidence[i] = model.Evidence{
				AttemptID: group[i].ID,
				Title:     group[i].AssessmentTitle,
				Score:     copyScore(group[i].Score),
			}
		}
		out = append(out, model.Skill{
			Name:         name,
			OverallScore: avg,
			Proficiency:  ClassifyProficiency(avg),
			Evidence:     evidence,
			Trend:        e.trend.Detect(group),
		})
	}
	return out
}

func copyScore(s *float64) *float64 {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ClassifyProficiency buckets a skill score.
func ClassifyProficiency(score float64) model.ProficiencyLevel {
	switch {
	case score >= 90:
		return model.ProficiencyExpert
	case score >= 80:
		return model.ProficiencyAdvanced
	case score >= 70:
		return model.ProficiencyIntermediate
	case score >= 60:
		return model.ProficiencyBasic
	default:
		return model.ProficiencyNeedsWork
	}
}

// Extract runs the default extractor on one attempt.
func Extract(a *model.AssessmentAttempt) []string {
	return NewExtractor().Extract(a)
}

// Aggregate runs the default extractor over attempts.
func Aggregate(attempts []model.AssessmentAttempt) []model.Skill {
	return NewExtractor().Aggregate(attempts)
}
