package profile

import (
	"fmt"
	"math"

	"github.com/okian/talentlens/internal/domain/model"
)

// Insight thresholds.
const (
	topTalentScore       = 90.0
	strongCandidateScore = 80.0
	seniorFitScore       = 85.0
	midFitScore          = 70.0
	strengthScore        = 85.0
	weaknessScore        = 70.0
	maxStrengths         = 3
	maxWeaknesses        = 2
)

// level is one row of the career band table.
type level struct {
	min            float64
	label          string
	roles          []string
	recommendation string
}

// levels returns the career bands, highest first.
func levels() []level {
	return []level{
		{
			min:            seniorFitScore,
			label:          "Senior",
			roles:          []string{"Senior Software Engineer", "Tech Lead", "Solutions Architect"},
			recommendation: "Strong fit for senior-level roles; fast-track to final interviews",
		},
		{
			min:            midFitScore,
			label:          "Mid-Level",
			roles:          []string{"Software Engineer", "Full Stack Developer"},
			recommendation: "Good fit for mid-level roles; schedule a technical deep-dive interview",
		},
		{
			min:            0,
			label:          "Junior",
			roles:          []string{"Junior Developer", "Associate Engineer"},
			recommendation: "Best suited for junior roles or a structured training program",
		},
	}
}

func levelFor(average float64) level {
	ls := levels()
	for _, l := range ls {
		if average >= l.min {
			return l
		}
	}
	return ls[len(ls)-1]
}

// trendRecommendation is the fixed phrase for each trend direction.
func trendRecommendation(d model.TrendDirection) string {
	switch d {
	case model.TrendImproving:
		return "Scores are improving; recent assessments outperform earlier ones"
	case model.TrendDeclining:
		return "Recent scores are declining; review the latest results before advancing"
	default:
		return "Performance is consistent across assessments"
	}
}

// BuildInsights generates the rule-based narrative for a profile.
func BuildInsights(average float64, trend model.Trend, list []model.Skill) model.Insights {
	strengths := make([]string, 0, maxStrengths)
	weaknesses := make([]string, 0, maxWeaknesses)
	for _, s := range list {
		if s.OverallScore >= strengthScore && len(strengths) < maxStrengths {
			strengths = append(strengths, fmt.Sprintf("Consistently strong in %s (%d%% avg)", s.Name, roundScore(s.OverallScore)))
		}
		if s.OverallScore < weaknessScore && len(weaknesses) < maxWeaknesses {
			weaknesses = append(weaknesses, fmt.Sprintf("%s needs focus (%d%%)", s.Name, roundScore(s.OverallScore)))
		}
	}

	l := levelFor(average)
	top := "Keep assessing to build a fuller skill profile"
	if average >= topTalentScore {
		top = "Top performer: prioritize for immediate outreach"
	}

	roles := make([]string, len(l.roles))
	copy(roles, l.roles)

	return model.Insights{
		Strengths:        strengths,
		Weaknesses:       weaknesses,
		Recommendations:  []string{l.recommendation, trendRecommendation(trend.Direction), top},
		CareerLevel:      l.label,
		RecommendedRoles: roles,
	}
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
