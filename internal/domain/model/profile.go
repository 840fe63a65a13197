package model

import "time"

// CandidateStatus is the raw pipeline status supplied with a candidate record.
type CandidateStatus string

// Raw candidate statuses the profile status mapping knows about.
const (
	CandidateCompleted CandidateStatus = "completed"
	CandidateActive    CandidateStatus = "active"
)

// ProfileStatus is the derived status shown on a profile.
type ProfileStatus string

// Derived profile statuses.
const (
	ProfileTopTalent  ProfileStatus = "top-talent"
	ProfileActive     ProfileStatus = "active"
	ProfileInPipeline ProfileStatus = "in-pipeline"
)

// Candidate is the identity record a profile is built for.
type Candidate struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Email       string          `json:"email" yaml:"email"`
	Phone       string          `json:"phone,omitempty" yaml:"phone,omitempty"`
	MemberSince time.Time       `json:"member_since" yaml:"member_since"`
	Status      CandidateStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// ProficiencyLevel buckets a skill's aggregate score.
type ProficiencyLevel string

// Proficiency levels, best first.
const (
	ProficiencyExpert       ProficiencyLevel = "expert"
	ProficiencyAdvanced     ProficiencyLevel = "advanced"
	ProficiencyIntermediate ProficiencyLevel = "intermediate"
	ProficiencyBasic        ProficiencyLevel = "basic"
	ProficiencyNeedsWork    ProficiencyLevel = "needs-work"
)

// TrendDirection labels score momentum.
type TrendDirection string

// Trend directions.
const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// Trend is a direction plus the signed difference that produced it.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Magnitude float64        `json:"magnitude"`
}

// Evidence ties a skill to one contributing attempt.
type Evidence struct {
	AttemptID string   `json:"attempt_id"`
	Title     string   `json:"title"`
	Score     *float64 `json:"score,omitempty"`
}

// Skill is an inferred competency aggregate.
type Skill struct {
	Name         string           `json:"name"`
	OverallScore float64          `json:"overall_score"`
	Proficiency  ProficiencyLevel `json:"proficiency"`
	Evidence     []Evidence       `json:"evidence"`
	Trend        Trend            `json:"trend"`
}

// TimelineEventType enumerates timeline entries.
type TimelineEventType string

// Timeline event types.
const (
	EventInvitationSent      TimelineEventType = "invitation-sent"
	EventAssessmentStarted   TimelineEventType = "assessment-started"
	EventAssessmentCompleted TimelineEventType = "assessment-completed"
	EventProfileCreated      TimelineEventType = "profile-created"
)

// TimelineMetadata carries the attempt context of a timeline event.
type TimelineMetadata struct {
	AssessmentID    string   `json:"assessment_id,omitempty"`
	AssessmentTitle string   `json:"assessment_title,omitempty"`
	Score           *float64 `json:"score,omitempty"`
}

// TimelineEvent is one point in a candidate's history.
type TimelineEvent struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Type        TimelineEventType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Metadata    TimelineMetadata  `json:"metadata"`
}

// Benchmark compares a candidate against the platform.
type Benchmark struct {
	PlatformAverage float64 `json:"platform_average"`
	SeniorBenchmark float64 `json:"senior_benchmark"`
	Difference      float64 `json:"difference"`
	Percentile      int     `json:"percentile"`
}

// Insights is rule-based narrative text.
type Insights struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Recommendations  []string `json:"recommendations"`
	CareerLevel      string   `json:"career_level"`
	RecommendedRoles []string `json:"recommended_roles"`
}

// ScoreBand is the qualitative label and display color of a score.
type ScoreBand struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ScorePoint is one completed attempt on the score progression chart.
type ScorePoint struct {
	Date       string    `json:"date"`
	Score      float64   `json:"score"`
	Assessment string    `json:"assessment"`
	Band       ScoreBand `json:"band"`
}

// TypePerformance aggregates completed attempts of one assessment type.
type TypePerformance struct {
	Type    AssessmentType `json:"type"`
	Average float64        `json:"average"`
	Count   int            `json:"count"`
}

// RadarPoint is one axis of the skill radar.
type RadarPoint struct {
	Skill string  `json:"skill"`
	Score float64 `json:"score"`
}

// Analytics bundles the chart-oriented views of a profile.
type Analytics struct {
	ScoreProgression  []ScorePoint      `json:"score_progression"`
	PerformanceByType []TypePerformance `json:"performance_by_type"`
	SkillRadar        []RadarPoint      `json:"skill_radar"`
	Benchmark         Benchmark         `json:"benchmark"`
	Insights          Insights          `json:"insights"`
}

// CandidateProfile is the assembled, read-only view of a candidate.
type CandidateProfile struct {
	CandidateID    string              `json:"candidate_id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone,omitempty"`
	MemberSince    time.Time           `json:"member_since"`
	AverageScore   float64             `json:"average_score"`
	ScoreBand      ScoreBand           `json:"score_band"`
	CompletionRate int                 `json:"completion_rate"`
	Percentile     int                 `json:"percentile"`
	Trend          Trend               `json:"trend"`
	Attempts       []AssessmentAttempt `json:"attempts"`
	Skills         []Skill             `json:"skills"`
	Timeline       []TimelineEvent     `json:"timeline"`
	Analytics      Analytics           `json:"analytics"`
	Status         ProfileStatus       `json:"status"`
	Tags           []string            `json:"tags"`
}
