package seeding

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/scoring"
)

// Share of attempts that reach each outcome; the rest stay in progress.
const (
	completedShare = 0.8
	failedShare    = 0.05
	historyDays    = 90
)

// performer tiers as [min, max) score ranges, weighted by repetition
var tiers = [][2]float64{
	{55, 78}, {55, 78}, {55, 78}, // average, most common
	{75, 90}, {75, 90}, // strong
	{88, 100}, // elite
	{35, 60},  // developing
	{1, 100},  // anything
}

type assessment struct {
	title string
	kind  model.AssessmentType
}

var catalog = []assessment{
	{"React Frontend Assessment", model.AssessmentGeneral},
	{"Node.js Backend Challenge", model.AssessmentGeneral},
	{"System Design Interview", model.AssessmentGeneral},
	{"AWS Cloud Practitioner", model.AssessmentCloud},
	{"DSA Coding Round", model.AssessmentDSA},
	{"Machine Learning Fundamentals", model.AssessmentAI},
	{"Performance Tuning Lab", model.AssessmentGeneral},
	{"Testing Strategies Workshop", model.AssessmentGeneral},
}

var firstNames = []string{"Ada", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "Alan", "Radia"}

// Dataset is a generated seeding workload. Initial holds the first state of
// every attempt; Final moves some of them to a terminal state. Duplicates
// repeats events verbatim to exercise idempotency.
type Dataset struct {
	Seed       uint64            `yaml:"seed"`
	Candidates []model.Candidate `yaml:"candidates"`
	Initial    []AttemptRequest  `yaml:"initial"`
	Final      []AttemptRequest  `yaml:"final"`
	Duplicates []AttemptRequest  `yaml:"duplicates"`
}

// Generate builds a dataset. The same seed and config always produce the
// same scores and statuses; ids are fresh UUIDs.
func Generate(cfg *Config, now time.Time) *Dataset {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := now.UTC().Truncate(time.Second).AddDate(0, 0, -historyDays)

	ds := &Dataset{
		Seed:       seed,
		Candidates: make([]model.Candidate, 0, cfg.Candidates),
		Initial:    make([]AttemptRequest, 0, cfg.Candidates*cfg.AttemptsPerCandidate),
	}

	for i := range cfg.Candidates {
		id := uuid.NewString()
		name := firstNames[i%len(firstNames)]
		ds.Candidates = append(ds.Candidates, model.Candidate{
			ID:          id,
			Name:        name,
			Email:       id[:8] + "@example.com",
			MemberSince: start,
			Status:      model.CandidateActive,
		})

		tier := tiers[rng.IntN(len(tiers))]
		for j := range cfg.AttemptsPerCandidate {
			initial, final := generateAttempt(rng, id, tier, start.Add(time.Duration(j)*24*time.Hour))
			ds.Initial = append(ds.Initial, initial)
			if final != nil {
				ds.Final = append(ds.Final, *final)
			}
		}
	}

	for _, reqs := range [][]AttemptRequest{ds.Initial, ds.Final} {
		for _, r := range reqs {
			if rng.Float64() < cfg.DuplicateRate {
				ds.Duplicates = append(ds.Duplicates, r)
			}
		}
	}
	return ds
}

// generateAttempt returns the opening event of an attempt and, when the
// attempt finishes, the event that moves it to a terminal state.
func generateAttempt(rng *rand.Rand, candidateID string, tier [2]float64, applied time.Time) (AttemptRequest, *AttemptRequest) {
	a := catalog[rng.IntN(len(catalog))]
	attempt := model.AssessmentAttempt{
		ID:              uuid.NewString(),
		CandidateID:     candidateID,
		AssessmentID:    "as-" + slug(a.title),
		AssessmentTitle: a.title,
		AssessmentType:  a.kind,
		Status:          model.StatusInProgress,
		AppliedAt:       applied,
	}
	if rng.IntN(2) == 0 {
		attempt.Status = model.StatusPending
	}
	initial := AttemptRequest{
		EventID:     uuid.NewString(),
		CandidateID: candidateID,
		TS:          applied.Format(time.RFC3339),
		Attempt:     attempt,
	}

	roll := rng.Float64()
	if roll >= completedShare+failedShare {
		return initial, nil
	}

	spent := 20 + rng.IntN(100)
	done := applied.Add(time.Duration(spent) * time.Minute)
	finished := attempt.Clone()
	finished.Status = model.StatusCompleted
	score := tierScore(rng, tier)
	if roll >= completedShare {
		finished.Status = model.StatusFailed
		score = tierScore(rng, [2]float64{1, 40})
	}
	finished.Score = &score
	finished.CompletedAt = &done
	finished.TimeSpent = spent
	finished.Sections = &model.SectionScores{
		MCQ:    ptr(tierScore(rng, tier)),
		Coding: ptr(tierScore(rng, tier)),
	}

	return initial, &AttemptRequest{
		EventID:     uuid.NewString(),
		CandidateID: candidateID,
		TS:          done.Format(time.RFC3339),
		Attempt:     finished,
	}
}

// tierScore draws a score within the tier, rounded to one decimal.
func tierScore(rng *rand.Rand, tier [2]float64) float64 {
	v := tier[0] + rng.Float64()*(tier[1]-tier[0])
	return scoring.Clamp(math.Max(1, math.Round(v*10)/10))
}

// Expected returns the average each candidate should end up ranked with.
// Candidates with no qualifying score are absent.
func (d *Dataset) Expected() map[string]float64 {
	latest := make(map[string]map[string]model.AssessmentAttempt, len(d.Candidates))
	for _, reqs := range [][]AttemptRequest{d.Initial, d.Final} {
		for _, r := range reqs {
			if latest[r.CandidateID] == nil {
				latest[r.CandidateID] = make(map[string]model.AssessmentAttempt)
			}
			latest[r.CandidateID][r.Attempt.ID] = r.Attempt
		}
	}

	out := make(map[string]float64, len(latest))
	for id, byAttempt := range latest {
		attempts := make([]model.AssessmentAttempt, 0, len(byAttempt))
		for _, a := range byAttempt {
			attempts = append(attempts, a)
		}
		if len(scoring.QualifyingScores(attempts)) > 0 {
			out[id] = scoring.AverageScore(attempts)
		}
	}
	return out
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return string(out)
}

func ptr[T any](v T) *T { return &v }
