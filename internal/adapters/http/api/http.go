// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/talentlens/internal/domain/dedupe"
	"github.com/okian/talentlens/internal/domain/model"
	"github.com/okian/talentlens/internal/domain/types"
)

// DefaultMaxLeaderboardLimit caps GET /leaderboard when no limit is configured.
const DefaultMaxLeaderboardLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Candidate writes and reads.
	RegisterCandidate(ctx context.Context, c model.Candidate) error
	Candidate(ctx context.Context, id string) (model.Candidate, error)

	// Enqueue pushes an attempt event for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.AttemptEvent) bool

	// Read operations expose profiles and cohort ranking.
	Profile(ctx context.Context, candidateID string) (model.CandidateProfile, error)
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, candidateID string) (Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps the limit accepted by GET /leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxLimit int

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	candidatesHandler  *CandidatesHandler
	attemptsHandler    *AttemptsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxLimit: DefaultMaxLeaderboardLimit}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.candidatesHandler = NewCandidatesHandler(deps)
	s.attemptsHandler = NewAttemptsHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit)
	s.rankHandler = NewRankHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /candidates", MetricsMiddleware(s.candidatesHandler.HandlePostCandidate, "candidates"))
	mux.HandleFunc("GET /candidates/{id}/profile", MetricsMiddleware(s.candidatesHandler.HandleGetProfile, "profile"))
	mux.HandleFunc("POST /attempts", MetricsMiddleware(s.attemptsHandler.HandlePostAttempt, "attempts"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErr picks the status and code from the error's kind.
func writeErr(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, err)
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
