package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/talentlens/internal/domain/dedupe"
	"github.com/okian/talentlens/internal/domain/model"
)

// AttemptDependencies defines the interface for attempt ingestion.
type AttemptDependencies interface {
	dedupe.Deduper
	Candidate(ctx context.Context, id string) (model.Candidate, error)
	Enqueue(ctx context.Context, e model.AttemptEvent) bool
}

// AttemptsHandler handles attempt submissions.
type AttemptsHandler struct {
	deps AttemptDependencies
}

// NewAttemptsHandler creates a new attempts handler.
func NewAttemptsHandler(deps AttemptDependencies) *AttemptsHandler {
	return &AttemptsHandler{deps: deps}
}

// attemptRequest mirrors the OpenAPI schema for POST /attempts.
type attemptRequest struct {
	EventID     string                  `json:"event_id"`
	CandidateID string                  `json:"candidate_id"`
	Attempt     model.AssessmentAttempt `json:"attempt"`
	TS          string                  `json:"ts"`
}

func (a *attemptRequest) toEvent() (model.AttemptEvent, error) {
	switch {
	case strings.TrimSpace(a.EventID) == "":
		return model.AttemptEvent{}, errors.New("missing event_id")
	case strings.TrimSpace(a.CandidateID) == "":
		return model.AttemptEvent{}, errors.New("missing candidate_id")
	case strings.TrimSpace(a.TS) == "":
		return model.AttemptEvent{}, errors.New("missing ts")
	case a.Attempt.CandidateID != "" && a.Attempt.CandidateID != a.CandidateID:
		return model.AttemptEvent{}, errors.New("attempt.candidate_id does not match candidate_id")
	}
	ts, err := time.Parse(time.RFC3339, a.TS)
	if err != nil {
		return model.AttemptEvent{}, errors.New("invalid ts; must be RFC3339")
	}
	if err := a.Attempt.Validate(); err != nil {
		return model.AttemptEvent{}, err
	}

	attempt := a.Attempt
	attempt.CandidateID = a.CandidateID
	return model.AttemptEvent{
		EventID:     a.EventID,
		CandidateID: a.CandidateID,
		Attempt:     attempt,
		TS:          ts,
	}, nil
}

// HandlePostAttempt handles POST /attempts requests.
func (h *AttemptsHandler) HandlePostAttempt(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_attempt"
	var req attemptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := req.toEvent()
	if err != nil {
		writeErr(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if _, err := h.deps.Candidate(r.Context(), e.CandidateID); err != nil {
		writeErr(w, Wrap(op, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), e.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), e); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), e.EventID)
		writeErr(w, NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
