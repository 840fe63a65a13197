package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/talentlens/internal/domain/model"
)

// CandidateDependencies defines the interface for candidate operations.
type CandidateDependencies interface {
	RegisterCandidate(ctx context.Context, c model.Candidate) error
	Profile(ctx context.Context, candidateID string) (model.CandidateProfile, error)
}

// CandidatesHandler handles candidate registration and profile reads.
type CandidatesHandler struct {
	deps CandidateDependencies
	now  func() time.Time
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps CandidateDependencies) *CandidatesHandler {
	return &CandidatesHandler{deps: deps, now: time.Now}
}

// candidateRequest mirrors the OpenAPI schema for POST /candidates.
type candidateRequest struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone,omitempty"`
	MemberSince string                `json:"member_since,omitempty"`
	Status      model.CandidateStatus `json:"status,omitempty"`
}

func (c *candidateRequest) toModel(now time.Time) (model.Candidate, error) {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return model.Candidate{}, errors.New("missing id")
	case strings.TrimSpace(c.Name) == "":
		return model.Candidate{}, errors.New("missing name")
	case strings.TrimSpace(c.Email) == "":
		return model.Candidate{}, errors.New("missing email")
	}

	since := now.UTC()
	if c.MemberSince != "" {
		t, err := time.Parse(time.RFC3339, c.MemberSince)
		if err != nil {
			return model.Candidate{}, errors.New("invalid member_since; must be RFC3339")
		}
		since = t
	}

	return model.Candidate{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		MemberSince: since,
		Status:      c.Status,
	}, nil
}

// HandlePostCandidate handles POST /candidates requests.
func (h *CandidatesHandler) HandlePostCandidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_candidate"
	var req candidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := req.toModel(h.now())
	if err != nil {
		writeErr(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.RegisterCandidate(r.Context(), c); err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleGetProfile handles GET /candidates/{id}/profile requests.
func (h *CandidatesHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	id, ok := pathID(w, r, op)
	if !ok {
		return
	}
	p, err := h.deps.Profile(r.Context(), id)
	if err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
