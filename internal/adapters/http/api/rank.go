package api

import (
	"context"
	"net/http"
	"strings"
)

// RankDependencies looks up one candidate's cohort position.
type RankDependencies interface {
	Rank(ctx context.Context, candidateID string) (Entry, error)
}

// RankHandler serves single-candidate rank lookups.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{id}. Candidates without a qualifying
// score are not ranked and answer 404 like unknown ones.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	id, ok := pathID(w, r, op)
	if !ok {
		return
	}
	entry, err := h.deps.Rank(r.Context(), id)
	if err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// pathID extracts the {id} wildcard, answering 400 when it is blank.
func pathID(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeErr(w, NewKind(op, ErrBadRequest))
		return "", false
	}
	return id, true
}
