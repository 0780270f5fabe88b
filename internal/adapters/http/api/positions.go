// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/query"
)

// PositionsHandler handles the per-position aggregate endpoints.
type PositionsHandler struct {
	deps Dependencies
}

// NewPositionsHandler creates a new positions handler.
func NewPositionsHandler(deps Dependencies) *PositionsHandler {
	return &PositionsHandler{deps: deps}
}

// HandlePositionStats handles GET /positions/stats.
func (h *PositionsHandler) HandlePositionStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	stats, err := h.deps.PositionStats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleFirstPicks handles GET /positions/first-picks.
func (h *PositionsHandler) HandleFirstPicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	stats, err := h.deps.FirstPlayerStats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleRoundCounts handles GET /positions/rounds?position=&aggregation=.
func (h *PositionsHandler) HandleRoundCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	params := query.RoundCountsParams{
		Position:    model.Position(q.Get("position")),
		Aggregation: query.Aggregation(q.Get("aggregation")),
	}

	counts, err := h.deps.RoundCounts(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
