// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/bsamaha/draftlab/internal/domain/query"
)

// AnalyticsHandler handles the dataset-wide analytics endpoints.
type AnalyticsHandler struct {
	deps Dependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleRosterConstructions handles GET /analytics/roster-constructions.
func (h *AnalyticsHandler) HandleRosterConstructions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	constructions, err := h.deps.RosterConstructionCounts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, constructions)
}

// HandleSlotCorrelation handles
// GET /analytics/slot-correlation?slot=&metric=&top_n=&min_slot_teams=.
func (h *AnalyticsHandler) HandleSlotCorrelation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	params := query.SlotCorrelationParams{
		Metric: query.Metric(q.Get("metric")),
	}

	var err error
	if params.Slot, err = queryInt(q, "slot", 0); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err)
		return
	}
	if params.TopN, err = queryInt(q, "top_n", 0); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err)
		return
	}
	if params.MinSlotTeams, err = queryInt(q, "min_slot_teams", 0); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err)
		return
	}

	corr, err := h.deps.DraftSlotCorrelation(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, corr)
}

// HandleHeatMap handles GET /analytics/heatmap.
func (h *AnalyticsHandler) HandleHeatMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	hm, err := h.deps.HeatMap(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hm)
}
