// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/bsamaha/draftlab/internal/domain/combos"
)

// CombinationsHandler handles the roster combination search endpoint.
type CombinationsHandler struct {
	deps Dependencies
}

// NewCombinationsHandler creates a new combinations handler.
func NewCombinationsHandler(deps Dependencies) *CombinationsHandler {
	return &CombinationsHandler{deps: deps}
}

// combinationRequest mirrors the request schema for POST /combinations.
type combinationRequest struct {
	RequiredPlayers []string `json:"required_players"`
	NRounds         int      `json:"n_rounds"`
	Limit           int      `json:"limit"`
	UniqueRosters   bool     `json:"unique_rosters"`
}

// HandleCombinations handles POST /combinations requests.
func (h *CombinationsHandler) HandleCombinations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req combinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err)
		return
	}

	res, err := h.deps.PlayerCombinations(r.Context(), combos.Params{
		RequiredPlayers: req.RequiredPlayers,
		NRounds:         req.NRounds,
		Limit:           req.Limit,
		UniqueRosters:   req.UniqueRosters,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
