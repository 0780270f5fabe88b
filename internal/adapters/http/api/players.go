// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/query"
)

// PlayersHandler handles the player listing and per-player endpoints.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleListPlayers handles GET /players requests. Query parameters:
// positions (comma-separated), search, limit, offset, sort_by, sort_order.
func (h *PlayersHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	params := query.ListPlayersParams{
		SearchTerm: q.Get("search"),
		SortBy:     query.SortKey(q.Get("sort_by")),
		SortOrder:  query.SortOrder(q.Get("sort_order")),
	}
	if raw := q.Get("positions"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			params.Positions = append(params.Positions, model.Position(strings.TrimSpace(part)))
		}
	}

	var err error
	if params.Limit, err = queryInt(q, "limit", 0); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err)
		return
	}
	if params.Offset, err = queryInt(q, "offset", 0); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err)
		return
	}

	page, err := h.deps.ListPlayers(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandlePlayerDetails handles GET /players/details?name=&position=&team=.
func (h *PlayersHandler) HandlePlayerDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	details, err := h.deps.PlayerDetails(r.Context(), playerParams(r.URL.Query()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// HandlePlayerHistogram handles GET /players/histogram?name=&position=&team=.
func (h *PlayersHandler) HandlePlayerHistogram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	hist, err := h.deps.PlayerHistogram(r.Context(), playerParams(r.URL.Query()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// playerParams extracts the player identity triple. Validation happens in
// the query layer.
func playerParams(q url.Values) query.PlayerDetailsParams {
	return query.PlayerDetailsParams{
		Name:     q.Get("name"),
		Position: model.Position(q.Get("position")),
		Team:     q.Get("team"),
	}
}

// queryInt parses an optional integer query parameter.
func queryInt(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}
