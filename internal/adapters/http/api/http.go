// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/bsamaha/draftlab/internal/app"
	"github.com/bsamaha/draftlab/internal/domain/combos"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListPlayers(ctx context.Context, p query.ListPlayersParams) (types.PlayerPage, error)
	PlayerDetails(ctx context.Context, p query.PlayerDetailsParams) (types.PlayerDetails, error)
	PlayerHistogram(ctx context.Context, p query.PlayerDetailsParams) (service.PlayerHistogram, error)
	PositionStats(ctx context.Context) ([]types.PositionStats, error)
	FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error)
	RoundCounts(ctx context.Context, p query.RoundCountsParams) (types.RoundCounts, error)
	RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error)
	DraftSlotCorrelation(ctx context.Context, p query.SlotCorrelationParams) (types.SlotCorrelation, error)
	HeatMap(ctx context.Context) (types.HeatMap, error)
	PlayerCombinations(ctx context.Context, p combos.Params) (combos.Result, error)
	Metadata(ctx context.Context) (types.Metadata, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	playersHandler      *PlayersHandler
	positionsHandler    *PositionsHandler
	analyticsHandler    *AnalyticsHandler
	combinationsHandler *CombinationsHandler
	metadataHandler     *MetadataHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		playersHandler:      NewPlayersHandler(deps),
		positionsHandler:    NewPositionsHandler(deps),
		analyticsHandler:    NewAnalyticsHandler(deps),
		combinationsHandler: NewCombinationsHandler(deps),
		metadataHandler:     NewMetadataHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/metadata", "metadata", s.metadataHandler.HandleMetadata)
	route("/players", "players", s.playersHandler.HandleListPlayers)
	route("/players/details", "player_details", s.playersHandler.HandlePlayerDetails)
	route("/players/histogram", "player_histogram", s.playersHandler.HandlePlayerHistogram)
	route("/positions/stats", "position_stats", s.positionsHandler.HandlePositionStats)
	route("/positions/first-picks", "first_picks", s.positionsHandler.HandleFirstPicks)
	route("/positions/rounds", "round_counts", s.positionsHandler.HandleRoundCounts)
	route("/analytics/roster-constructions", "roster_constructions", s.analyticsHandler.HandleRosterConstructions)
	route("/analytics/slot-correlation", "slot_correlation", s.analyticsHandler.HandleSlotCorrelation)
	route("/analytics/heatmap", "heatmap", s.analyticsHandler.HandleHeatMap)
	route("/combinations", "combinations", s.combinationsHandler.HandleCombinations)
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

// writeDomainError maps domain sentinels to HTTP statuses: invalid query
// parameters become 400, a missing entity 404, anything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", err)
	case errors.Is(err, query.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
