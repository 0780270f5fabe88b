// Package query defines the logical query contract shared by both execution
// engines: typed parameters, parameter validation, and the Engine interface.
//
// Both engines must return identical results (up to a 1e-9 floating point
// tolerance) for identical inputs; callers never observe which engine served
// a call.
package query

import (
	"context"
	"fmt"

	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/types"
)

// SortKey enumerates the player-list sort columns.
type SortKey string

// Sortable columns.
const (
	SortByName            SortKey = "name"
	SortByPosition        SortKey = "position"
	SortByTeam            SortKey = "team"
	SortByDraftPercentage SortKey = "draft_percentage"
	SortByAvgPick         SortKey = "avg_pick"
	SortByAvgRound        SortKey = "avg_round"
)

func (k SortKey) valid() bool {
	switch k {
	case SortByName, SortByPosition, SortByTeam, SortByDraftPercentage, SortByAvgPick, SortByAvgRound:
		return true
	}
	return false
}

// SortOrder is asc or desc.
type SortOrder string

// Sort directions.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Aggregation selects mean or median for round-count queries.
type Aggregation string

// Aggregation kinds.
const (
	Mean   Aggregation = "mean"
	Median Aggregation = "median"
)

// Metric selects the slot-correlation scoring function.
type Metric string

// Correlation metrics.
const (
	MetricCount   Metric = "count"
	MetricPercent Metric = "percent"
	MetricRatio   Metric = "ratio"
)

// Default and boundary values for query parameters.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
	DefaultTopN      = 25
	MaxTopN          = 100
	MinSlot          = 1
	MaxSlot          = 12
)

// ListPlayersParams filters, sorts, and paginates player summaries.
type ListPlayersParams struct {
	Positions  []model.Position `json:"positions,omitempty"`
	SearchTerm string           `json:"search_term,omitempty"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	SortBy     SortKey          `json:"sort_by"`
	SortOrder  SortOrder        `json:"sort_order"`
}

// Normalize fills zero values with documented defaults.
func (p ListPlayersParams) Normalize() ListPlayersParams {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.SortBy == "" {
		p.SortBy = SortByAvgPick
	}
	if p.SortOrder == "" {
		p.SortOrder = Asc
	}
	return p
}

// Validate rejects malformed values before any dataset access.
func (p ListPlayersParams) Validate() error {
	for _, pos := range p.Positions {
		if !pos.Valid() {
			return fmt.Errorf("%w: unknown position %q", ErrInvalidQuery, pos)
		}
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be in [1, %d], got %d", ErrInvalidQuery, MaxPageLimit, p.Limit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must be >= 0, got %d", ErrInvalidQuery, p.Offset)
	}
	if !p.SortBy.valid() {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidQuery, p.SortBy)
	}
	if p.SortOrder != Asc && p.SortOrder != Desc {
		return fmt.Errorf("%w: sort order must be asc or desc, got %q", ErrInvalidQuery, p.SortOrder)
	}
	return nil
}

// PlayerDetailsParams identifies a single player.
type PlayerDetailsParams struct {
	Name     string         `json:"name"`
	Position model.Position `json:"position"`
	Team     string         `json:"team"`
}

// Validate rejects malformed values before any dataset access.
func (p PlayerDetailsParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: player name must not be empty", ErrInvalidQuery)
	}
	if !p.Position.Valid() {
		return fmt.Errorf("%w: unknown position %q", ErrInvalidQuery, p.Position)
	}
	return nil
}

// RoundCountsParams selects the position and aggregation for per-round counts.
type RoundCountsParams struct {
	Position    model.Position `json:"position"`
	Aggregation Aggregation    `json:"aggregation"`
}

// Normalize fills zero values with documented defaults.
func (p RoundCountsParams) Normalize() RoundCountsParams {
	if p.Aggregation == "" {
		p.Aggregation = Mean
	}
	return p
}

// Validate rejects malformed values before any dataset access.
func (p RoundCountsParams) Validate() error {
	if !p.Position.Valid() {
		return fmt.Errorf("%w: unknown position %q", ErrInvalidQuery, p.Position)
	}
	if p.Aggregation != Mean && p.Aggregation != Median {
		return fmt.Errorf("%w: aggregation must be mean or median, got %q", ErrInvalidQuery, p.Aggregation)
	}
	return nil
}

// SlotCorrelationParams selects a draft slot, metric, and result size.
type SlotCorrelationParams struct {
	Slot   int    `json:"slot"`
	Metric Metric `json:"metric"`
	TopN   int    `json:"top_n"`

	// MinSlotTeams drops players drafted by fewer slot teams than this,
	// avoiding small-sample noise. Zero disables the filter.
	MinSlotTeams int `json:"min_slot_teams,omitempty"`
}

// Normalize fills zero values with documented defaults.
func (p SlotCorrelationParams) Normalize() SlotCorrelationParams {
	if p.Metric == "" {
		p.Metric = MetricPercent
	}
	if p.TopN == 0 {
		p.TopN = DefaultTopN
	}
	return p
}

// Validate rejects malformed values before any dataset access.
func (p SlotCorrelationParams) Validate() error {
	if p.Slot < MinSlot || p.Slot > MaxSlot {
		return fmt.Errorf("%w: slot must be in [%d, %d], got %d", ErrInvalidQuery, MinSlot, MaxSlot, p.Slot)
	}
	switch p.Metric {
	case MetricCount, MetricPercent, MetricRatio:
	default:
		return fmt.Errorf("%w: metric must be count, percent, or ratio, got %q", ErrInvalidQuery, p.Metric)
	}
	if p.TopN < 1 || p.TopN > MaxTopN {
		return fmt.Errorf("%w: top_n must be in [1, %d], got %d", ErrInvalidQuery, MaxTopN, p.TopN)
	}
	if p.MinSlotTeams < 0 {
		return fmt.Errorf("%w: min_slot_teams must be >= 0, got %d", ErrInvalidQuery, p.MinSlotTeams)
	}
	return nil
}

// Engine executes the logical query set. Implementations are stateless with
// respect to requests; all state is the immutable dataset they were built on.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	ListPlayers(ctx context.Context, p ListPlayersParams) (types.PlayerPage, error)
	PlayerDetails(ctx context.Context, p PlayerDetailsParams) (types.PlayerDetails, error)
	PositionStats(ctx context.Context) ([]types.PositionStats, error)
	FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error)
	RoundCounts(ctx context.Context, p RoundCountsParams) (types.RoundCounts, error)
	RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error)
	DraftSlotCorrelation(ctx context.Context, p SlotCorrelationParams) (types.SlotCorrelation, error)
	HeatMap(ctx context.Context) (types.HeatMap, error)
}
