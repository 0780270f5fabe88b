// Package types contains the result shapes shared by the query engines and
// the HTTP API.
package types

import "github.com/bsamaha/draftlab/internal/domain/model"

// PlayerSummary is a player's aggregated draft statistics.
type PlayerSummary struct {
	Name            string         `json:"name"`
	Position        model.Position `json:"position"`
	Team            string         `json:"team"`
	AvgPick         float64        `json:"avg_pick"`
	AvgRound        float64        `json:"avg_round"`
	MinPick         int            `json:"min_pick"`
	MaxPick         int            `json:"max_pick"`
	DraftPercentage float64        `json:"draft_percentage"`
}

// PageInfo describes offset/limit pagination of a result set.
type PageInfo struct {
	TotalCount  int  `json:"total_count"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
}

// PlayerPage is one page of player summaries.
type PlayerPage struct {
	Players  []PlayerSummary `json:"players"`
	PageInfo PageInfo        `json:"page_info"`
}

// PlayerDetails holds the full pick history for a single player.
type PlayerDetails struct {
	Name        string         `json:"player_name"`
	Position    model.Position `json:"position"`
	Team        string         `json:"team"`
	Picks       []int          `json:"picks"`
	Rounds      []int          `json:"rounds"`
	AvgPick     float64        `json:"avg_pick"`
	AvgRound    float64        `json:"avg_round"`
	MinPick     int            `json:"min_pick"`
	MaxPick     int            `json:"max_pick"`
	TotalDrafts int            `json:"total_drafts"`
}

// PositionStats aggregates draft behavior for one position.
type PositionStats struct {
	Position         model.Position `json:"position"`
	TotalDrafted     int            `json:"total_drafted"`
	UniquePlayers    int            `json:"unique_players"`
	AvgPick          float64        `json:"avg_pick"`
	MedianDraftCount float64        `json:"median_draft_count"`
}

// FirstPickStats describes where the first player of a position is taken.
type FirstPickStats struct {
	Position     model.Position `json:"position"`
	AvgFirstPick float64        `json:"avg_first_pick"`
	MinFirstPick int            `json:"min_first_pick"`
	MaxFirstPick int            `json:"max_first_pick"`
}

// RoundCount is the aggregated number of picks spent on a position in one round.
type RoundCount struct {
	Round int     `json:"round"`
	Count float64 `json:"count"`
}

// RoundCounts is the per-round aggregation for one position.
type RoundCounts struct {
	Position    model.Position `json:"position"`
	RoundCounts []RoundCount   `json:"round_counts"`
}

// RosterConstruction is a distinct per-position roster shape and the number
// of teams exhibiting it.
type RosterConstruction struct {
	QB    int `json:"qb"`
	RB    int `json:"rb"`
	WR    int `json:"wr"`
	TE    int `json:"te"`
	Count int `json:"count"`
}

// SlotCorrelationRow scores one player's affinity with a draft slot.
type SlotCorrelationRow struct {
	Player   string  `json:"player"`
	Slot     int     `json:"slot"`
	Overall  int     `json:"overall"`
	PSlot    float64 `json:"p_slot"`
	POverall float64 `json:"p_overall"`
	Score    float64 `json:"score"`
}

// SlotCorrelation is the ranked slot-affinity result.
type SlotCorrelation struct {
	Slot   int                  `json:"slot"`
	Metric string               `json:"metric"`
	Rows   []SlotCorrelationRow `json:"rows"`
}

// HeatMapCell is the pick count for one (round, position) pair.
type HeatMapCell struct {
	Round    int            `json:"round"`
	Position model.Position `json:"position"`
	Count    int            `json:"count"`
}

// HeatMap is the full round-by-position pick distribution.
type HeatMap struct {
	Cells      []HeatMapCell `json:"cells"`
	TotalPicks int           `json:"total_picks"`
}

// TeamCombination is one team whose roster satisfies a combination query.
type TeamCombination struct {
	DraftID        int      `json:"draft_id"`
	TeamID         int      `json:"team_id"`
	DraftPosition  int      `json:"draft_position"`
	Players        []string `json:"players"`
	PositionCounts string   `json:"position_counts"`
}

// Metadata describes the loaded dataset.
type Metadata struct {
	TotalPlayers int      `json:"total_players"`
	TotalDrafts  int      `json:"total_drafts"`
	TotalTeams   int      `json:"total_teams"`
	AllPlayers   []string `json:"all_players"`
}
