// Package combos finds every team whose roster contains a required player
// set within a bounded number of rounds.
package combos

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bsamaha/draftlab/internal/adapters/dataset"
	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
)

// Boundary values for combination queries.
const (
	MaxRequiredPlayers = 4
	MinRounds          = 1
	MaxRounds          = 20
)

// Params describes one combination search.
type Params struct {
	// RequiredPlayers must all appear on a team's roster within the round
	// bound. 1 to 4 names; the caller is responsible for normalization.
	RequiredPlayers []string `json:"required_players"`

	// NRounds restricts the search to rounds 1..NRounds.
	NRounds int `json:"n_rounds"`

	// Limit caps the returned matches. Zero means the default page limit.
	Limit int `json:"limit"`

	// UniqueRosters collapses teams with identical rosters
	// (order-insensitive) to the earliest draft/slot instance.
	UniqueRosters bool `json:"unique_rosters,omitempty"`
}

// Normalize fills zero values with documented defaults.
func (p Params) Normalize() Params {
	if p.Limit == 0 {
		p.Limit = query.DefaultPageLimit
	}
	return p
}

// Validate rejects malformed values before any dataset access. An unknown
// player name is NOT an error: a player never drafted under that spelling
// legitimately yields zero matches.
func (p Params) Validate() error {
	if len(p.RequiredPlayers) == 0 {
		return fmt.Errorf("%w: required_players must not be empty", query.ErrInvalidQuery)
	}
	if len(p.RequiredPlayers) > MaxRequiredPlayers {
		return fmt.Errorf("%w: at most %d required players, got %d", query.ErrInvalidQuery, MaxRequiredPlayers, len(p.RequiredPlayers))
	}
	if p.NRounds < MinRounds || p.NRounds > MaxRounds {
		return fmt.Errorf("%w: n_rounds must be in [%d, %d], got %d", query.ErrInvalidQuery, MinRounds, MaxRounds, p.NRounds)
	}
	if p.Limit < 1 || p.Limit > query.MaxPageLimit {
		return fmt.Errorf("%w: limit must be in [1, %d], got %d", query.ErrInvalidQuery, query.MaxPageLimit, p.Limit)
	}
	return nil
}

// Result is the outcome of one combination search. Total reports the number
// of matching teams before truncation so callers can tell "all matches
// shown" from "truncated".
type Result struct {
	Combinations []types.TeamCombination `json:"combinations"`
	Total        int                     `json:"total_combinations"`
}

// rosterPick is one pick retained for a candidate team.
type rosterPick struct {
	round    int
	overall  int
	player   string
	position model.Position
}

// team accumulates the picks of one (draft, slot) group.
type team struct {
	draftID int
	teamID  int
	slot    int
	picks   []rosterPick
}

// Find returns every team whose roster, restricted to rounds 1..NRounds,
// contains all required players.
func Find(rel *dataset.Relation, p Params) (Result, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	required := make(map[string]struct{}, len(p.RequiredPlayers))
	for _, name := range p.RequiredPlayers {
		required[name] = struct{}{}
	}

	// Group rows within the round bound by (draft, slot).
	type groupKey struct{ draft, slot int }
	groups := make(map[groupKey]*team)
	for i := 0; i < rel.NumRows(); i++ {
		if rel.Round(i) > p.NRounds {
			continue
		}
		k := groupKey{rel.DraftID(i), rel.DraftPosition(i)}
		g, ok := groups[k]
		if !ok {
			g = &team{draftID: k.draft, teamID: rel.TeamID(i), slot: k.slot}
			groups[k] = g
		}
		g.picks = append(g.picks, rosterPick{
			round:    rel.Round(i),
			overall:  rel.OverallPick(i),
			player:   rel.Player(i),
			position: rel.Position(i),
		})
	}

	// Retain teams whose drafted-player set covers the required set.
	matched := make([]*team, 0)
	for _, g := range groups {
		have := make(map[string]struct{}, len(g.picks))
		for _, pk := range g.picks {
			have[pk.player] = struct{}{}
		}
		covered := true
		for name := range required {
			if _, ok := have[name]; !ok {
				covered = false
				break
			}
		}
		if covered {
			matched = append(matched, g)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].draftID != matched[j].draftID {
			return matched[i].draftID < matched[j].draftID
		}
		return matched[i].slot < matched[j].slot
	})

	if p.UniqueRosters {
		matched = dedupeRosters(matched)
	}

	total := len(matched)
	if len(matched) > p.Limit {
		matched = matched[:p.Limit]
	}

	out := make([]types.TeamCombination, len(matched))
	for i, g := range matched {
		out[i] = g.combination()
	}
	return Result{Combinations: out, Total: total}, nil
}

// combination projects a matched team into its result shape, with players
// ordered by round then overall pick.
func (t *team) combination() types.TeamCombination {
	sort.Slice(t.picks, func(i, j int) bool {
		if t.picks[i].round != t.picks[j].round {
			return t.picks[i].round < t.picks[j].round
		}
		return t.picks[i].overall < t.picks[j].overall
	})
	players := make([]string, len(t.picks))
	counts := make(map[model.Position]int)
	for i, pk := range t.picks {
		players[i] = pk.player
		counts[pk.position]++
	}
	return types.TeamCombination{
		DraftID:        t.draftID,
		TeamID:         t.teamID,
		DraftPosition:  t.slot,
		Players:        players,
		PositionCounts: formatPositionCounts(counts),
	}
}

// formatPositionCounts renders counts as "K: 1, QB: 2, RB: 5" with positions
// in alphabetical order, matching the upstream display format.
func formatPositionCounts(counts map[model.Position]int) string {
	names := make([]string, 0, len(counts))
	for pos := range counts {
		names = append(names, string(pos))
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, counts[model.Position(name)])
	}
	return strings.Join(parts, ", ")
}

// dedupeRosters keeps the first team (in draft/slot order) for each
// order-insensitive roster.
func dedupeRosters(teams []*team) []*team {
	seen := make(map[string]struct{}, len(teams))
	out := teams[:0]
	for _, g := range teams {
		names := make([]string, len(g.picks))
		for i, pk := range g.picks {
			names[i] = pk.player
		}
		sort.Strings(names)
		key := strings.Join(names, "|")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}
