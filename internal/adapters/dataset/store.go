// Package dataset loads the immutable picks table into memory once at
// process start and exposes it as a read-only columnar relation.
//
// The Relation is never written after construction, so any number of callers
// may read it concurrently without synchronization.
package dataset

import (
	"sort"

	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/types"
)

// Relation is an immutable columnar view over all picks.
type Relation struct {
	draftID  []int32
	teamID   []int32
	slot     []int16
	round    []int16
	pick     []int16
	player   []string
	position []model.Position
	team     []string

	meta types.Metadata
}

// FromPicks builds a Relation from in-memory rows. It is the constructor
// used by tests and synthetic-data tooling; production loading goes through
// Load.
func FromPicks(picks []model.Pick) *Relation {
	r := &Relation{
		draftID:  make([]int32, 0, len(picks)),
		teamID:   make([]int32, 0, len(picks)),
		slot:     make([]int16, 0, len(picks)),
		round:    make([]int16, 0, len(picks)),
		pick:     make([]int16, 0, len(picks)),
		player:   make([]string, 0, len(picks)),
		position: make([]model.Position, 0, len(picks)),
		team:     make([]string, 0, len(picks)),
	}
	for _, p := range picks {
		r.append(p)
	}
	r.finalize()
	return r
}

func (r *Relation) append(p model.Pick) {
	r.draftID = append(r.draftID, int32(p.DraftID))
	r.teamID = append(r.teamID, int32(p.TeamID))
	r.slot = append(r.slot, int16(p.DraftPosition))
	r.round = append(r.round, int16(p.Round))
	r.pick = append(r.pick, int16(p.OverallPick))
	r.player = append(r.player, p.Player)
	r.position = append(r.position, p.Position)
	r.team = append(r.team, p.Team)
}

// finalize precomputes the dataset metadata. Called exactly once, before the
// Relation is shared.
func (r *Relation) finalize() {
	drafts := make(map[int32]struct{})
	teams := make(map[int32]struct{})
	players := make(map[string]struct{})
	for i := range r.draftID {
		drafts[r.draftID[i]] = struct{}{}
		teams[r.teamID[i]] = struct{}{}
		players[r.player[i]] = struct{}{}
	}
	all := make([]string, 0, len(players))
	for name := range players {
		all = append(all, name)
	}
	sort.Strings(all)
	r.meta = types.Metadata{
		TotalPlayers: len(all),
		TotalDrafts:  len(drafts),
		TotalTeams:   len(teams),
		AllPlayers:   all,
	}
}

// NumRows returns the number of picks in the relation.
func (r *Relation) NumRows() int { return len(r.draftID) }

// Column accessors. All are read-only; indices must be in [0, NumRows).

func (r *Relation) DraftID(i int) int                 { return int(r.draftID[i]) }
func (r *Relation) TeamID(i int) int                  { return int(r.teamID[i]) }
func (r *Relation) DraftPosition(i int) int           { return int(r.slot[i]) }
func (r *Relation) Round(i int) int                   { return int(r.round[i]) }
func (r *Relation) OverallPick(i int) int             { return int(r.pick[i]) }
func (r *Relation) Player(i int) string               { return r.player[i] }
func (r *Relation) Position(i int) model.Position     { return r.position[i] }
func (r *Relation) Team(i int) string                 { return r.team[i] }

// Row materializes one pick. Engines that iterate hot loops should prefer
// the column accessors.
func (r *Relation) Row(i int) model.Pick {
	return model.Pick{
		DraftID:       int(r.draftID[i]),
		TeamID:        int(r.teamID[i]),
		DraftPosition: int(r.slot[i]),
		Round:         int(r.round[i]),
		OverallPick:   int(r.pick[i]),
		Player:        r.player[i],
		Position:      r.position[i],
		Team:          r.team[i],
	}
}

// Metadata returns precomputed dataset-wide statistics.
func (r *Relation) Metadata() types.Metadata { return r.meta }

// TotalDrafts returns the number of distinct drafts in the relation.
func (r *Relation) TotalDrafts() int { return r.meta.TotalDrafts }

// TotalTeams returns the number of distinct teams in the relation.
func (r *Relation) TotalTeams() int { return r.meta.TotalTeams }
