// Package frame implements the native dataframe-style query engine: every
// logical query is computed directly over the columnar relation with plain
// Go aggregation loops.
package frame

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bsamaha/draftlab/internal/adapters/dataset"
	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
)

// Engine executes logical queries natively over the relation.
type Engine struct {
	rel *dataset.Relation
}

// New creates a frame engine over the given relation. The relation is held
// by reference; the engine never mutates it.
func New(rel *dataset.Relation) *Engine {
	return &Engine{rel: rel}
}

// Name identifies the engine in logs and metrics.
func (e *Engine) Name() string { return "frame" }

// playerKey groups picks belonging to one player identity.
type playerKey struct {
	name     string
	position model.Position
	team     string
}

// playerAgg accumulates pick statistics for one player.
type playerAgg struct {
	sumPick  int64
	sumRound int64
	minPick  int
	maxPick  int
	count    int
}

// ListPlayers aggregates, filters, sorts, and paginates player summaries.
func (e *Engine) ListPlayers(ctx context.Context, p query.ListPlayersParams) (types.PlayerPage, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return types.PlayerPage{}, err
	}

	posFilter := make(map[model.Position]struct{}, len(p.Positions))
	for _, pos := range p.Positions {
		posFilter[pos] = struct{}{}
	}
	search := strings.ToLower(p.SearchTerm)

	aggs := make(map[playerKey]*playerAgg)
	for i := 0; i < e.rel.NumRows(); i++ {
		if len(posFilter) > 0 {
			if _, ok := posFilter[e.rel.Position(i)]; !ok {
				continue
			}
		}
		name := e.rel.Player(i)
		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			continue
		}
		k := playerKey{name, e.rel.Position(i), e.rel.Team(i)}
		a, ok := aggs[k]
		if !ok {
			a = &playerAgg{minPick: e.rel.OverallPick(i), maxPick: e.rel.OverallPick(i)}
			aggs[k] = a
		}
		pick := e.rel.OverallPick(i)
		a.sumPick += int64(pick)
		a.sumRound += int64(e.rel.Round(i))
		a.count++
		if pick < a.minPick {
			a.minPick = pick
		}
		if pick > a.maxPick {
			a.maxPick = pick
		}
	}

	totalDrafts := e.rel.TotalDrafts()
	players := make([]types.PlayerSummary, 0, len(aggs))
	for k, a := range aggs {
		players = append(players, summarize(k, a, totalDrafts))
	}
	sortPlayers(players, p.SortBy, p.SortOrder)

	total := len(players)
	players = pageSlice(players, p.Offset, p.Limit)
	return types.PlayerPage{
		Players:  players,
		PageInfo: query.PageOf(total, p.Limit, p.Offset),
	}, nil
}

func summarize(k playerKey, a *playerAgg, totalDrafts int) types.PlayerSummary {
	s := types.PlayerSummary{
		Name:     k.name,
		Position: k.position,
		Team:     k.team,
		MinPick:  a.minPick,
		MaxPick:  a.maxPick,
	}
	if a.count > 0 {
		s.AvgPick = float64(a.sumPick) / float64(a.count)
		s.AvgRound = float64(a.sumRound) / float64(a.count)
	}
	if totalDrafts > 0 {
		s.DraftPercentage = float64(a.count) * 100.0 / float64(totalDrafts)
	}
	return s
}

// sortPlayers orders summaries by the requested key with a fixed ascending
// name/position/team tie-break, matching the SQL engine's ORDER BY.
func sortPlayers(players []types.PlayerSummary, key query.SortKey, order query.SortOrder) {
	desc := order == query.Desc
	less := func(a, b types.PlayerSummary) int {
		var c int
		switch key {
		case query.SortByName:
			c = strings.Compare(a.Name, b.Name)
		case query.SortByPosition:
			c = strings.Compare(string(a.Position), string(b.Position))
		case query.SortByTeam:
			c = strings.Compare(a.Team, b.Team)
		case query.SortByDraftPercentage:
			c = compareFloat(a.DraftPercentage, b.DraftPercentage)
		case query.SortByAvgPick:
			c = compareFloat(a.AvgPick, b.AvgPick)
		case query.SortByAvgRound:
			c = compareFloat(a.AvgRound, b.AvgRound)
		}
		if desc {
			c = -c
		}
		return c
	}
	sort.SliceStable(players, func(i, j int) bool {
		if c := less(players[i], players[j]); c != 0 {
			return c < 0
		}
		a, b := players[i], players[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Team < b.Team
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func pageSlice(players []types.PlayerSummary, offset, limit int) []types.PlayerSummary {
	if offset >= len(players) {
		return []types.PlayerSummary{}
	}
	end := offset + limit
	if end > len(players) {
		end = len(players)
	}
	return players[offset:end]
}

// PlayerDetails returns the full pick history for one player identity.
func (e *Engine) PlayerDetails(ctx context.Context, p query.PlayerDetailsParams) (types.PlayerDetails, error) {
	if err := p.Validate(); err != nil {
		return types.PlayerDetails{}, err
	}

	d := types.PlayerDetails{Name: p.Name, Position: p.Position, Team: p.Team}
	var sumPick, sumRound int64
	teams := make(map[int]struct{})
	for i := 0; i < e.rel.NumRows(); i++ {
		if e.rel.Player(i) != p.Name || e.rel.Position(i) != p.Position || e.rel.Team(i) != p.Team {
			continue
		}
		pick := e.rel.OverallPick(i)
		d.Picks = append(d.Picks, pick)
		d.Rounds = append(d.Rounds, e.rel.Round(i))
		sumPick += int64(pick)
		sumRound += int64(e.rel.Round(i))
		teams[e.rel.TeamID(i)] = struct{}{}
		if len(d.Picks) == 1 || pick < d.MinPick {
			d.MinPick = pick
		}
		if pick > d.MaxPick {
			d.MaxPick = pick
		}
	}
	if len(d.Picks) == 0 {
		return types.PlayerDetails{}, fmt.Errorf("%w: player %q (%s, %s)", query.ErrNotFound, p.Name, p.Position, p.Team)
	}
	d.AvgPick = float64(sumPick) / float64(len(d.Picks))
	d.AvgRound = float64(sumRound) / float64(len(d.Picks))
	d.TotalDrafts = len(teams)
	return d, nil
}

// PositionStats aggregates draft behavior per position in canonical order.
func (e *Engine) PositionStats(ctx context.Context) ([]types.PositionStats, error) {
	type draftPos struct {
		draft    int
		position model.Position
	}
	totals := make(map[model.Position]int)
	sums := make(map[model.Position]int64)
	uniques := make(map[model.Position]map[string]struct{})
	perDraft := make(map[draftPos]int)
	for i := 0; i < e.rel.NumRows(); i++ {
		pos := e.rel.Position(i)
		totals[pos]++
		sums[pos] += int64(e.rel.OverallPick(i))
		if uniques[pos] == nil {
			uniques[pos] = make(map[string]struct{})
		}
		uniques[pos][e.rel.Player(i)] = struct{}{}
		perDraft[draftPos{e.rel.DraftID(i), pos}]++
	}

	countsByPos := make(map[model.Position][]int)
	for k, c := range perDraft {
		countsByPos[k.position] = append(countsByPos[k.position], c)
	}

	out := make([]types.PositionStats, 0, len(totals))
	for _, pos := range model.Positions {
		total, ok := totals[pos]
		if !ok {
			continue
		}
		out = append(out, types.PositionStats{
			Position:         pos,
			TotalDrafted:     total,
			UniquePlayers:    len(uniques[pos]),
			AvgPick:          float64(sums[pos]) / float64(total),
			MedianDraftCount: query.MedianInts(countsByPos[pos]),
		})
	}
	return out, nil
}

// FirstPlayerStats reports where the first player of each position is taken,
// aggregated across drafts.
func (e *Engine) FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error) {
	type draftPos struct {
		draft    int
		position model.Position
	}
	first := make(map[draftPos]int)
	for i := 0; i < e.rel.NumRows(); i++ {
		k := draftPos{e.rel.DraftID(i), e.rel.Position(i)}
		pick := e.rel.OverallPick(i)
		if cur, ok := first[k]; !ok || pick < cur {
			first[k] = pick
		}
	}

	type agg struct {
		sum      int64
		min, max int
		count    int
	}
	byPos := make(map[model.Position]*agg)
	for k, pick := range first {
		a, ok := byPos[k.position]
		if !ok {
			a = &agg{min: pick, max: pick}
			byPos[k.position] = a
		}
		a.sum += int64(pick)
		a.count++
		if pick < a.min {
			a.min = pick
		}
		if pick > a.max {
			a.max = pick
		}
	}

	out := make([]types.FirstPickStats, 0, len(byPos))
	for _, pos := range model.Positions {
		a, ok := byPos[pos]
		if !ok {
			continue
		}
		out = append(out, types.FirstPickStats{
			Position:     pos,
			AvgFirstPick: float64(a.sum) / float64(a.count),
			MinFirstPick: a.min,
			MaxFirstPick: a.max,
		})
	}
	return out, nil
}

// RoundCounts aggregates how many picks of a position land in each round,
// over the full round x draft grid with zero-filled gaps.
func (e *Engine) RoundCounts(ctx context.Context, p query.RoundCountsParams) (types.RoundCounts, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return types.RoundCounts{}, err
	}

	totalDrafts := e.rel.TotalDrafts()
	if totalDrafts == 0 {
		return types.RoundCounts{Position: p.Position}, nil
	}

	type roundDraft struct{ round, draft int }
	counts := make(map[roundDraft]int)
	roundsSet := make(map[int]struct{})
	for i := 0; i < e.rel.NumRows(); i++ {
		roundsSet[e.rel.Round(i)] = struct{}{}
		if e.rel.Position(i) != p.Position {
			continue
		}
		counts[roundDraft{e.rel.Round(i), e.rel.DraftID(i)}]++
	}

	rounds := make([]int, 0, len(roundsSet))
	for r := range roundsSet {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	out := types.RoundCounts{Position: p.Position, RoundCounts: make([]types.RoundCount, 0, len(rounds))}
	for _, round := range rounds {
		perDraft := make([]int, 0, totalDrafts)
		var sum int64
		for k, c := range counts {
			if k.round != round {
				continue
			}
			perDraft = append(perDraft, c)
			sum += int64(c)
		}
		// Zero-fill drafts where this position was skipped in this round.
		for len(perDraft) < totalDrafts {
			perDraft = append(perDraft, 0)
		}

		var v float64
		if p.Aggregation == query.Mean {
			v = float64(sum) / float64(totalDrafts)
		} else {
			v = query.MedianInts(perDraft)
		}
		out.RoundCounts = append(out.RoundCounts, types.RoundCount{Round: round, Count: v})
	}
	return out, nil
}

// RosterConstructionCounts tallies distinct QB/RB/WR/TE roster shapes across
// all teams.
func (e *Engine) RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error) {
	type teamKey struct{ draft, team int }
	shapes := make(map[teamKey]*[4]int)
	for i := 0; i < e.rel.NumRows(); i++ {
		k := teamKey{e.rel.DraftID(i), e.rel.TeamID(i)}
		s, ok := shapes[k]
		if !ok {
			s = &[4]int{}
			shapes[k] = s
		}
		switch e.rel.Position(i) {
		case model.QB:
			s[0]++
		case model.RB:
			s[1]++
		case model.WR:
			s[2]++
		case model.TE:
			s[3]++
		}
	}

	freq := make(map[[4]int]int)
	for _, s := range shapes {
		freq[*s]++
	}

	out := make([]types.RosterConstruction, 0, len(freq))
	for shape, count := range freq {
		out = append(out, types.RosterConstruction{
			QB: shape[0], RB: shape[1], WR: shape[2], TE: shape[3], Count: count,
		})
	}
	sortConstructions(out)
	return out, nil
}

// sortConstructions orders by team count descending with an ascending shape
// tuple tie-break so both engines emit identical order.
func sortConstructions(out []types.RosterConstruction) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.QB != b.QB {
			return a.QB < b.QB
		}
		if a.RB != b.RB {
			return a.RB < b.RB
		}
		if a.WR != b.WR {
			return a.WR < b.WR
		}
		return a.TE < b.TE
	})
}

// DraftSlotCorrelation scores how strongly each player is associated with
// one roster slot versus the overall population.
func (e *Engine) DraftSlotCorrelation(ctx context.Context, p query.SlotCorrelationParams) (types.SlotCorrelation, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return types.SlotCorrelation{}, err
	}

	type teamPlayer struct {
		team   int
		player string
	}
	seen := make(map[teamPlayer]struct{})
	overall := make(map[string]int)
	slotCnt := make(map[string]int)
	slotTeams := make(map[int]struct{})
	for i := 0; i < e.rel.NumRows(); i++ {
		inSlot := e.rel.DraftPosition(i) == p.Slot
		if inSlot {
			slotTeams[e.rel.TeamID(i)] = struct{}{}
		}
		k := teamPlayer{e.rel.TeamID(i), e.rel.Player(i)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		overall[k.player]++
		if inSlot {
			slotCnt[k.player]++
		}
	}

	rows := buildCorrelationRows(p, slotCnt, overall, len(slotTeams), e.rel.TotalTeams())
	return types.SlotCorrelation{Slot: p.Slot, Metric: string(p.Metric), Rows: rows}, nil
}

// buildCorrelationRows is the shared finishing step for slot correlation:
// probabilities, metric score, deterministic ordering, and truncation.
func buildCorrelationRows(p query.SlotCorrelationParams, slotCnt, overall map[string]int, teamsInSlot, totalTeams int) []types.SlotCorrelationRow {
	rows := make([]types.SlotCorrelationRow, 0, len(slotCnt))
	for player, sc := range slotCnt {
		if sc < p.MinSlotTeams {
			continue
		}
		row := types.SlotCorrelationRow{
			Player:  player,
			Slot:    sc,
			Overall: overall[player],
		}
		if teamsInSlot > 0 {
			row.PSlot = float64(sc) / float64(teamsInSlot)
		}
		if totalTeams > 0 {
			row.POverall = float64(row.Overall) / float64(totalTeams)
		}
		switch p.Metric {
		case query.MetricCount:
			row.Score = float64(sc)
		case query.MetricPercent:
			row.Score = 100 * row.PSlot
		case query.MetricRatio:
			if row.POverall > 0 {
				row.Score = row.PSlot / row.POverall
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Player < rows[j].Player
	})
	if len(rows) > p.TopN {
		rows = rows[:p.TopN]
	}
	return rows
}

// HeatMap counts picks per (round, position).
func (e *Engine) HeatMap(ctx context.Context) (types.HeatMap, error) {
	type cell struct {
		round    int
		position model.Position
	}
	counts := make(map[cell]int)
	roundsSet := make(map[int]struct{})
	for i := 0; i < e.rel.NumRows(); i++ {
		counts[cell{e.rel.Round(i), e.rel.Position(i)}]++
		roundsSet[e.rel.Round(i)] = struct{}{}
	}

	rounds := make([]int, 0, len(roundsSet))
	for r := range roundsSet {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	hm := types.HeatMap{TotalPicks: e.rel.NumRows()}
	for _, round := range rounds {
		for _, pos := range model.Positions {
			if c, ok := counts[cell{round, pos}]; ok {
				hm.Cells = append(hm.Cells, types.HeatMapCell{Round: round, Position: pos, Count: c})
			}
		}
	}
	return hm, nil
}
