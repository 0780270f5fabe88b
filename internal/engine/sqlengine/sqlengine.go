// Package sqlengine implements the relational query engine: heavy grouping
// and filtering run as SQL against an in-memory SQLite database loaded once
// from the relation, and small finishing aggregations run in Go.
package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/bsamaha/draftlab/internal/adapters/dataset"
	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
)

const schema = `
CREATE TABLE picks (
	draft          INTEGER NOT NULL,
	team_id        INTEGER NOT NULL,
	draft_position INTEGER NOT NULL,
	round          INTEGER NOT NULL,
	pick           INTEGER NOT NULL,
	player         TEXT    NOT NULL,
	player_lower   TEXT    NOT NULL,
	position       TEXT    NOT NULL,
	team           TEXT    NOT NULL
);
CREATE INDEX idx_picks_player ON picks(player, position, team);
CREATE INDEX idx_picks_position ON picks(position);
CREATE INDEX idx_picks_slot ON picks(draft_position);
`

// dbSeq distinguishes the shared in-memory databases of multiple engine
// instances within one process (tests build several).
var dbSeq atomic.Int64

// Engine executes logical queries through SQLite.
type Engine struct {
	db   *sql.DB
	conn *sql.Conn // pinned connection keeping the shared memory DB alive
	rel  *dataset.Relation
}

// New builds a SQL engine by loading the relation into a fresh in-memory
// database. The relation stays authoritative for dataset-wide metadata.
func New(ctx context.Context, rel *dataset.Relation) (*Engine, error) {
	dsn := fmt.Sprintf("file:draftlab%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql engine: open: %w", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql engine: pin connection: %w", err)
	}
	e := &Engine{db: db, conn: conn, rel: rel}
	if err := e.load(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// load creates the schema and bulk-inserts every pick inside a transaction.
func (e *Engine) load(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sql engine: create schema: %w", err)
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql engine: begin load: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO picks (draft, team_id, draft_position, round, pick, player, player_lower, position, team) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sql engine: prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // statement scoped to load

	for i := 0; i < e.rel.NumRows(); i++ {
		if _, err := stmt.ExecContext(ctx,
			e.rel.DraftID(i), e.rel.TeamID(i), e.rel.DraftPosition(i), e.rel.Round(i),
			e.rel.OverallPick(i), e.rel.Player(i), strings.ToLower(e.rel.Player(i)),
			string(e.rel.Position(i)), e.rel.Team(i),
		); err != nil {
			return fmt.Errorf("sql engine: insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql engine: commit load: %w", err)
	}
	return nil
}

// Close releases the pinned connection and the pool.
func (e *Engine) Close() error {
	if e.conn != nil {
		_ = e.conn.Close()
	}
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// Name identifies the engine in logs and metrics.
func (e *Engine) Name() string { return "sql" }

// sortExpr maps a sort key to the ORDER BY expression over the grouped
// aggregate columns. Draft percentage orders by raw count; the percentage is
// a monotonic transform of it.
func sortExpr(key query.SortKey) string {
	switch key {
	case query.SortByName:
		return "player"
	case query.SortByPosition:
		return "position"
	case query.SortByTeam:
		return "team"
	case query.SortByDraftPercentage:
		return "cnt"
	case query.SortByAvgRound:
		return "1.0*sum_round/cnt"
	default: // avg_pick
		return "1.0*sum_pick/cnt"
	}
}

// ListPlayers aggregates, filters, sorts, and paginates player summaries.
func (e *Engine) ListPlayers(ctx context.Context, p query.ListPlayersParams) (types.PlayerPage, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return types.PlayerPage{}, err
	}

	var clauses []string
	var args []any
	if len(p.Positions) > 0 {
		placeholders := strings.Repeat("?, ", len(p.Positions))
		clauses = append(clauses, fmt.Sprintf("position IN (%s)", strings.TrimSuffix(placeholders, ", ")))
		for _, pos := range p.Positions {
			args = append(args, string(pos))
		}
	}
	if p.SearchTerm != "" {
		// SQLite's lower() only folds ASCII, so the case folding for both
		// sides happens in Go: the term here, the player_lower column at load.
		clauses = append(clauses, "instr(player_lower, ?) > 0")
		args = append(args, strings.ToLower(p.SearchTerm))
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	base := fmt.Sprintf(`
		SELECT player, position, team,
		       SUM(pick) AS sum_pick, SUM(round) AS sum_round, COUNT(*) AS cnt,
		       MIN(pick) AS min_pick, MAX(pick) AS max_pick
		FROM picks %s
		GROUP BY player, position, team`, where)

	var total int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (%s)", base)
	if err := e.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return types.PlayerPage{}, fmt.Errorf("sql engine: count players: %w", err)
	}

	dir := "ASC"
	if p.SortOrder == query.Desc {
		dir = "DESC"
	}
	pageSQL := fmt.Sprintf("%s ORDER BY %s %s, player ASC, position ASC, team ASC LIMIT ? OFFSET ?",
		base, sortExpr(p.SortBy), dir)
	rows, err := e.db.QueryContext(ctx, pageSQL, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return types.PlayerPage{}, fmt.Errorf("sql engine: list players: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	totalDrafts := e.rel.TotalDrafts()
	players := make([]types.PlayerSummary, 0, p.Limit)
	for rows.Next() {
		var (
			s                 types.PlayerSummary
			sumPick, sumRound int64
			cnt               int
		)
		if err := rows.Scan(&s.Name, &s.Position, &s.Team, &sumPick, &sumRound, &cnt, &s.MinPick, &s.MaxPick); err != nil {
			return types.PlayerPage{}, fmt.Errorf("sql engine: scan player: %w", err)
		}
		if cnt > 0 {
			s.AvgPick = float64(sumPick) / float64(cnt)
			s.AvgRound = float64(sumRound) / float64(cnt)
		}
		if totalDrafts > 0 {
			s.DraftPercentage = float64(cnt) * 100.0 / float64(totalDrafts)
		}
		players = append(players, s)
	}
	if err := rows.Err(); err != nil {
		return types.PlayerPage{}, fmt.Errorf("sql engine: list players: %w", err)
	}

	return types.PlayerPage{
		Players:  players,
		PageInfo: query.PageOf(total, p.Limit, p.Offset),
	}, nil
}

// PlayerDetails returns the full pick history for one player identity.
func (e *Engine) PlayerDetails(ctx context.Context, p query.PlayerDetailsParams) (types.PlayerDetails, error) {
	if err := p.Validate(); err != nil {
		return types.PlayerDetails{}, err
	}

	rows, err := e.db.QueryContext(ctx,
		"SELECT pick, round, team_id FROM picks WHERE player = ? AND position = ? AND team = ? ORDER BY rowid",
		p.Name, string(p.Position), p.Team)
	if err != nil {
		return types.PlayerDetails{}, fmt.Errorf("sql engine: player details: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	d := types.PlayerDetails{Name: p.Name, Position: p.Position, Team: p.Team}
	var sumPick, sumRound int64
	teams := make(map[int]struct{})
	for rows.Next() {
		var pick, round, teamID int
		if err := rows.Scan(&pick, &round, &teamID); err != nil {
			return types.PlayerDetails{}, fmt.Errorf("sql engine: scan pick: %w", err)
		}
		d.Picks = append(d.Picks, pick)
		d.Rounds = append(d.Rounds, round)
		sumPick += int64(pick)
		sumRound += int64(round)
		teams[teamID] = struct{}{}
		if len(d.Picks) == 1 || pick < d.MinPick {
			d.MinPick = pick
		}
		if pick > d.MaxPick {
			d.MaxPick = pick
		}
	}
	if err := rows.Err(); err != nil {
		return types.PlayerDetails{}, fmt.Errorf("sql engine: player details: %w", err)
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
// The per-draft median is finished in Go.
func (e *Engine) PositionStats(ctx context.Context) ([]types.PositionStats, error) {
	type agg struct {
		total   int
		uniques int
		sumPick int64
	}
	byPos := make(map[model.Position]*agg)

	rows, err := e.db.QueryContext(ctx,
		"SELECT position, COUNT(*), COUNT(DISTINCT player), SUM(pick) FROM picks GROUP BY position")
	if err != nil {
		return nil, fmt.Errorf("sql engine: position stats: %w", err)
	}
	for rows.Next() {
		var (
			pos string
			a   agg
		)
		if err := rows.Scan(&pos, &a.total, &a.uniques, &a.sumPick); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return nil, fmt.Errorf("sql engine: scan position stats: %w", err)
		}
		byPos[model.Position(pos)] = &a
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	countsByPos := make(map[model.Position][]int)
	rows, err = e.db.QueryContext(ctx,
		"SELECT position, COUNT(*) FROM picks GROUP BY draft, position")
	if err != nil {
		return nil, fmt.Errorf("sql engine: per-draft counts: %w", err)
	}
	for rows.Next() {
		var (
			pos string
			c   int
		)
		if err := rows.Scan(&pos, &c); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return nil, fmt.Errorf("sql engine: scan per-draft counts: %w", err)
		}
		countsByPos[model.Position(pos)] = append(countsByPos[model.Position(pos)], c)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	out := make([]types.PositionStats, 0, len(byPos))
	for _, pos := range model.Positions {
		a, ok := byPos[pos]
		if !ok {
			continue
		}
		out = append(out, types.PositionStats{
			Position:         pos,
			TotalDrafted:     a.total,
			UniquePlayers:    a.uniques,
			AvgPick:          float64(a.sumPick) / float64(a.total),
			MedianDraftCount: query.MedianInts(countsByPos[pos]),
		})
	}
	return out, nil
}

// FirstPlayerStats reports where the first player of each position is taken.
func (e *Engine) FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT position, SUM(first_pick), MIN(first_pick), MAX(first_pick), COUNT(*)
		FROM (SELECT draft, position, MIN(pick) AS first_pick FROM picks GROUP BY draft, position)
		GROUP BY position`)
	if err != nil {
		return nil, fmt.Errorf("sql engine: first player stats: %w", err)
	}

	type agg struct {
		sum      int64
		min, max int
		count    int
	}
	byPos := make(map[model.Position]*agg)
	for rows.Next() {
		var (
			pos string
			a   agg
		)
		if err := rows.Scan(&pos, &a.sum, &a.min, &a.max, &a.count); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return nil, fmt.Errorf("sql engine: scan first player stats: %w", err)
		}
		byPos[model.Position(pos)] = &a
	}
	if err := closeRows(rows); err != nil {
		return nil, err
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

// RoundCounts aggregates per-round position counts over the full
// round x draft grid. SQL supplies the sparse counts; the grid zero-fill and
// the mean/median finish run in Go.
func (e *Engine) RoundCounts(ctx context.Context, p query.RoundCountsParams) (types.RoundCounts, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return types.RoundCounts{}, err
	}

	totalDrafts := e.rel.TotalDrafts()
	if totalDrafts == 0 {
		return types.RoundCounts{Position: p.Position}, nil
	}

	rounds, err := e.distinctRounds(ctx)
	if err != nil {
		return types.RoundCounts{}, err
	}

	rows, err := e.db.QueryContext(ctx,
		"SELECT round, COUNT(*) FROM picks WHERE position = ? GROUP BY round, draft",
		string(p.Position))
	if err != nil {
		return types.RoundCounts{}, fmt.Errorf("sql engine: round counts: %w", err)
	}
	perRound := make(map[int][]int)
	for rows.Next() {
		var round, c int
		if err := rows.Scan(&round, &c); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return types.RoundCounts{}, fmt.Errorf("sql engine: scan round counts: %w", err)
		}
		perRound[round] = append(perRound[round], c)
	}
	if err := closeRows(rows); err != nil {
		return types.RoundCounts{}, err
	}

	out := types.RoundCounts{Position: p.Position, RoundCounts: make([]types.RoundCount, 0, len(rounds))}
	for _, round := range rounds {
		counts := perRound[round]
		var sum int64
		for _, c := range counts {
			sum += int64(c)
		}
		for len(counts) < totalDrafts {
			counts = append(counts, 0)
		}

		var v float64
		if p.Aggregation == query.Mean {
			v = float64(sum) / float64(totalDrafts)
		} else {
			v = query.MedianInts(counts)
		}
		out.RoundCounts = append(out.RoundCounts, types.RoundCount{Round: round, Count: v})
	}
	return out, nil
}

// RosterConstructionCounts tallies distinct QB/RB/WR/TE roster shapes.
func (e *Engine) RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT SUM(position = 'QB'), SUM(position = 'RB'), SUM(position = 'WR'), SUM(position = 'TE')
		FROM picks
		GROUP BY draft, team_id`)
	if err != nil {
		return nil, fmt.Errorf("sql engine: roster construction: %w", err)
	}

	freq := make(map[[4]int]int)
	for rows.Next() {
		var shape [4]int
		if err := rows.Scan(&shape[0], &shape[1], &shape[2], &shape[3]); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return nil, fmt.Errorf("sql engine: scan roster shape: %w", err)
		}
		freq[shape]++
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	out := make([]types.RosterConstruction, 0, len(freq))
	for shape, count := range freq {
		out = append(out, types.RosterConstruction{
			QB: shape[0], RB: shape[1], WR: shape[2], TE: shape[3], Count: count,
		})
	}
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
	return out, nil
}

// DraftSlotCorrelation scores player affinity with one roster slot. The
// distinct-count heavy lifting runs in SQL; probabilities, metric scoring,
// and ordering finish in Go.
func (e *Engine) DraftSlotCorrelation(ctx context.Context, p query.SlotCorrelationParams) (types.SlotCorrelation, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return types.SlotCorrelation{}, err
	}

	overall, err := e.playerTeamCounts(ctx, "SELECT player, COUNT(DISTINCT team_id) FROM picks GROUP BY player")
	if err != nil {
		return types.SlotCorrelation{}, err
	}
	slotCnt, err := e.playerTeamCounts(ctx,
		"SELECT player, COUNT(DISTINCT team_id) FROM picks WHERE draft_position = ? GROUP BY player", p.Slot)
	if err != nil {
		return types.SlotCorrelation{}, err
	}

	var teamsInSlot int
	if err := e.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT team_id) FROM picks WHERE draft_position = ?", p.Slot).Scan(&teamsInSlot); err != nil {
		return types.SlotCorrelation{}, fmt.Errorf("sql engine: slot team count: %w", err)
	}
	totalTeams := e.rel.TotalTeams()

	rows := make([]types.SlotCorrelationRow, 0, len(slotCnt))
	for player, sc := range slotCnt {
		if sc < p.MinSlotTeams {
			continue
		}
		row := types.SlotCorrelationRow{Player: player, Slot: sc, Overall: overall[player]}
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
	return types.SlotCorrelation{Slot: p.Slot, Metric: string(p.Metric), Rows: rows}, nil
}

// HeatMap counts picks per (round, position).
func (e *Engine) HeatMap(ctx context.Context) (types.HeatMap, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT round, position, COUNT(*) FROM picks GROUP BY round, position")
	if err != nil {
		return types.HeatMap{}, fmt.Errorf("sql engine: heat map: %w", err)
	}

	type cell struct {
		round    int
		position model.Position
	}
	counts := make(map[cell]int)
	roundsSet := make(map[int]struct{})
	for rows.Next() {
		var (
			round, c int
			pos      string
		)
		if err := rows.Scan(&round, &pos, &c); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return types.HeatMap{}, fmt.Errorf("sql engine: scan heat map: %w", err)
		}
		counts[cell{round, model.Position(pos)}] = c
		roundsSet[round] = struct{}{}
	}
	if err := closeRows(rows); err != nil {
		return types.HeatMap{}, err
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

// distinctRounds returns every round present in the dataset, ascending.
func (e *Engine) distinctRounds(ctx context.Context) ([]int, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT DISTINCT round FROM picks ORDER BY round")
	if err != nil {
		return nil, fmt.Errorf("sql engine: distinct rounds: %w", err)
	}
	var out []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return nil, fmt.Errorf("sql engine: scan round: %w", err)
		}
		out = append(out, r)
	}
	return out, closeRows(rows)
}

// playerTeamCounts runs a player -> distinct team count query.
func (e *Engine) playerTeamCounts(ctx context.Context, q string, args ...any) (map[string]int, error) {
	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sql engine: team counts: %w", err)
	}
	out := make(map[string]int)
	for rows.Next() {
		var (
			player string
			c      int
		)
		if err := rows.Scan(&player, &c); err != nil {
			rows.Close() //nolint:errcheck,gosec // bail out path
			return nil, fmt.Errorf("sql engine: scan team counts: %w", err)
		}
		out[player] = c
	}
	return out, closeRows(rows)
}

// closeRows finishes a cursor, preferring the iteration error.
func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("sql engine: rows: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("sql engine: close rows: %w", err)
	}
	return nil
}
