package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/bsamaha/draftlab/internal/domain/model"
	"github.com/bsamaha/draftlab/pkg/logger"
)

// Column names required in the source file. These match the upstream export
// schema, including its mixed casing.
var requiredColumns = []string{
	"draft", "team_id", "draft_position", "round", "pick", "player", "Position", "Team",
}

// Load reads the picks CSV at path and returns an immutable Relation.
// Any missing file, absent column, or unparsable cell fails with ErrDataLoad.
func Load(ctx context.Context, path string) (*Relation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataLoad, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	rel, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataLoad, path, err)
	}

	log := logger.Get().Named("dataset")
	log.Info(ctx, "dataset loaded",
		logger.String("path", path),
		logger.Int("rows", rel.NumRows()),
		logger.Int("drafts", rel.TotalDrafts()),
		logger.Int("teams", rel.TotalTeams()),
		logger.Int("players", rel.Metadata().TotalPlayers),
	)
	return rel, nil
}

// read parses CSV rows into a Relation. Separated from Load so schema tests
// can feed arbitrary readers.
func read(src io.Reader) (*Relation, error) {
	cr := csv.NewReader(src)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %v", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	cols := make([]int, len(requiredColumns))
	for i, name := range requiredColumns {
		j, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		cols[i] = j
	}

	r := &Relation{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line+1, err)
		}
		line++

		p, err := parsePick(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		r.append(p)
	}

	r.finalize()
	return r, nil
}

func parsePick(rec []string, cols []int) (model.Pick, error) {
	draft, err := atoi("draft", rec[cols[0]], math.MaxInt32)
	if err != nil {
		return model.Pick{}, err
	}
	teamID, err := atoi("team_id", rec[cols[1]], math.MaxInt32)
	if err != nil {
		return model.Pick{}, err
	}
	slot, err := atoi("draft_position", rec[cols[2]], math.MaxInt16)
	if err != nil {
		return model.Pick{}, err
	}
	round, err := atoi("round", rec[cols[3]], math.MaxInt16)
	if err != nil {
		return model.Pick{}, err
	}
	pick, err := atoi("pick", rec[cols[4]], math.MaxInt16)
	if err != nil {
		return model.Pick{}, err
	}
	pos, err := model.ParsePosition(rec[cols[6]])
	if err != nil {
		return model.Pick{}, err
	}
	if round < 1 {
		return model.Pick{}, fmt.Errorf("round must be >= 1, got %d", round)
	}
	return model.Pick{
		DraftID:       draft,
		TeamID:        teamID,
		DraftPosition: slot,
		Round:         round,
		OverallPick:   pick,
		Player:        rec[cols[5]],
		Position:      pos,
		Team:          rec[cols[7]],
	}, nil
}

// atoi parses a cell and rejects values the columnar store cannot hold
// without narrowing. Identifiers and pick numbers are never negative.
func atoi(col, s string, max int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %s: not an integer: %q", col, s)
	}
	if v < 0 || v > max {
		return 0, fmt.Errorf("column %s: value %d out of range [0, %d]", col, v, max)
	}
	return v, nil
}
