// Command gendata writes a synthetic draft pick CSV for local runs and
// benchmarks. Drafts are snake order over 12 slots; each slot picks one
// player per round from a shared positional pool with mild randomness, so
// aggregate shapes (ADP curves, roster constructions) resemble real data.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
)

// Default generation constants.
const (
	defaultDrafts = 200
	defaultRounds = 20
	defaultSeed   = 1
	slotsPerDraft = 12
	jitterWindow  = 18 // how far down the board a team may reach
)

// poolSpec sizes the player pool per position, roughly mirroring real
// best-ball player distributions.
var poolSpec = []struct {
	position string
	count    int
}{
	{"QB", 32},
	{"RB", 70},
	{"WR", 90},
	{"TE", 30},
	{"K", 12},
	{"DST", 12},
}

var teams = []string{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LAC", "LAR", "LV", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SEA", "SF", "TB", "TEN", "WAS",
}

type player struct {
	name     string
	position string
	team     string
	adp      float64 // board order; lower goes earlier
}

func main() {
	var (
		out    = flag.String("out", "data/draft_picks.csv", "Output CSV path")
		drafts = flag.Int("drafts", defaultDrafts, "Number of drafts to simulate")
		rounds = flag.Int("rounds", defaultRounds, "Rounds per draft")
		seed   = flag.Int64("seed", defaultSeed, "Random seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	pool := buildPool(rng)

	if err := writeCSV(*out, pool, *drafts, *rounds, rng); err != nil {
		os.Stderr.WriteString("gendata failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Printf("wrote %d drafts x %d slots x %d rounds to %s\n", *drafts, slotsPerDraft, *rounds, *out)
}

// buildPool creates the shared player board ordered by a noisy ADP.
func buildPool(rng *rand.Rand) []player {
	var pool []player
	for _, spec := range poolSpec {
		for i := 0; i < spec.count; i++ {
			base := float64(i+1) * baseSpacing(spec.position)
			pool = append(pool, player{
				name:     fmt.Sprintf("%s Player %02d", spec.position, i+1),
				position: spec.position,
				team:     teams[rng.Intn(len(teams))],
				adp:      base + rng.Float64()*6,
			})
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].adp < pool[j].adp })
	return pool
}

// baseSpacing spreads positions across the board: RB/WR go early and dense,
// K/DST cluster at the end.
func baseSpacing(position string) float64 {
	switch position {
	case "RB", "WR":
		return 2.2
	case "QB":
		return 5.5
	case "TE":
		return 6.5
	default: // K, DST
		return 16
	}
}

func writeCSV(path string, pool []player, drafts, rounds int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // flushed and closed below

	w := csv.NewWriter(f)
	header := []string{"draft", "team_id", "draft_position", "round", "pick", "player", "Position", "Team"}
	if err := w.Write(header); err != nil {
		return err
	}

	teamID := 0
	for d := 1; d <= drafts; d++ {
		taken := make([]bool, len(pool))
		slotTeam := make([]int, slotsPerDraft+1)
		for slot := 1; slot <= slotsPerDraft; slot++ {
			teamID++
			slotTeam[slot] = teamID
		}

		overall := 0
		for round := 1; round <= rounds; round++ {
			for i := 0; i < slotsPerDraft; i++ {
				slot := i + 1
				if round%2 == 0 { // snake: even rounds reverse
					slot = slotsPerDraft - i
				}
				overall++

				idx := pickIndex(pool, taken, rng)
				taken[idx] = true
				p := pool[idx]

				row := []string{
					fmt.Sprint(d),
					fmt.Sprint(slotTeam[slot]),
					fmt.Sprint(slot),
					fmt.Sprint(round),
					fmt.Sprint(overall),
					p.name,
					p.position,
					p.team,
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// pickIndex selects the next pick: one of the best still-available players,
// reaching at most jitterWindow spots down the board.
func pickIndex(pool []player, taken []bool, rng *rand.Rand) int {
	reach := rng.Intn(jitterWindow)
	seen := 0
	last := -1
	for i := range pool {
		if taken[i] {
			continue
		}
		last = i
		if seen == reach {
			return i
		}
		seen++
	}
	// Fewer available players than the reach; take the last one.
	return last
}
