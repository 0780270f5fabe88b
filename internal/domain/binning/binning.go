// Package binning computes adaptive histogram buckets from a sequence of
// integer pick positions.
//
// Bucket width adapts to the spread of the data: tightly clustered picks
// (a player always taken in round 1) get fine-grained bars, widely dispersed
// picks get coarse bars. The function is deterministic and total over its
// input.
package binning

import (
	"fmt"
	"math"
)

// Bin is one histogram bucket. Lo and Hi are inclusive bounds.
type Bin struct {
	Label      string  `json:"range_label"`
	Lo         int     `json:"lo"`
	Hi         int     `json:"hi"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// tier maps a data range to a bucket width and bucket cap.
func tier(rng int) (bucketSize, maxBuckets int) {
	switch {
	case rng <= 12:
		return maxInt(1, ceilDiv(rng, 8)), 12
	case rng <= 36:
		return maxInt(3, ceilDiv(rng, 10)), 15
	case rng <= 84:
		return maxInt(6, ceilDiv(rng, 12)), 18
	default:
		return maxInt(12, ceilDiv(rng, 15)), 20
	}
}

// Histogram buckets the given pick positions. Empty input yields an empty
// result; a single distinct value yields one bin holding every pick.
// A value landing exactly on a bucket boundary always resolves to the lower
// bin (inclusive-bound convention).
func Histogram(picks []int) []Bin {
	if len(picks) == 0 {
		return nil
	}

	lo, hi := picks[0], picks[0]
	for _, p := range picks[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	rng := hi - lo
	n := len(picks)

	if rng == 0 {
		return []Bin{{
			Label:      fmt.Sprintf("%d", lo),
			Lo:         lo,
			Hi:         lo,
			Count:      n,
			Percentage: round1(100),
		}}
	}

	size, maxBuckets := tier(rng)
	numBuckets := ceilDiv(rng, size)
	if numBuckets > maxBuckets {
		numBuckets = maxBuckets
	}

	counts := make([]int, numBuckets)
	for _, p := range picks {
		idx := (p - lo) / size
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		counts[idx]++
	}

	bins := make([]Bin, 0, numBuckets)
	for i, c := range counts {
		if c == 0 {
			continue
		}
		binLo := lo + i*size
		binHi := binLo + size - 1
		// The data maximum always falls in the last bucket; pin its upper
		// bound there so the bins cover exactly [lo, hi].
		if i == numBuckets-1 {
			binHi = hi
		}
		label := fmt.Sprintf("%d-%d", binLo, binHi)
		if binLo == binHi {
			label = fmt.Sprintf("%d", binLo)
		}
		bins = append(bins, Bin{
			Label:      label,
			Lo:         binLo,
			Hi:         binHi,
			Count:      c,
			Percentage: round1(100 * float64(c) / float64(n)),
		})
	}
	return bins
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
