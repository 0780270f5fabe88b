package query

import (
	"sort"

	"github.com/bsamaha/draftlab/internal/domain/types"
)

// MedianFloat64 returns the median of xs, averaging the two middle values
// for even-length input. The input slice is not modified. Empty input
// yields 0.
func MedianFloat64(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MedianInts returns the median of xs as a float64, averaging the two middle
// values for even-length input.
func MedianInts(xs []int) float64 {
	fs := make([]float64, len(xs))
	for i, v := range xs {
		fs[i] = float64(v)
	}
	return MedianFloat64(fs)
}

// PageOf computes pagination info for a result of total rows viewed through
// offset/limit. Both engines derive page info through this single helper so
// the shapes cannot drift.
func PageOf(total, limit, offset int) types.PageInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return types.PageInfo{
		TotalCount:  total,
		Limit:       limit,
		Offset:      offset,
		HasNext:     offset+limit < total,
		HasPrevious: offset > 0,
		CurrentPage: offset/limit + 1,
		TotalPages:  totalPages,
	}
}
