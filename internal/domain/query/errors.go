package query

import "errors"

// Sentinel kinds for logical query errors. Callers translate these at the
// boundary; they never crash the engines.
var (
	// ErrInvalidQuery marks caller-supplied parameters that violate a
	// documented constraint (bad enum, out-of-range limit/round/slot,
	// empty required-player set).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNotFound marks a lookup whose entity has no matching rows.
	ErrNotFound = errors.New("not found")
)
