package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	// ErrDataLoad covers a missing, unreadable, or schema-invalid source.
	// It is fatal at startup.
	ErrDataLoad = errors.New("data load failed")
)
