package config

import (
	"errors"
)

// Sentinel errors returned by Load. Callers branch with errors.Is; the
// wrapped message names the offending source or field.
var (
	// ErrInvalidConfig marks a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLoadConfig marks a failure reading or merging a configuration source.
	ErrLoadConfig = errors.New("configuration load failed")
)
