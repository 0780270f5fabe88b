// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() builds a Config with defaults; Load(ctx) layers file and
//     environment overrides on top.
//   - External errors must be wrapped via this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath points at the draft pick CSV loaded on startup.
	DataPath string `koanf:"data_path"`

	// CacheCapacity bounds the query result cache. Zero disables caching.
	CacheCapacity int `koanf:"cache_capacity"`

	// DispatchThresholdMS is the latency under which the primary engine's
	// answer is accepted without consulting the secondary.
	DispatchThresholdMS int `koanf:"dispatch_threshold_ms"`

	// DispatchMargin is the fraction by which the secondary engine must
	// beat the primary's latency for its result to win.
	DispatchMargin float64 `koanf:"dispatch_margin"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DataPath:            "data/draft_picks.csv",
		CacheCapacity:       1024,
		DispatchThresholdMS: 50,
		DispatchMargin:      0.20,
	}
}
