package dispatch

import (
	"github.com/bsamaha/draftlab/internal/adapters/cache"
	"github.com/bsamaha/draftlab/pkg/logger"
)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithPolicy overrides the latency selection policy. Zero-valued fields keep
// their defaults.
func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) {
		if p.AbsoluteThreshold > 0 {
			d.policy.AbsoluteThreshold = p.AbsoluteThreshold
		}
		if p.RelativeMargin > 0 {
			d.policy.RelativeMargin = p.RelativeMargin
		}
	}
}

// WithCache sets the result cache.
func WithCache(c cache.Cache) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.results = c
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}
