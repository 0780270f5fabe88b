// Package dispatch routes each query through the result cache and the two
// execution engines, picking a winner by observed latency.
//
// The primary engine always runs first. Its result is returned immediately
// when it answers within the absolute latency threshold; otherwise the
// secondary engine is consulted, and its result wins only when it beat the
// primary by the relative margin. Domain errors (invalid parameters, not
// found) are deterministic across engines and never trigger a fallback.
package dispatch

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bsamaha/draftlab/internal/adapters/cache"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
	"github.com/bsamaha/draftlab/pkg/logger"
	"github.com/bsamaha/draftlab/pkg/metrics"
)

// Default latency policy values.
const (
	DefaultAbsoluteThreshold = 50 * time.Millisecond
	DefaultRelativeMargin    = 0.20
)

// Operation names used for cache keys and metric labels.
const (
	opListPlayers        = "list_players"
	opPlayerDetails      = "player_details"
	opPositionStats      = "position_stats"
	opFirstPlayerStats   = "first_player_stats"
	opRoundCounts        = "round_counts"
	opRosterConstruction = "roster_construction"
	opSlotCorrelation    = "slot_correlation"
	opHeatMap            = "heat_map"
)

// Policy is the latency-based engine selection rule.
type Policy struct {
	// AbsoluteThreshold is the latency under which the primary's answer is
	// accepted without consulting the secondary.
	AbsoluteThreshold time.Duration

	// RelativeMargin is the fraction by which the secondary must beat the
	// primary's latency for its result to win.
	RelativeMargin float64
}

// DefaultPolicy returns the standard selection rule.
func DefaultPolicy() Policy {
	return Policy{
		AbsoluteThreshold: DefaultAbsoluteThreshold,
		RelativeMargin:    DefaultRelativeMargin,
	}
}

// Dispatcher implements query.Engine by delegating to two engines behind a
// cache. Identical concurrent requests are collapsed into one execution.
type Dispatcher struct {
	primary   query.Engine
	secondary query.Engine
	policy    Policy
	results   cache.Cache
	group     singleflight.Group
	log       logger.Logger
}

// New builds a dispatcher over a primary and secondary engine. Without
// options it uses the default policy, a disabled cache, and the global
// logger.
func New(primary, secondary query.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		primary:   primary,
		secondary: secondary,
		policy:    DefaultPolicy(),
		log:       logger.Named("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.results == nil {
		d.results, _ = cache.New(0)
	}
	return d
}

// Name identifies the engine in logs and metrics.
func (d *Dispatcher) Name() string { return "dispatch" }

// CachedResults reports the current number of cached query results.
func (d *Dispatcher) CachedResults() int { return d.results.Len() }

// domainErr reports whether err is deterministic across engines and must be
// surfaced as-is instead of triggering a fallback.
func domainErr(err error) bool {
	return errors.Is(err, query.ErrInvalidQuery) || errors.Is(err, query.ErrNotFound)
}

// run executes one operation: cache lookup, request collapsing, then the
// two-engine latency race. Results are cached only on success. A
// package-level function because methods cannot carry type parameters.
func run[T any](ctx context.Context, d *Dispatcher, op string, params any,
	call func(context.Context, query.Engine) (T, error)) (T, error) {
	var zero T

	key := cache.Key(op, params)
	if v, ok := d.results.Get(key); ok {
		metrics.RecordCacheHit()
		return v.(T), nil
	}
	metrics.RecordCacheMiss()

	v, err, _ := d.group.Do(key, func() (any, error) {
		res, engineName, err := d.race(ctx, op, func(ctx context.Context, e query.Engine) (any, error) {
			return call(ctx, e)
		})
		if err != nil {
			return nil, err
		}
		d.results.Add(key, res)
		metrics.UpdateCacheEntries(d.results.Len())
		metrics.RecordEngineWin(op, engineName)
		return res, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// race runs the primary engine and, when the latency policy demands it, the
// secondary. It returns the winning result and the winner's name.
func (d *Dispatcher) race(ctx context.Context, op string,
	call func(context.Context, query.Engine) (any, error)) (any, string, error) {
	start := time.Now()
	pRes, pErr := call(ctx, d.primary)
	pDur := time.Since(start)
	metrics.RecordQueryDuration(op, d.primary.Name(), ms(pDur))

	if pErr != nil && domainErr(pErr) {
		return nil, "", pErr
	}
	if pErr == nil && pDur <= d.policy.AbsoluteThreshold {
		return pRes, d.primary.Name(), nil
	}

	if pErr != nil {
		metrics.RecordEngineError(d.primary.Name())
		d.log.Warn(ctx, "primary engine failed, falling back",
			logger.String("operation", op),
			logger.String("engine", d.primary.Name()),
			logger.Error(pErr))
	}
	metrics.RecordEngineRace()

	start = time.Now()
	sRes, sErr := call(ctx, d.secondary)
	sDur := time.Since(start)
	metrics.RecordQueryDuration(op, d.secondary.Name(), ms(sDur))

	switch {
	case pErr != nil && sErr != nil:
		metrics.RecordEngineError(d.secondary.Name())
		return nil, "", pErr
	case pErr != nil:
		return sRes, d.secondary.Name(), nil
	case sErr != nil:
		metrics.RecordEngineError(d.secondary.Name())
		return pRes, d.primary.Name(), nil
	}

	// The secondary must be strictly faster than the margin-adjusted primary
	// time to win; a tie goes to the primary.
	if float64(sDur) < float64(pDur)*(1-d.policy.RelativeMargin) {
		d.log.Debug(ctx, "secondary engine won",
			logger.String("operation", op),
			logger.Duration("primary", pDur),
			logger.Duration("secondary", sDur))
		return sRes, d.secondary.Name(), nil
	}
	return pRes, d.primary.Name(), nil
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ListPlayers routes through the cache and engine race.
func (d *Dispatcher) ListPlayers(ctx context.Context, p query.ListPlayersParams) (types.PlayerPage, error) {
	p = p.Normalize()
	return run(ctx, d, opListPlayers, p, func(ctx context.Context, e query.Engine) (types.PlayerPage, error) {
		return e.ListPlayers(ctx, p)
	})
}

// PlayerDetails routes through the cache and engine race.
func (d *Dispatcher) PlayerDetails(ctx context.Context, p query.PlayerDetailsParams) (types.PlayerDetails, error) {
	return run(ctx, d, opPlayerDetails, p, func(ctx context.Context, e query.Engine) (types.PlayerDetails, error) {
		return e.PlayerDetails(ctx, p)
	})
}

// PositionStats routes through the cache and engine race.
func (d *Dispatcher) PositionStats(ctx context.Context) ([]types.PositionStats, error) {
	return run(ctx, d, opPositionStats, nil, func(ctx context.Context, e query.Engine) ([]types.PositionStats, error) {
		return e.PositionStats(ctx)
	})
}

// FirstPlayerStats routes through the cache and engine race.
func (d *Dispatcher) FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error) {
	return run(ctx, d, opFirstPlayerStats, nil, func(ctx context.Context, e query.Engine) ([]types.FirstPickStats, error) {
		return e.FirstPlayerStats(ctx)
	})
}

// RoundCounts routes through the cache and engine race.
func (d *Dispatcher) RoundCounts(ctx context.Context, p query.RoundCountsParams) (types.RoundCounts, error) {
	p = p.Normalize()
	return run(ctx, d, opRoundCounts, p, func(ctx context.Context, e query.Engine) (types.RoundCounts, error) {
		return e.RoundCounts(ctx, p)
	})
}

// RosterConstructionCounts routes through the cache and engine race.
func (d *Dispatcher) RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error) {
	return run(ctx, d, opRosterConstruction, nil, func(ctx context.Context, e query.Engine) ([]types.RosterConstruction, error) {
		return e.RosterConstructionCounts(ctx)
	})
}

// DraftSlotCorrelation routes through the cache and engine race.
func (d *Dispatcher) DraftSlotCorrelation(ctx context.Context, p query.SlotCorrelationParams) (types.SlotCorrelation, error) {
	p = p.Normalize()
	return run(ctx, d, opSlotCorrelation, p, func(ctx context.Context, e query.Engine) (types.SlotCorrelation, error) {
		return e.DraftSlotCorrelation(ctx, p)
	})
}

// HeatMap routes through the cache and engine race.
func (d *Dispatcher) HeatMap(ctx context.Context) (types.HeatMap, error) {
	return run(ctx, d, opHeatMap, nil, func(ctx context.Context, e query.Engine) (types.HeatMap, error) {
		return e.HeatMap(ctx)
	})
}
