// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsamaha/draftlab/internal/adapters/cache"
	"github.com/bsamaha/draftlab/internal/adapters/dataset"
	"github.com/bsamaha/draftlab/internal/dispatch"
	"github.com/bsamaha/draftlab/internal/domain/binning"
	"github.com/bsamaha/draftlab/internal/domain/combos"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
	"github.com/bsamaha/draftlab/internal/engine/frame"
	"github.com/bsamaha/draftlab/internal/engine/sqlengine"
	"github.com/bsamaha/draftlab/pkg/logger"
	"github.com/bsamaha/draftlab/pkg/metrics"
)

// PlayerHistogram is a player's pick positions bucketed for display.
type PlayerHistogram struct {
	Name       string        `json:"player_name"`
	Position   string        `json:"position"`
	Team       string        `json:"team"`
	Bins       []binning.Bin `json:"bins"`
	TotalPicks int           `json:"total_picks"`
}

// Service wires the dataset, both query engines, the dispatcher, and the
// result cache into the operation set the HTTP API consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	rel      *dataset.Relation
	sqlEng   *sqlengine.Engine
	frameEng *frame.Engine
	engine   query.Engine
	results  cache.Cache

	// Configuration
	dataPath      string
	cacheCapacity int
	policy        dispatch.Policy

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath sets the picks CSV path loaded on Start.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithCacheCapacity bounds the result cache. Zero or negative disables it.
func WithCacheCapacity(capacity int) Option {
	return func(s *Service) {
		s.cacheCapacity = capacity
	}
}

// WithDispatchPolicy overrides the engine selection policy.
func WithDispatchPolicy(p dispatch.Policy) Option {
	return func(s *Service) {
		if p.AbsoluteThreshold > 0 {
			s.policy.AbsoluteThreshold = p.AbsoluteThreshold
		}
		if p.RelativeMargin > 0 {
			s.policy.RelativeMargin = p.RelativeMargin
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRelation injects a pre-built dataset, bypassing the CSV load on Start.
// Intended for tests and tooling.
func WithRelation(rel *dataset.Relation) Option {
	return func(s *Service) {
		s.rel = rel
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:      "data/draft_picks.csv",
		cacheCapacity: 1024,
		policy:        dispatch.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset and builds both engines and the dispatcher.
// A dataset load failure is startup-fatal and returned unwrapped so callers
// can errors.Is against dataset.ErrDataLoad.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting draft analytics service...")

	if s.rel == nil {
		start := time.Now()
		rel, err := dataset.Load(ctx, s.dataPath)
		if err != nil {
			return err
		}
		s.rel = rel
		s.logger.Info(ctx, "dataset loaded",
			logger.String("path", s.dataPath),
			logger.Int("rows", rel.NumRows()),
			logger.Duration("elapsed", time.Since(start)),
		)
	}

	meta := s.rel.Metadata()
	metrics.UpdateDatasetRows(s.rel.NumRows())
	metrics.UpdateDatasetPlayers(meta.TotalPlayers)
	metrics.UpdateDatasetDrafts(meta.TotalDrafts)

	sqlEng, err := sqlengine.New(ctx, s.rel)
	if err != nil {
		return fmt.Errorf("service: build sql engine: %w", err)
	}
	s.sqlEng = sqlEng
	s.frameEng = frame.New(s.rel)

	results, err := cache.New(s.cacheCapacity)
	if err != nil {
		_ = s.sqlEng.Close()
		return fmt.Errorf("service: build cache: %w", err)
	}
	s.results = results

	s.engine = dispatch.New(s.sqlEng, s.frameEng,
		dispatch.WithPolicy(s.policy),
		dispatch.WithCache(s.results),
		dispatch.WithLogger(s.logger.Named("dispatch")),
	)

	s.started = true
	s.logger.Info(ctx, "draft analytics service started",
		logger.Int("players", meta.TotalPlayers),
		logger.Int("drafts", meta.TotalDrafts),
		logger.Int("teams", meta.TotalTeams),
		logger.Int("cacheCapacity", s.cacheCapacity),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping draft analytics service...")

	if s.sqlEng != nil {
		if err := s.sqlEng.Close(); err != nil {
			s.logger.Warn(context.Background(), "sql engine close failed", logger.Error(err))
		}
	}
	if s.results != nil {
		s.results.Purge()
	}

	s.started = false
	s.logger.Info(context.Background(), "draft analytics service stopped")
}

// ListPlayers serves the paginated player summary listing.
func (s *Service) ListPlayers(ctx context.Context, p query.ListPlayersParams) (types.PlayerPage, error) {
	return s.engine.ListPlayers(ctx, p)
}

// PlayerDetails serves the full pick history of one player identity.
func (s *Service) PlayerDetails(ctx context.Context, p query.PlayerDetailsParams) (types.PlayerDetails, error) {
	return s.engine.PlayerDetails(ctx, p)
}

// PositionStats serves per-position aggregate statistics.
func (s *Service) PositionStats(ctx context.Context) ([]types.PositionStats, error) {
	return s.engine.PositionStats(ctx)
}

// FirstPlayerStats serves the earliest-pick statistics per position.
func (s *Service) FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error) {
	return s.engine.FirstPlayerStats(ctx)
}

// RoundCounts serves the per-round aggregation for one position.
func (s *Service) RoundCounts(ctx context.Context, p query.RoundCountsParams) (types.RoundCounts, error) {
	return s.engine.RoundCounts(ctx, p)
}

// RosterConstructionCounts serves the roster shape distribution.
func (s *Service) RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error) {
	return s.engine.RosterConstructionCounts(ctx)
}

// DraftSlotCorrelation serves the slot affinity ranking.
func (s *Service) DraftSlotCorrelation(ctx context.Context, p query.SlotCorrelationParams) (types.SlotCorrelation, error) {
	return s.engine.DraftSlotCorrelation(ctx, p)
}

// HeatMap serves pick counts per (round, position).
func (s *Service) HeatMap(ctx context.Context) (types.HeatMap, error) {
	return s.engine.HeatMap(ctx)
}

// PlayerCombinations runs the roster combination search. It has a single
// implementation rather than an engine pair, so it bypasses the dispatcher
// but still goes through the result cache.
func (s *Service) PlayerCombinations(ctx context.Context, p combos.Params) (combos.Result, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return combos.Result{}, err
	}

	key := cache.Key("player_combinations", p)
	if v, ok := s.results.Get(key); ok {
		metrics.RecordCacheHit()
		return v.(combos.Result), nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	res, err := combos.Find(s.rel, p)
	if err != nil {
		return combos.Result{}, err
	}
	metrics.RecordQueryDuration("player_combinations", "combos", float64(time.Since(start).Nanoseconds())/1e6)

	s.results.Add(key, res)
	metrics.UpdateCacheEntries(s.results.Len())
	return res, nil
}

// PlayerHistogram buckets one player's pick positions into adaptive bins.
// The pick list resolves through the dispatched PlayerDetails, so repeated
// calls share its cache entry.
func (s *Service) PlayerHistogram(ctx context.Context, p query.PlayerDetailsParams) (PlayerHistogram, error) {
	details, err := s.engine.PlayerDetails(ctx, p)
	if err != nil {
		return PlayerHistogram{}, err
	}
	return PlayerHistogram{
		Name:       details.Name,
		Position:   string(details.Position),
		Team:       details.Team,
		Bins:       binning.Histogram(details.Picks),
		TotalPicks: len(details.Picks),
	}, nil
}

// Metadata describes the loaded dataset.
func (s *Service) Metadata(_ context.Context) (types.Metadata, error) {
	return s.rel.Metadata(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"cache_capacity": s.cacheCapacity,
	}
	if s.started {
		meta := s.rel.Metadata()
		stats["rows"] = s.rel.NumRows()
		stats["players"] = meta.TotalPlayers
		stats["drafts"] = meta.TotalDrafts
		stats["teams"] = meta.TotalTeams
		stats["cached_results"] = s.results.Len()

		metrics.UpdateCacheEntries(s.results.Len())
	}
	return stats
}
