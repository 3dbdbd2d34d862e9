package engine

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/cache"
	"github.com/mindforge/focusd/internal/health"
	"github.com/mindforge/focusd/internal/pattern"
	"github.com/mindforge/focusd/internal/scoring"
)

// CacheObserver receives hit/miss notifications per artifact kind. The API
// layer plugs its Prometheus counters in here.
type CacheObserver interface {
	CacheHit(kind cache.Kind)
	CacheMiss(kind cache.Kind)
}

type nopObserver struct{}

func (nopObserver) CacheHit(cache.Kind)  {}
func (nopObserver) CacheMiss(cache.Kind) {}

// Engine is the core facade: it memoizes scoring and pattern analysis
// through the cache layer. Both operations have a guaranteed-success
// contract; cache failures degrade to always-compute and are never
// surfaced to the caller.
type Engine struct {
	backend  scoring.Backend
	analyzer *pattern.Analyzer
	store    cache.Store // nil means always-compute
	ttl      time.Duration
	logger   *zap.Logger
	observer CacheObserver
}

// New creates an engine. store may be nil when the cache tier is
// unavailable; the engine then computes every request.
func New(backend scoring.Backend, analyzer *pattern.Analyzer, store cache.Store, ttl time.Duration, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		backend:  backend,
		analyzer: analyzer,
		store:    store,
		ttl:      ttl,
		logger:   logger,
		observer: nopObserver{},
	}
}

// SetObserver installs a cache hit/miss observer.
func (e *Engine) SetObserver(obs CacheObserver) {
	if obs != nil {
		e.observer = obs
	}
}

// Predict returns the concentration score for one sample, serving repeated
// calls for the same (user, timestamp) from cache until the TTL elapses.
// Cache hits are returned unmodified.
func (e *Engine) Predict(ctx context.Context, sample health.Sample) scoring.ScoreResult {
	key := cache.Key(cache.KindPrediction, sample.UserID, predictionScope(sample))

	var cached scoring.ScoreResult
	if e.lookup(ctx, cache.KindPrediction, key, &cached) {
		return cached
	}

	result := e.backend.Score(sample.Features())
	e.populate(ctx, key, result)
	return result
}

// AnalyzePattern returns the focus-pattern report for a user over a date
// range, memoized by (user, start, end). The caller supplies the raw
// samples; the engine never queries the persistent store itself.
func (e *Engine) AnalyzePattern(ctx context.Context, userID string, start, end time.Time, samples []health.Sample) pattern.Report {
	key := cache.Key(cache.KindPatternReport, userID,
		start.Format(time.DateOnly), end.Format(time.DateOnly))

	var cached pattern.Report
	if e.lookup(ctx, cache.KindPatternReport, key, &cached) {
		return cached
	}

	report := e.analyzer.Analyze(samples)
	e.populate(ctx, key, report)
	return report
}

// lookup deserializes a cached artifact into out. Connectivity and
// serialization failures count as misses.
func (e *Engine) lookup(ctx context.Context, kind cache.Kind, key string, out interface{}) bool {
	if e.store == nil {
		e.observer.CacheMiss(kind)
		return false
	}

	data, hit, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("cache get failed, computing instead",
			zap.String("key", key), zap.Error(err))
		e.observer.CacheMiss(kind)
		return false
	}
	if !hit {
		e.observer.CacheMiss(kind)
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		e.logger.Warn("cached value unreadable, computing instead",
			zap.String("key", key), zap.Error(err))
		e.observer.CacheMiss(kind)
		return false
	}

	e.observer.CacheHit(kind)
	return true
}

// populate stores a computed artifact. Failures are logged and otherwise
// ignored; the cache is an optimization, not a dependency.
func (e *Engine) populate(ctx context.Context, key string, value interface{}) {
	if e.store == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		e.logger.Warn("cache value not serializable",
			zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, key, data, e.ttl); err != nil {
		e.logger.Warn("cache set failed",
			zap.String("key", key), zap.Error(err))
	}
}

// predictionScope is the temporal scope of a prediction key: the sample's
// timestamp when present, otherwise today's date.
func predictionScope(sample health.Sample) string {
	if sample.HasTimestamp() {
		return sample.RecordedAt.UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.DateOnly)
}
