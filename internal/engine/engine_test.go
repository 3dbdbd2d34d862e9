package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindforge/focusd/internal/cache"
	"github.com/mindforge/focusd/internal/health"
	"github.com/mindforge/focusd/internal/pattern"
	"github.com/mindforge/focusd/internal/scoring"
)

// countingBackend tracks how many times real computation ran.
type countingBackend struct {
	calls int
}

func (c *countingBackend) Score(health.FeatureSet) scoring.ScoreResult {
	c.calls++
	return scoring.ScoreResult{
		ConcentrationScore: 74,
		Confidence:         0.8,
		Recommendations:    []string{"ok"},
		GeneratedAt:        time.Now(),
	}
}

// failingStore simulates an unreachable cache tier.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache unreachable")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache unreachable")
}

func sampleAt(ts time.Time) health.Sample {
	return health.Sample{
		UserID:     "u1",
		RecordedAt: ts,
		HeartRate:  70,
		Steps:      6000,
		SleepHours: 7,
	}
}

func newEngine(backend scoring.Backend, store cache.Store, ttl time.Duration) *Engine {
	return New(backend, pattern.NewAnalyzer(backend, nil), store, ttl, nil)
}

func TestEngine_Predict(t *testing.T) {
	at := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	t.Run("second call is served from cache", func(t *testing.T) {
		// Arrange
		backend := &countingBackend{}
		eng := newEngine(backend, cache.NewTTLStore(0), time.Minute)
		ctx := context.Background()

		// Act
		first := eng.Predict(ctx, sampleAt(at))
		second := eng.Predict(ctx, sampleAt(at))

		// Assert
		assert.Equal(t, 1, backend.calls, "second call must not recompute")
		assert.Equal(t, first.ConcentrationScore, second.ConcentrationScore)
		assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt),
			"cache hit must return the stored result unmodified")
	})

	t.Run("recomputes after the TTL elapses", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, cache.NewTTLStore(0), 20*time.Millisecond)
		ctx := context.Background()

		first := eng.Predict(ctx, sampleAt(at))
		time.Sleep(40 * time.Millisecond)
		second := eng.Predict(ctx, sampleAt(at))

		assert.Equal(t, 2, backend.calls)
		assert.False(t, first.GeneratedAt.Equal(second.GeneratedAt))
	})

	t.Run("different timestamps use different entries", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, cache.NewTTLStore(0), time.Minute)
		ctx := context.Background()

		eng.Predict(ctx, sampleAt(at))
		eng.Predict(ctx, sampleAt(at.Add(time.Hour)))

		assert.Equal(t, 2, backend.calls)
	})

	t.Run("nil store always computes", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, nil, time.Minute)
		ctx := context.Background()

		eng.Predict(ctx, sampleAt(at))
		eng.Predict(ctx, sampleAt(at))

		assert.Equal(t, 2, backend.calls)
	})

	t.Run("cache failures degrade to compute", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, failingStore{}, time.Minute)
		ctx := context.Background()

		result := eng.Predict(ctx, sampleAt(at))

		assert.Equal(t, 1, backend.calls)
		assert.Equal(t, 74.0, result.ConcentrationScore)
	})

	t.Run("corrupted cache entry counts as a miss", func(t *testing.T) {
		backend := &countingBackend{}
		store := cache.NewTTLStore(0)
		eng := newEngine(backend, store, time.Minute)
		ctx := context.Background()

		key := cache.Key(cache.KindPrediction, "u1", at.UTC().Format(time.RFC3339))
		require.NoError(t, store.Set(ctx, key, []byte("not json"), time.Minute))

		result := eng.Predict(ctx, sampleAt(at))

		assert.Equal(t, 1, backend.calls)
		assert.Equal(t, 74.0, result.ConcentrationScore)
	})
}

func TestEngine_AnalyzePattern(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	t.Run("memoizes by user and date range", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, cache.NewTTLStore(0), time.Minute)
		ctx := context.Background()
		samples := []health.Sample{sampleAt(start.Add(9 * time.Hour))}

		first := eng.AnalyzePattern(ctx, "u1", start, end, samples)
		second := eng.AnalyzePattern(ctx, "u1", start, end, samples)

		assert.Equal(t, 1, backend.calls)
		assert.Equal(t, first, second)
	})

	t.Run("different ranges compute separately", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, cache.NewTTLStore(0), time.Minute)
		ctx := context.Background()
		samples := []health.Sample{sampleAt(start.Add(9 * time.Hour))}

		eng.AnalyzePattern(ctx, "u1", start, end, samples)
		eng.AnalyzePattern(ctx, "u1", start, end.AddDate(0, 0, 1), samples)

		assert.Equal(t, 2, backend.calls)
	})

	t.Run("empty samples produce the zero report without caching trouble", func(t *testing.T) {
		backend := &countingBackend{}
		eng := newEngine(backend, cache.NewTTLStore(0), time.Minute)

		report := eng.AnalyzePattern(context.Background(), "u1", start, end, nil)

		assert.Zero(t, report.DailyAverage)
		assert.Empty(t, report.WeeklyTrend)
		assert.Zero(t, backend.calls)
	})
}

// recordingObserver captures hit/miss notifications.
type recordingObserver struct {
	hits   []cache.Kind
	misses []cache.Kind
}

func (r *recordingObserver) CacheHit(kind cache.Kind)  { r.hits = append(r.hits, kind) }
func (r *recordingObserver) CacheMiss(kind cache.Kind) { r.misses = append(r.misses, kind) }

func TestEngine_Observer(t *testing.T) {
	backend := &countingBackend{}
	eng := newEngine(backend, cache.NewTTLStore(0), time.Minute)
	obs := &recordingObserver{}
	eng.SetObserver(obs)
	ctx := context.Background()
	at := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	eng.Predict(ctx, sampleAt(at))
	eng.Predict(ctx, sampleAt(at))

	assert.Equal(t, []cache.Kind{cache.KindPrediction}, obs.misses)
	assert.Equal(t, []cache.Kind{cache.KindPrediction}, obs.hits)
}
