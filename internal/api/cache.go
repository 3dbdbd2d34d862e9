package api

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/cache"
	"github.com/mindforge/focusd/internal/health"
)

// The profile and raw-metrics kinds are cached at the handler level; the
// prediction and pattern-report kinds live inside the engine. Failures here
// follow the same rule everywhere: a broken cache is a miss, never an error.

func (s *Server) cacheRawSample(ctx context.Context, sample health.Sample) {
	if s.cacheStore == nil {
		return
	}
	key := cache.Key(cache.KindRawMetrics, sample.UserID,
		sample.RecordedAt.UTC().Format(time.RFC3339))
	data, err := json.Marshal(sample)
	if err != nil {
		s.logger.Warn("cache raw sample: marshal", zap.Error(err))
		return
	}
	if err := s.cacheStore.Set(ctx, key, data, s.config.Cache.TTL()); err != nil {
		s.logger.Warn("cache raw sample: set", zap.String("key", key), zap.Error(err))
	}
}

func (s *Server) cachedProfile(ctx context.Context, userID string) (*health.UserProfile, bool) {
	if s.cacheStore == nil {
		return nil, false
	}
	key := cache.Key(cache.KindProfile, userID)

	data, hit, err := s.cacheStore.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cached profile: get", zap.String("key", key), zap.Error(err))
		s.metrics.CacheMiss(cache.KindProfile)
		return nil, false
	}
	if !hit {
		s.metrics.CacheMiss(cache.KindProfile)
		return nil, false
	}

	var profile health.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		s.logger.Warn("cached profile: unmarshal", zap.String("key", key), zap.Error(err))
		s.metrics.CacheMiss(cache.KindProfile)
		return nil, false
	}
	s.metrics.CacheHit(cache.KindProfile)
	return &profile, true
}

func (s *Server) cacheProfile(ctx context.Context, profile health.UserProfile) {
	if s.cacheStore == nil {
		return
	}
	key := cache.Key(cache.KindProfile, profile.UserID)
	data, err := json.Marshal(profile)
	if err != nil {
		s.logger.Warn("cache profile: marshal", zap.Error(err))
		return
	}
	if err := s.cacheStore.Set(ctx, key, data, s.config.Cache.TTL()); err != nil {
		s.logger.Warn("cache profile: set", zap.String("key", key), zap.Error(err))
	}
}
