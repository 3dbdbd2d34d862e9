package cache

import (
	"context"
	"strings"
	"time"
)

// Kind identifies the artifact family a cache entry belongs to. Kinds
// partition the key space so a prediction and a pattern report for the same
// user can never collide.
type Kind string

const (
	KindPrediction    Kind = "prediction"
	KindPatternReport Kind = "pattern_report"
	KindProfile       Kind = "profile"
	KindRawMetrics    Kind = "raw_metrics"
)

// Key builds the cache key for an artifact. It is a pure function of its
// inputs: identical (kind, identity, scope) always produce the same key,
// which is what makes memoization across call sites correct.
func Key(kind Kind, identity string, scope ...string) string {
	parts := make([]string, 0, 2+len(scope))
	parts = append(parts, string(kind), identity)
	parts = append(parts, scope...)
	return strings.Join(parts, ":")
}

// Store is the memoization contract used by the engine. Implementations
// treat every entry as write-once-per-set: a Set fully replaces the value
// under the key, and entries become unreachable once their TTL elapses.
// TTL expiry is the only invalidation mechanism.
type Store interface {
	// Get returns the stored value and true on a hit. An expired or absent
	// entry reports false with no error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set atomically stores value under key for the given TTL, replacing
	// any previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
