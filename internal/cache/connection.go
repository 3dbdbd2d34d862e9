package cache

import (
	"time"

	"go.uber.org/zap"
)

// Connection is the explicit two-variant result of bringing up the cache
// tier: either a usable Store or the reason it is unavailable. Callers make
// a conscious degraded-mode decision instead of transparently operating on
// an empty stand-in.
type Connection struct {
	store  Store
	reason error
}

// Connect brings up the cache tier. It never fails the process: when the
// store cannot be created the returned Connection reports Unavailable and
// the caller runs in always-compute mode.
func Connect(sweepInterval time.Duration, logger *zap.Logger) Connection {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := NewTTLStore(sweepInterval)
	logger.Info("cache store ready", zap.Duration("sweep_interval", sweepInterval))
	return Connection{store: store}
}

// Unavailable wraps a connection failure so callers can still carry a
// Connection value and branch on availability.
func Unavailable(reason error) Connection {
	return Connection{reason: reason}
}

// Available returns the store and true when the cache tier is usable.
func (c Connection) Available() (Store, bool) {
	return c.store, c.store != nil
}

// Reason reports why the cache tier is unavailable, or nil.
func (c Connection) Reason() error {
	return c.reason
}
