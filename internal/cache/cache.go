// Package cache provides a TTL key-value store with a Redis backend and a
// transparent in-process fallback.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTTL is the expiry applied by callers that don't pick their own.
const DefaultTTL = time.Hour

// Store is a backend-agnostic byte cache. Values are opaque serialized
// payloads; callers overwrite whole entries and never mutate them in place.
type Store interface {
	// Get returns the value for key, reporting whether it was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Backend identifies the active backend ("redis" or "memory").
	Backend() string
}

// Config holds cache backend settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Open selects the cache backend once at startup. It tries Redis first and
// silently downgrades to the in-process store when the connection fails, so a
// missing cache service never prevents startup.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) Store {
	store, err := NewRedisStore(ctx, cfg)
	if err != nil {
		logger.Info("redis unavailable, using in-process cache", "addr", cfg.Addr, "error", err)
		return NewMemoryStore()
	}
	logger.Info("cache backend ready", "backend", "redis", "addr", cfg.Addr)
	return store
}
