// Package poster resolves album artwork URLs for recommended tracks. The
// rest of the pipeline only requires that a resolver always answers with a
// usable URL: lookup failures produce placeholders, never errors.
package poster

import (
	"context"
	"log/slog"
	"time"

	"github.com/meghsharma/song-recommender/internal/cache"
)

// Placeholder URLs returned when artwork cannot be resolved.
const (
	PlaceholderNoImage = "https://via.placeholder.com/300?text=No+Image"
	PlaceholderError   = "https://via.placeholder.com/300?text=Error"
)

// Resolver maps a track identifier to an artwork URL. Implementations must
// not block indefinitely and must not return errors; a placeholder URL
// stands in for any failure.
type Resolver interface {
	PosterURL(ctx context.Context, trackID string) string
}

// StaticResolver always answers with the no-image placeholder. It backs the
// pipeline when no artwork credentials are configured.
type StaticResolver struct{}

// PosterURL implements Resolver.
func (StaticResolver) PosterURL(context.Context, string) string { return PlaceholderNoImage }

// CachedResolver wraps a Resolver with the cache store. Resolved URLs,
// including genuine no-artwork answers, are cached; hard-failure
// placeholders are not, so transient outages retry on the next request.
type CachedResolver struct {
	inner  Resolver
	store  cache.Store
	logger *slog.Logger
	ttl    time.Duration
}

// NewCachedResolver wraps inner with caching.
func NewCachedResolver(inner Resolver, store cache.Store, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{inner: inner, store: store, logger: logger, ttl: cache.DefaultTTL}
}

// PosterURL implements Resolver.
func (r *CachedResolver) PosterURL(ctx context.Context, trackID string) string {
	key := "poster:" + trackID

	data, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("poster cache read failed", "key", key, "error", err)
	} else if ok {
		return string(data)
	}

	url := r.inner.PosterURL(ctx, trackID)
	if url != PlaceholderError {
		if err := r.store.Set(ctx, key, []byte(url), r.ttl); err != nil {
			r.logger.Warn("poster cache write failed", "key", key, "error", err)
		}
	}
	return url
}
