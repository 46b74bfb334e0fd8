package feature

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/meghsharma/song-recommender/internal/cache"
	"github.com/meghsharma/song-recommender/internal/dataset"
)

// Builder computes feature matrices with cache-before-compute semantics.
// Keys embed the snapshot fingerprint so a changed dataset never serves
// matrices derived from a previous one. Cache failures are absorbed: a
// broken cache degrades to recomputation, never to an error.
type Builder struct {
	store  cache.Store
	logger *slog.Logger
	ttl    time.Duration
}

// NewBuilder creates a Builder over the given cache store.
func NewBuilder(store cache.Store, logger *slog.Logger) *Builder {
	return &Builder{store: store, logger: logger, ttl: cache.DefaultTTL}
}

// NumericMatrix returns the snapshot's scaled numeric matrix, computing and
// caching it on a miss. Concurrent misses may both compute and write; the
// entries are identical so last-write-wins is harmless.
func (b *Builder) NumericMatrix(ctx context.Context, snap *dataset.Snapshot) (*NumericMatrix, error) {
	key := fmt.Sprintf("features:num:%s", snap.Fingerprint)

	var cached NumericMatrix
	if b.load(ctx, key, &cached) && cached.Len() == snap.Len() {
		return &cached, nil
	}

	matrix := BuildNumeric(snap)
	b.save(ctx, key, matrix)
	return matrix, nil
}

// TextMatrix returns the snapshot's TF-IDF matrix, computing and caching it
// on a miss.
func (b *Builder) TextMatrix(ctx context.Context, snap *dataset.Snapshot) (*TextMatrix, error) {
	key := fmt.Sprintf("features:text:%s", snap.Fingerprint)

	var cached TextMatrix
	if b.load(ctx, key, &cached) && cached.Len() == snap.Len() {
		return &cached, nil
	}

	matrix := BuildText(snap)
	b.save(ctx, key, matrix)
	return matrix, nil
}

// load fetches and decodes a cached matrix, reporting whether it was usable.
func (b *Builder) load(ctx context.Context, key string, dst any) bool {
	data, ok, err := b.store.Get(ctx, key)
	if err != nil {
		b.logger.Warn("feature cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		b.logger.Debug("feature cache miss", "key", key)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		b.logger.Warn("feature cache entry undecodable", "key", key, "error", err)
		return false
	}
	b.logger.Debug("feature cache hit", "key", key)
	return true
}

// save serializes and stores a computed matrix, logging failures instead of
// propagating them.
func (b *Builder) save(ctx context.Context, key string, src any) {
	data, err := json.Marshal(src)
	if err != nil {
		b.logger.Warn("feature cache encode failed", "key", key, "error", err)
		return
	}
	if err := b.store.Set(ctx, key, data, b.ttl); err != nil {
		b.logger.Warn("feature cache write failed", "key", key, "error", err)
	}
}
