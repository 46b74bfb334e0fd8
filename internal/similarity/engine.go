package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/meghsharma/song-recommender/internal/cache"
	"github.com/meghsharma/song-recommender/internal/feature"
)

// Engine caches combined similarity rows per (snapshot, query index, weight
// pair). Weight values are part of the key so distinct weighting schemes
// never collide.
type Engine struct {
	store  cache.Store
	logger *slog.Logger
	ttl    time.Duration
}

// NewEngine creates an Engine over the given cache store.
func NewEngine(store cache.Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger, ttl: cache.DefaultTTL}
}

// similarityPayload is the cached envelope for a similarity row.
type similarityPayload struct {
	Scores []float64 `json:"scores"`
}

// rowKey builds the cache key for one similarity row. Weights use shortest
// round-trip formatting so equal values always produce equal keys.
func rowKey(fingerprint string, q int, numWeight, textWeight float64) string {
	return fmt.Sprintf("sim:%s:%d:num%s:tfidf%s",
		fingerprint, q,
		strconv.FormatFloat(numWeight, 'g', -1, 64),
		strconv.FormatFloat(textWeight, 'g', -1, 64),
	)
}

// Row returns the combined similarity row for query index q, serving from
// cache when possible and computing + storing otherwise. Cache failures fall
// back to computation and are never surfaced.
func (e *Engine) Row(ctx context.Context, fingerprint string, q int, num *feature.NumericMatrix, text *feature.TextMatrix, numWeight, textWeight float64) []float64 {
	key := rowKey(fingerprint, q, numWeight, textWeight)

	data, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("similarity cache read failed", "key", key, "error", err)
	} else if ok {
		var payload similarityPayload
		if err := json.Unmarshal(data, &payload); err == nil && len(payload.Scores) == num.Len() {
			e.logger.Debug("similarity cache hit", "key", key)
			return payload.Scores
		}
		e.logger.Warn("similarity cache entry undecodable", "key", key)
	}

	scores := Combined(q, num, text, numWeight, textWeight)

	if data, err := json.Marshal(similarityPayload{Scores: scores}); err == nil {
		if err := e.store.Set(ctx, key, data, e.ttl); err != nil {
			e.logger.Warn("similarity cache write failed", "key", key, "error", err)
		}
	}
	return scores
}
