package feature

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/meghsharma/song-recommender/internal/cache"
	"github.com/meghsharma/song-recommender/internal/dataset"
)

// countingStore wraps a Store and records call counts.
type countingStore struct {
	cache.Store
	gets int
	sets int
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.Store.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	return c.Store.Set(ctx, key, value, ttl)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuilderCachesNumericMatrix(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: cache.NewMemoryStore()}
	builder := NewBuilder(store, discardLogger())

	snap := testSnapshot(t, []dataset.Track{
		{ID: "t1", Artists: "A", Genre: "pop", Danceability: 0.3},
		{ID: "t2", Artists: "B", Genre: "rock", Danceability: 0.9},
	})

	first, err := builder.NumericMatrix(ctx, snap)
	if err != nil {
		t.Fatalf("NumericMatrix() error = %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("sets = %d after first build, want 1", store.sets)
	}

	second, err := builder.NumericMatrix(ctx, snap)
	if err != nil {
		t.Fatalf("NumericMatrix() second call error = %v", err)
	}
	if store.sets != 1 {
		t.Errorf("sets = %d after cache hit, want 1 (no recompute)", store.sets)
	}

	if first.Len() != second.Len() {
		t.Fatalf("cached matrix has %d rows, computed has %d", second.Len(), first.Len())
	}
	for i := range first.Rows {
		for j := range first.Rows[i] {
			if first.Rows[i][j] != second.Rows[i][j] {
				t.Fatalf("cached matrix differs at [%d][%d]", i, j)
			}
		}
	}
}

func TestBuilderCachesTextMatrix(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: cache.NewMemoryStore()}
	builder := NewBuilder(store, discardLogger())

	snap := testSnapshot(t, []dataset.Track{
		{ID: "t1", Artists: "Artist One", Genre: "pop"},
		{ID: "t2", Artists: "Artist Two", Genre: "rock", Explicit: true},
	})

	first, err := builder.TextMatrix(ctx, snap)
	if err != nil {
		t.Fatalf("TextMatrix() error = %v", err)
	}

	second, err := builder.TextMatrix(ctx, snap)
	if err != nil {
		t.Fatalf("TextMatrix() second call error = %v", err)
	}
	if store.sets != 1 {
		t.Errorf("sets = %d after cache hit, want 1", store.sets)
	}

	if len(first.Terms) != len(second.Terms) {
		t.Fatalf("cached vocabulary size %d, computed %d", len(second.Terms), len(first.Terms))
	}
	for i := range first.Rows {
		if len(first.Rows[i]) != len(second.Rows[i]) {
			t.Fatalf("cached row %d differs in length", i)
		}
		for j := range first.Rows[i] {
			if first.Rows[i][j] != second.Rows[i][j] {
				t.Fatalf("cached row %d differs at entry %d", i, j)
			}
		}
	}
}

func TestBuilderKeysDifferBySnapshot(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	builder := NewBuilder(store, discardLogger())

	snapA := testSnapshot(t, []dataset.Track{
		{ID: "t1", Artists: "A", Genre: "pop", Danceability: 0.1},
		{ID: "t2", Artists: "B", Genre: "pop", Danceability: 0.9},
	})
	snapB := testSnapshot(t, []dataset.Track{
		{ID: "x1", Artists: "A", Genre: "pop", Danceability: 0.4},
		{ID: "x2", Artists: "B", Genre: "pop", Danceability: 0.5},
		{ID: "x3", Artists: "C", Genre: "pop", Danceability: 0.6},
	})

	if _, err := builder.NumericMatrix(ctx, snapA); err != nil {
		t.Fatalf("NumericMatrix(snapA) error = %v", err)
	}

	// A different dataset must not be served snapA's cached matrix.
	mB, err := builder.NumericMatrix(ctx, snapB)
	if err != nil {
		t.Fatalf("NumericMatrix(snapB) error = %v", err)
	}
	if mB.Len() != snapB.Len() {
		t.Errorf("matrix for snapB has %d rows, want %d", mB.Len(), snapB.Len())
	}
}
