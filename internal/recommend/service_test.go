package recommend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/meghsharma/song-recommender/internal/cache"
	"github.com/meghsharma/song-recommender/internal/dataset"
	"github.com/meghsharma/song-recommender/internal/feature"
	"github.com/meghsharma/song-recommender/internal/poster"
	"github.com/meghsharma/song-recommender/internal/similarity"
)

func newTestService(t *testing.T, tracks []dataset.Track) *Service {
	t.Helper()
	snap, err := dataset.NewSnapshot(tracks)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cache.NewMemoryStore()
	return NewService(
		snap,
		feature.NewBuilder(store, logger),
		similarity.NewEngine(store, logger),
		poster.StaticResolver{},
		logger,
	)
}

// fiveTrackCatalog builds the weight-sensitivity fixture: the query track
// and a numeric twin with divergent text tags, a text twin with divergent
// audio features, and two fillers.
func fiveTrackCatalog() []dataset.Track {
	return []dataset.Track{
		{ID: "t0", Name: "Query Song", Artists: "Twin One", Album: "Album Q", Genre: "pop",
			Danceability: 0.5, Energy: 0.5},
		{ID: "t1", Name: "Numeric Twin", Artists: "Other Guy", Album: "Album N", Genre: "metal",
			Explicit: true, Danceability: 0.5, Energy: 0.5},
		{ID: "t2", Name: "Text Twin", Artists: "Twin One", Album: "Album T", Genre: "pop",
			Danceability: 0.9, Energy: 0.1},
		{ID: "t3", Name: "Filler One", Artists: "Someone Else", Album: "Album F", Genre: "jazz",
			Danceability: 0.1, Energy: 0.9},
		{ID: "t4", Name: "Filler Two", Artists: "Another Person", Album: "Album G", Genre: "blues",
			Danceability: 0.2, Energy: 0.8},
	}
}

func TestRecommendNumericOnlyRanksNumericTwinFirst(t *testing.T) {
	svc := newTestService(t, fiveTrackCatalog())

	result, err := svc.Recommend(context.Background(), Query{
		TrackName:     "Query Song",
		NumericWeight: 1,
		TextWeight:    0,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.Items) == 0 {
		t.Fatal("Recommend() returned no items")
	}
	if result.Items[0].TrackName != "Numeric Twin" {
		t.Errorf("top result = %q, want %q", result.Items[0].TrackName, "Numeric Twin")
	}
}

func TestRecommendTextOnlyRanksTextTwinFirst(t *testing.T) {
	svc := newTestService(t, fiveTrackCatalog())

	result, err := svc.Recommend(context.Background(), Query{
		TrackName:     "Query Song",
		NumericWeight: 0,
		TextWeight:    1,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.Items) == 0 {
		t.Fatal("Recommend() returned no items")
	}
	if result.Items[0].TrackName != "Text Twin" {
		t.Errorf("top result = %q, want %q (weighting should change the ranking)",
			result.Items[0].TrackName, "Text Twin")
	}
}

func TestRecommendNeverReturnsQueryName(t *testing.T) {
	tracks := fiveTrackCatalog()
	// A literal title duplicate of the query under another ID
	tracks = append(tracks, dataset.Track{
		ID: "t5", Name: "Query Song", Artists: "Cover Band", Album: "Covers", Genre: "pop",
		Danceability: 0.5, Energy: 0.5,
	})
	svc := newTestService(t, tracks)

	result, err := svc.Recommend(context.Background(), Query{
		TrackName: "Query Song", NumericWeight: 0.6, TextWeight: 0.4,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, item := range result.Items {
		if item.TrackName == "Query Song" {
			t.Errorf("result includes the query's display name (track %s)", item.TrackID)
		}
	}
}

func TestRecommendDeduplicatesByName(t *testing.T) {
	tracks := fiveTrackCatalog()
	// Same display name as the numeric twin, different ID
	tracks = append(tracks, dataset.Track{
		ID: "t5", Name: "Numeric Twin", Artists: "Tribute Act", Album: "Tributes", Genre: "metal",
		Explicit: true, Danceability: 0.5, Energy: 0.5,
	})
	svc := newTestService(t, tracks)

	result, err := svc.Recommend(context.Background(), Query{
		TrackName: "Query Song", NumericWeight: 1, TextWeight: 0,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	seen := make(map[string]int)
	for _, item := range result.Items {
		seen[item.TrackName]++
	}
	for name, count := range seen {
		if count > 1 {
			t.Errorf("display name %q appears %d times, want 1", name, count)
		}
	}
	// The first occurrence (lower index, equal score) wins
	for _, item := range result.Items {
		if item.TrackName == "Numeric Twin" && item.TrackID != "t1" {
			t.Errorf("kept duplicate = %s, want t1 (highest-ranked occurrence)", item.TrackID)
		}
	}
}

func TestRecommendCapsAndShortfall(t *testing.T) {
	svc := newTestService(t, fiveTrackCatalog())

	result, err := svc.Recommend(context.Background(), Query{
		TrackName: "Query Song", NumericWeight: 0.6, TextWeight: 0.4, MaxResults: 2,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Errorf("len(items) = %d with MaxResults=2, want 2", len(result.Items))
	}

	// Only 4 distinct non-self candidates exist; a larger cap returns them
	// all without padding or erroring.
	result, err = svc.Recommend(context.Background(), Query{
		TrackName: "Query Song", NumericWeight: 0.6, TextWeight: 0.4, MaxResults: 20,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.Items) != 4 {
		t.Errorf("len(items) = %d, want all 4 distinct candidates", len(result.Items))
	}
}

func TestRecommendTrackNotFound(t *testing.T) {
	svc := newTestService(t, fiveTrackCatalog())

	_, err := svc.Recommend(context.Background(), Query{
		TrackName: "No Such Song", NumericWeight: 0.6, TextWeight: 0.4,
	})
	if !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Recommend() error = %v, want ErrTrackNotFound", err)
	}

	// A non-matching artist filter is also a miss
	_, err = svc.Recommend(context.Background(), Query{
		TrackName: "Query Song", ArtistFilter: "Nobody", NumericWeight: 0.6, TextWeight: 0.4,
	})
	if !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Recommend() with bad artist filter error = %v, want ErrTrackNotFound", err)
	}
}

func TestRecommendArtistFilter(t *testing.T) {
	tracks := []dataset.Track{
		{ID: "a1", Name: "Shared Name", Artists: "Alpha Artist", Album: "A", Genre: "pop",
			Danceability: 0.2, Energy: 0.2},
		{ID: "b1", Name: "Shared Name", Artists: "Beta Artist", Album: "B", Genre: "rock",
			Danceability: 0.8, Energy: 0.8},
		{ID: "c1", Name: "Other Song", Artists: "Gamma", Album: "C", Genre: "jazz",
			Danceability: 0.5, Energy: 0.5},
	}
	svc := newTestService(t, tracks)

	// Without a filter, the lowest track index wins
	result, err := svc.Recommend(context.Background(), Query{
		TrackName: "Shared Name", NumericWeight: 1, TextWeight: 0,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if result.QueryTrack.ID != "a1" {
		t.Errorf("QueryTrack.ID = %s without filter, want a1", result.QueryTrack.ID)
	}

	// The filter is a case-insensitive substring match
	result, err = svc.Recommend(context.Background(), Query{
		TrackName: "Shared Name", ArtistFilter: "beta", NumericWeight: 1, TextWeight: 0,
	})
	if err != nil {
		t.Fatalf("Recommend() with filter error = %v", err)
	}
	if result.QueryTrack.ID != "b1" {
		t.Errorf("QueryTrack.ID = %s with filter %q, want b1", result.QueryTrack.ID, "beta")
	}
}

func TestRecommendAttachesPosterURLs(t *testing.T) {
	svc := newTestService(t, fiveTrackCatalog())

	result, err := svc.Recommend(context.Background(), Query{
		TrackName: "Query Song", NumericWeight: 0.6, TextWeight: 0.4,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, item := range result.Items {
		if item.PosterURL == "" {
			t.Errorf("item %s has empty poster URL", item.TrackID)
		}
	}
}
