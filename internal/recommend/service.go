// Package recommend turns similarity rows into ranked, deduplicated
// recommendation lists.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/meghsharma/song-recommender/internal/dataset"
	"github.com/meghsharma/song-recommender/internal/feature"
	"github.com/meghsharma/song-recommender/internal/poster"
	"github.com/meghsharma/song-recommender/internal/similarity"
)

// ErrTrackNotFound is returned when no catalog record matches the query
// track name (and optional artist filter).
var ErrTrackNotFound = errors.New("track not found")

const (
	// DefaultMaxResults caps a recommendation list unless the caller asks
	// for fewer.
	DefaultMaxResults = 6

	// overFetch is the fixed candidate margin taken before self-removal
	// and name dedup.
	overFetch = 10
)

// Query describes one recommendation request.
type Query struct {
	TrackName string

	// ArtistFilter optionally narrows the lookup with a case-insensitive
	// substring match on the raw artists field.
	ArtistFilter string

	NumericWeight float64
	TextWeight    float64

	// MaxResults defaults to DefaultMaxResults when <= 0.
	MaxResults int
}

// Recommendation is one selected track with its artwork attached.
type Recommendation struct {
	TrackID   string  `json:"track_id"`
	TrackName string  `json:"track_name"`
	Artists   string  `json:"artists"`
	Album     string  `json:"album_name"`
	PosterURL string  `json:"poster_url"`
	Score     float64 `json:"score"`
}

// Result carries the resolved query track alongside the selections, so an
// ambiguous name+artist lookup is visible to the caller rather than silent.
type Result struct {
	QueryTrack dataset.Track    `json:"query_track"`
	Items      []Recommendation `json:"items"`
}

// Service wires the feature builder, similarity engine and poster resolver
// over one dataset snapshot.
type Service struct {
	snap    *dataset.Snapshot
	builder *feature.Builder
	engine  *similarity.Engine
	posters poster.Resolver
	logger  *slog.Logger
}

// NewService creates a recommendation service for a loaded snapshot.
func NewService(snap *dataset.Snapshot, builder *feature.Builder, engine *similarity.Engine, posters poster.Resolver, logger *slog.Logger) *Service {
	return &Service{snap: snap, builder: builder, engine: engine, posters: posters, logger: logger}
}

// Snapshot exposes the underlying snapshot for read-only consumers.
func (s *Service) Snapshot() *dataset.Snapshot { return s.snap }

// Recommend resolves the query track, scores it against the catalog and
// returns at most MaxResults distinct recommendations. A shortfall of
// distinct candidates returns a shorter list, never an error.
func (s *Service) Recommend(ctx context.Context, q Query) (*Result, error) {
	queryIdx, err := s.lookup(q.TrackName, q.ArtistFilter)
	if err != nil {
		return nil, err
	}

	num, err := s.builder.NumericMatrix(ctx, s.snap)
	if err != nil {
		return nil, fmt.Errorf("building numeric matrix: %w", err)
	}
	text, err := s.builder.TextMatrix(ctx, s.snap)
	if err != nil {
		return nil, fmt.Errorf("building text matrix: %w", err)
	}

	scores := s.engine.Row(ctx, s.snap.Fingerprint, queryIdx, num, text, q.NumericWeight, q.TextWeight)

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	queryTrack := s.snap.Tracks[queryIdx]
	selected := selectCandidates(s.snap.Tracks, scores, queryTrack.Name, maxResults)

	items := make([]Recommendation, 0, len(selected))
	for _, c := range selected {
		track := &s.snap.Tracks[c.index]
		items = append(items, Recommendation{
			TrackID:   track.ID,
			TrackName: track.Name,
			Artists:   track.Artists,
			Album:     track.Album,
			PosterURL: s.posters.PosterURL(ctx, track.ID),
			Score:     c.score,
		})
	}

	s.logger.Debug("recommendation served",
		"query", queryTrack.Name, "query_index", queryIdx, "results", len(items))

	return &Result{QueryTrack: queryTrack, Items: items}, nil
}

// lookup finds the query track index: exact name match, optional artist
// substring filter. Multiple matches resolve to the lowest track index.
func (s *Service) lookup(trackName, artistFilter string) (int, error) {
	filter := strings.ToLower(artistFilter)
	for i := range s.snap.Tracks {
		t := &s.snap.Tracks[i]
		if t.Name != trackName {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(t.Artists), filter) {
			continue
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrTrackNotFound, trackName)
}

// candidate pairs a track index with its combined score.
type candidate struct {
	index int
	score float64
}

// selectCandidates applies the ranking policy: sort by score descending with
// ties broken by ascending track index, over-fetch a fixed margin, drop the
// query's own display name, dedupe remaining names keeping the
// highest-scoring occurrence, and truncate.
func selectCandidates(tracks []dataset.Track, scores []float64, queryName string, maxResults int) []candidate {
	ranked := make([]candidate, len(scores))
	for i, score := range scores {
		ranked[i] = candidate{index: i, score: score}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if len(ranked) > overFetch {
		ranked = ranked[:overFetch]
	}

	seen := make(map[string]struct{}, len(ranked))
	selected := make([]candidate, 0, maxResults)
	for _, c := range ranked {
		name := tracks[c.index].Name
		if name == queryName {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, c)
		if len(selected) == maxResults {
			break
		}
	}
	return selected
}
