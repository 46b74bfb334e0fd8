// Package dataset loads and cleans the track catalog that feeds the
// recommendation pipeline.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNoRecords is returned when a dataset source yields zero valid tracks.
var ErrNoRecords = errors.New("dataset contains no valid records")

// NumericFieldCount is the number of audio-feature columns used for the
// numeric feature space.
const NumericFieldCount = 10

// NumericFieldNames lists the numeric columns in matrix column order.
var NumericFieldNames = []string{
	"danceability", "energy", "loudness", "speechiness", "acousticness",
	"instrumentalness", "liveness", "valence", "tempo", "popularity",
}

// Track is one immutable catalog row. Artists keeps the raw
// semicolon-joined string from the source data.
type Track struct {
	ID       string
	Name     string
	Artists  string
	Album    string
	Genre    string
	Explicit bool

	Danceability     float64
	Energy           float64
	Loudness         float64
	Speechiness      float64
	Acousticness     float64
	Instrumentalness float64
	Liveness         float64
	Valence          float64
	Tempo            float64
	Popularity       int
}

// NumericFeatures returns the track's audio-feature values in
// NumericFieldNames order.
func (t *Track) NumericFeatures() [NumericFieldCount]float64 {
	return [NumericFieldCount]float64{
		t.Danceability, t.Energy, t.Loudness, t.Speechiness, t.Acousticness,
		t.Instrumentalness, t.Liveness, t.Valence, t.Tempo, float64(t.Popularity),
	}
}

// Snapshot is a cleaned, deduplicated catalog. The position of a track in
// Tracks is its Track Index: the coordinate system shared by the feature
// matrices and similarity vectors. Index assignment is frozen for the
// snapshot's lifetime.
type Snapshot struct {
	// ID identifies this load for logging.
	ID string

	// Tracks holds the records in dense 0..N-1 index order.
	Tracks []Track

	// Fingerprint is a content hash over the row count and ordered track
	// IDs. Cache keys for derived data embed it, so a swapped dataset
	// never serves matrices computed from a previous one.
	Fingerprint string
}

// NewSnapshot deduplicates tracks by ID (keeping the first occurrence) and
// assigns the dense track index. Returns ErrNoRecords when nothing survives.
func NewSnapshot(tracks []Track) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(tracks))
	clean := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		clean = append(clean, t)
	}

	if len(clean) == 0 {
		return nil, ErrNoRecords
	}

	return &Snapshot{
		ID:          uuid.NewString(),
		Tracks:      clean,
		Fingerprint: fingerprint(clean),
	}, nil
}

// Len returns the number of tracks in the snapshot.
func (s *Snapshot) Len() int { return len(s.Tracks) }

// fingerprint hashes the row count and the ordered identifier set.
func fingerprint(tracks []Track) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\n", len(tracks))
	for _, t := range tracks {
		h.Write([]byte(t.ID))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
