package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// requiredColumns are the header names a dataset file must carry.
var requiredColumns = []string{
	"track_id", "track_name", "artists", "album_name", "track_genre",
	"explicit", "popularity",
	"danceability", "energy", "loudness", "speechiness", "acousticness",
	"instrumentalness", "liveness", "valence", "tempo",
}

// LoadCSV reads a tabular dataset file, drops rows with missing or malformed
// required fields, collapses duplicate track IDs to the first occurrence and
// returns the cleaned snapshot.
func LoadCSV(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses dataset rows from r. Exposed separately so tests and other
// sources can feed readers directly.
func ReadCSV(r io.Reader) (*Snapshot, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("dataset missing required column %q", name)
		}
	}

	var tracks []Track
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged or unquotable rows are dropped like null rows.
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}

		track, ok := parseRow(row, cols)
		if !ok {
			continue
		}
		tracks = append(tracks, track)
	}

	snapshot, err := NewSnapshot(tracks)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	return snapshot, nil
}

// parseRow converts one CSV record, reporting false when any required field
// is blank or unparseable.
func parseRow(row []string, cols map[string]int) (Track, bool) {
	field := func(name string) (string, bool) {
		idx := cols[name]
		if idx >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[idx])
		return v, v != ""
	}

	var t Track
	var ok bool
	if t.ID, ok = field("track_id"); !ok {
		return Track{}, false
	}
	if t.Name, ok = field("track_name"); !ok {
		return Track{}, false
	}
	if t.Artists, ok = field("artists"); !ok {
		return Track{}, false
	}
	if t.Album, ok = field("album_name"); !ok {
		return Track{}, false
	}
	if t.Genre, ok = field("track_genre"); !ok {
		return Track{}, false
	}

	rawExplicit, ok := field("explicit")
	if !ok {
		return Track{}, false
	}
	explicit, err := strconv.ParseBool(rawExplicit)
	if err != nil {
		return Track{}, false
	}
	t.Explicit = explicit

	rawPopularity, ok := field("popularity")
	if !ok {
		return Track{}, false
	}
	popularity, err := strconv.Atoi(rawPopularity)
	if err != nil {
		return Track{}, false
	}
	t.Popularity = popularity

	numeric := map[string]*float64{
		"danceability":     &t.Danceability,
		"energy":           &t.Energy,
		"loudness":         &t.Loudness,
		"speechiness":      &t.Speechiness,
		"acousticness":     &t.Acousticness,
		"instrumentalness": &t.Instrumentalness,
		"liveness":         &t.Liveness,
		"valence":          &t.Valence,
		"tempo":            &t.Tempo,
	}
	for name, dst := range numeric {
		raw, ok := field(name)
		if !ok {
			return Track{}, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Track{}, false
		}
		*dst = v
	}

	return t, true
}
