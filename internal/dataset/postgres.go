package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// trackQuery reads the catalog from a tracks table. Rows with nulls in any
// required column are excluded at the source, mirroring the CSV cleaning
// rules, and the order is fixed so repeated loads produce the same snapshot
// fingerprint.
const trackQuery = `
	SELECT track_id, track_name, artists, album_name, track_genre, explicit,
	       danceability, energy, loudness, speechiness, acousticness,
	       instrumentalness, liveness, valence, tempo, popularity
	FROM tracks
	WHERE track_id IS NOT NULL
	  AND track_name IS NOT NULL
	  AND artists IS NOT NULL
	  AND album_name IS NOT NULL
	  AND track_genre IS NOT NULL
	  AND explicit IS NOT NULL
	  AND danceability IS NOT NULL
	  AND energy IS NOT NULL
	  AND loudness IS NOT NULL
	  AND speechiness IS NOT NULL
	  AND acousticness IS NOT NULL
	  AND instrumentalness IS NOT NULL
	  AND liveness IS NOT NULL
	  AND valence IS NOT NULL
	  AND tempo IS NOT NULL
	  AND popularity IS NOT NULL
	ORDER BY track_id
`

// LoadPostgres reads the catalog from a PostgreSQL tracks table and runs it
// through the same dedup and indexing as the CSV path.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool) (*Snapshot, error) {
	rows, err := pool.Query(ctx, trackQuery)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		err := rows.Scan(
			&t.ID, &t.Name, &t.Artists, &t.Album, &t.Genre, &t.Explicit,
			&t.Danceability, &t.Energy, &t.Loudness, &t.Speechiness,
			&t.Acousticness, &t.Instrumentalness, &t.Liveness, &t.Valence,
			&t.Tempo, &t.Popularity,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading track rows: %w", err)
	}

	snapshot, err := NewSnapshot(tracks)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	return snapshot, nil
}
