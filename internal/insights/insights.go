// Package insights computes catalog statistics and mood clusters for the
// stats dashboard.
package insights

import (
	"math"
	"sort"

	"github.com/meghsharma/song-recommender/internal/dataset"
)

// Summary holds the catalog-wide headline numbers.
type Summary struct {
	TotalTracks   int     `json:"total_tracks"`
	UniqueArtists int     `json:"unique_artists"`
	AvgPopularity float64 `json:"avg_popularity"`
}

// Summarize computes the catalog summary. Artists are counted by their raw
// joined string, matching how the source data groups collaborations.
func Summarize(snap *dataset.Snapshot) Summary {
	artists := make(map[string]struct{}, len(snap.Tracks))
	var popularity int
	for i := range snap.Tracks {
		artists[snap.Tracks[i].Artists] = struct{}{}
		popularity += snap.Tracks[i].Popularity
	}

	s := Summary{
		TotalTracks:   snap.Len(),
		UniqueArtists: len(artists),
	}
	if snap.Len() > 0 {
		s.AvgPopularity = float64(popularity) / float64(snap.Len())
	}
	return s
}

// ArtistCount is one entry of the top-artists-by-song-count ranking.
type ArtistCount struct {
	Artists string `json:"artists"`
	Count   int    `json:"count"`
}

// TopArtistsByCount returns the n artists with the most tracks, ties broken
// alphabetically.
func TopArtistsByCount(snap *dataset.Snapshot, n int) []ArtistCount {
	counts := make(map[string]int)
	for i := range snap.Tracks {
		counts[snap.Tracks[i].Artists]++
	}

	ranked := make([]ArtistCount, 0, len(counts))
	for artists, count := range counts {
		ranked = append(ranked, ArtistCount{Artists: artists, Count: count})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Count != ranked[b].Count {
			return ranked[a].Count > ranked[b].Count
		}
		return ranked[a].Artists < ranked[b].Artists
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ArtistPopularity is one entry of the top-artists-by-popularity ranking.
type ArtistPopularity struct {
	Artists       string  `json:"artists"`
	AvgPopularity float64 `json:"avg_popularity"`
	Tracks        int     `json:"tracks"`
}

// TopArtistsByPopularity ranks artists by mean track popularity, ties broken
// alphabetically.
func TopArtistsByPopularity(snap *dataset.Snapshot, n int) []ArtistPopularity {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for i := range snap.Tracks {
		t := &snap.Tracks[i]
		sums[t.Artists] += t.Popularity
		counts[t.Artists]++
	}

	ranked := make([]ArtistPopularity, 0, len(sums))
	for artists, sum := range sums {
		ranked = append(ranked, ArtistPopularity{
			Artists:       artists,
			AvgPopularity: float64(sum) / float64(counts[artists]),
			Tracks:        counts[artists],
		})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].AvgPopularity != ranked[b].AvgPopularity {
			return ranked[a].AvgPopularity > ranked[b].AvgPopularity
		}
		return ranked[a].Artists < ranked[b].Artists
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// HistogramBin is one bucket of the popularity distribution.
type HistogramBin struct {
	Lo    int `json:"lo"`
	Hi    int `json:"hi"` // exclusive, except the last bin which is inclusive
	Count int `json:"count"`
}

// PopularityHistogram buckets track popularity (0-100) into equal-width
// bins.
func PopularityHistogram(snap *dataset.Snapshot, bins int) []HistogramBin {
	if bins <= 0 {
		bins = 10
	}

	const scale = 100
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lo = i * scale / bins
		out[i].Hi = (i + 1) * scale / bins
	}

	for i := range snap.Tracks {
		p := snap.Tracks[i].Popularity
		if p < 0 {
			p = 0
		}
		idx := p * bins / scale
		if idx >= bins {
			idx = bins - 1 // popularity 100 lands in the last bin
		}
		out[idx].Count++
	}
	return out
}

// correlationFeatures are the audio features the correlation matrix covers.
var correlationFeatures = []string{
	"danceability", "energy", "speechiness", "acousticness",
	"instrumentalness", "liveness", "valence", "tempo",
}

// CorrelationMatrix is a symmetric Pearson correlation matrix over
// correlationFeatures.
type CorrelationMatrix struct {
	Features []string    `json:"features"`
	Matrix   [][]float64 `json:"matrix"`
}

// FeatureCorrelations computes pairwise Pearson correlations between the
// audio features. A feature with zero variance correlates 0 with everything
// and 1 with itself.
func FeatureCorrelations(snap *dataset.Snapshot) CorrelationMatrix {
	n := snap.Len()
	columns := make([][]float64, len(correlationFeatures))
	for j := range columns {
		columns[j] = make([]float64, n)
	}
	for i := range snap.Tracks {
		t := &snap.Tracks[i]
		values := []float64{
			t.Danceability, t.Energy, t.Speechiness, t.Acousticness,
			t.Instrumentalness, t.Liveness, t.Valence, t.Tempo,
		}
		for j, v := range values {
			columns[j][i] = v
		}
	}

	k := len(correlationFeatures)
	matrix := make([][]float64, k)
	for a := range matrix {
		matrix[a] = make([]float64, k)
		for b := range matrix[a] {
			if a == b {
				matrix[a][b] = 1
				continue
			}
			matrix[a][b] = pearson(columns[a], columns[b])
		}
	}

	return CorrelationMatrix{Features: correlationFeatures, Matrix: matrix}
}

// pearson computes the correlation coefficient of two equal-length samples.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
