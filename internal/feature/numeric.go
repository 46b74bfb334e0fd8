// Package feature derives the numeric and text feature matrices used for
// similarity scoring. Matrix rows share the snapshot's track index.
package feature

import (
	"github.com/meghsharma/song-recommender/internal/dataset"
)

// NumericMatrix is the dense feature matrix: one row per track, one column
// per audio-feature field, each column independently min-max scaled to [0,1]
// against this snapshot. Scaling parameters are derived once and frozen with
// the matrix.
type NumericMatrix struct {
	Rows [][]float64 `json:"rows"`
}

// BuildNumeric computes the scaled matrix for a snapshot. Columns with a
// single observed value scale to 0 to avoid division by zero.
func BuildNumeric(snap *dataset.Snapshot) *NumericMatrix {
	n := snap.Len()
	rows := make([][]float64, n)
	for i := range rows {
		features := snap.Tracks[i].NumericFeatures()
		rows[i] = features[:]
	}

	for col := 0; col < dataset.NumericFieldCount; col++ {
		minV, maxV := rows[0][col], rows[0][col]
		for i := 1; i < n; i++ {
			v := rows[i][col]
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}

		span := maxV - minV
		for i := 0; i < n; i++ {
			if span == 0 {
				rows[i][col] = 0
			} else {
				rows[i][col] = (rows[i][col] - minV) / span
			}
		}
	}

	return &NumericMatrix{Rows: rows}
}

// Len returns the number of rows (tracks).
func (m *NumericMatrix) Len() int { return len(m.Rows) }
