// Package similarity scores a query track against every track in a snapshot
// by combining numeric-space and text-space cosine similarity.
package similarity

import (
	"math"

	"github.com/meghsharma/song-recommender/internal/feature"
)

// CosineRow returns the cosine similarity between row q of the dense matrix
// and every row, including q itself (which scores 1). A zero vector scores 0
// against everything.
func CosineRow(m *feature.NumericMatrix, q int) []float64 {
	query := m.Rows[q]
	queryNorm := norm(query)

	scores := make([]float64, len(m.Rows))
	if queryNorm == 0 {
		return scores
	}

	for i, row := range m.Rows {
		rowNorm := norm(row)
		if rowNorm == 0 {
			continue
		}
		var dot float64
		for j := range row {
			dot += query[j] * row[j]
		}
		scores[i] = dot / (queryNorm * rowNorm)
	}
	return scores
}

// CosineRowSparse is CosineRow for the sparse text matrix. Rows are already
// L2-normalized by the TF-IDF fit, so the score reduces to a sparse dot
// product; empty rows score 0.
func CosineRowSparse(m *feature.TextMatrix, q int) []float64 {
	query := m.Rows[q]

	scores := make([]float64, len(m.Rows))
	if len(query) == 0 {
		return scores
	}

	for i, row := range m.Rows {
		scores[i] = sparseDot(query, row)
	}
	return scores
}

// sparseDot multiplies two column-sorted sparse rows.
func sparseDot(a, b []feature.SparseEntry) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Col < b[j].Col:
			i++
		case a[i].Col > b[j].Col:
			j++
		default:
			dot += a[i].Val * b[j].Val
			i++
			j++
		}
	}
	return dot
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Combined computes the weighted element-wise combination of numeric and
// text cosine rows for query index q. Weights are caller-supplied and need
// not sum to 1; a zero weight removes that modality entirely.
func Combined(q int, num *feature.NumericMatrix, text *feature.TextMatrix, numWeight, textWeight float64) []float64 {
	numSim := CosineRow(num, q)
	textSim := CosineRowSparse(text, q)

	scores := make([]float64, len(numSim))
	for i := range scores {
		scores[i] = numWeight*numSim[i] + textWeight*textSim[i]
	}
	return scores
}
