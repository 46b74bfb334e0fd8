package feature

import (
	"math"
	"sort"
	"strings"

	"github.com/meghsharma/song-recommender/internal/dataset"
)

// MaxVocabulary bounds the TF-IDF vocabulary size. When the corpus carries
// more distinct terms, the most frequent ones are kept.
const MaxVocabulary = 2000

// SparseEntry is one non-zero cell of a sparse row, identified by its
// vocabulary column.
type SparseEntry struct {
	Col int     `json:"c"`
	Val float64 `json:"v"`
}

// TextMatrix is the sparse TF-IDF matrix over per-track descriptor strings.
// Each row is sorted by column and L2-normalized. The vocabulary and term
// weighting are fit once per snapshot and frozen with the matrix.
type TextMatrix struct {
	Rows  [][]SparseEntry `json:"rows"`
	Terms []string        `json:"terms"`
}

// Len returns the number of rows (tracks).
func (m *TextMatrix) Len() int { return len(m.Rows) }

// Descriptor synthesizes the text-feature source string for a track: each
// artist (split on ";", internal spaces removed), the genre (spaces removed)
// and an explicit/clean tag, space-joined and lowercased.
func Descriptor(t *dataset.Track) string {
	parts := strings.Split(strings.TrimSpace(t.Artists), ";")
	tokens := make([]string, 0, len(parts)+2)
	for _, artist := range parts {
		artist = strings.ReplaceAll(artist, " ", "")
		if artist != "" {
			tokens = append(tokens, artist)
		}
	}
	tokens = append(tokens, strings.ReplaceAll(t.Genre, " ", ""))
	if t.Explicit {
		tokens = append(tokens, "explicit")
	} else {
		tokens = append(tokens, "clean")
	}
	return strings.ToLower(strings.Join(tokens, " "))
}

// tokenize splits a descriptor into vocabulary candidates, dropping stop
// words and single-character tokens.
func tokenize(descriptor string) []string {
	fields := strings.Fields(descriptor)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || isStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// BuildText fits a TF-IDF transform over the snapshot's descriptors and
// returns one sparse row per track. Weighting uses smoothed inverse document
// frequency, ln((1+n)/(1+df))+1, with rows normalized to unit length.
func BuildText(snap *dataset.Snapshot) *TextMatrix {
	n := snap.Len()
	docs := make([][]string, n)
	for i := range snap.Tracks {
		docs[i] = tokenize(Descriptor(&snap.Tracks[i]))
	}

	terms := fitVocabulary(docs)
	colByTerm := make(map[string]int, len(terms))
	for i, term := range terms {
		colByTerm[term] = i
	}

	// Document frequency per vocabulary term
	df := make([]int, len(terms))
	for _, doc := range docs {
		seen := make(map[int]struct{}, len(doc))
		for _, tok := range doc {
			if col, ok := colByTerm[tok]; ok {
				seen[col] = struct{}{}
			}
		}
		for col := range seen {
			df[col]++
		}
	}

	idf := make([]float64, len(terms))
	for col := range idf {
		idf[col] = math.Log(float64(1+n)/float64(1+df[col])) + 1
	}

	rows := make([][]SparseEntry, n)
	for i, doc := range docs {
		counts := make(map[int]float64, len(doc))
		for _, tok := range doc {
			if col, ok := colByTerm[tok]; ok {
				counts[col]++
			}
		}

		row := make([]SparseEntry, 0, len(counts))
		var norm float64
		for col, count := range counts {
			v := count * idf[col]
			row = append(row, SparseEntry{Col: col, Val: v})
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j].Val /= norm
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Col < row[b].Col })
		rows[i] = row
	}

	return &TextMatrix{Rows: rows, Terms: terms}
}

// fitVocabulary selects up to MaxVocabulary terms by total corpus frequency,
// breaking ties alphabetically so fits are deterministic.
func fitVocabulary(docs [][]string) []string {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			counts[tok]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(a, b int) bool {
		if counts[terms[a]] != counts[terms[b]] {
			return counts[terms[a]] > counts[terms[b]]
		}
		return terms[a] < terms[b]
	})

	if len(terms) > MaxVocabulary {
		terms = terms[:MaxVocabulary]
	}

	// Column order is alphabetical within the selected vocabulary.
	sort.Strings(terms)
	return terms
}
