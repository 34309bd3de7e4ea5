// Package score implements the per-file ranking signals: BM25F text
// relevance, structural heuristics, import-graph centrality (computed
// in the graph package and read from the index), and git recency.
// Every signal returns a deterministic ranking over the indexed files.
package score

import (
	"math"
	"sort"

	"github.com/codemap-dev/codemap/internal/index"
	"github.com/codemap-dev/codemap/internal/token"
)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// FileScore is one file's score under a single signal.
type FileScore struct {
	Path  string
	Score float64
}

// BM25F scores every indexed file against the query using
// field-weighted BM25. Filename hits weigh five times body hits,
// symbol hits three times. An empty query or empty index scores
// everything zero.
func BM25F(query string, state *index.State) []FileScore {
	terms := token.Tokenize(query)
	n := state.TotalDocs()

	scores := make([]FileScore, 0, n)
	if len(terms) == 0 || n == 0 {
		for _, path := range state.Paths() {
			scores = append(scores, FileScore{Path: path})
		}
		return scores
	}

	avgdl := state.AvgDocLength()
	for _, path := range state.Paths() {
		e := state.Files[path]

		lengthNorm := 1.0
		if avgdl > 0 {
			lengthNorm = 1 - b + b*(e.DocLength/avgdl)
		}

		var score float64
		for _, term := range terms {
			freq, ok := e.Terms[term]
			if !ok {
				continue
			}
			df := state.DocFreq[term]
			idf := math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
			tf := freq.Weighted()
			score += idf * tf / (tf + k1*lengthNorm)
		}
		scores = append(scores, FileScore{Path: path, Score: score})
	}
	return scores
}

// SortDescending orders scores by value descending, path ascending on
// ties.
func SortDescending(scores []FileScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Path < scores[j].Path
	})
}
