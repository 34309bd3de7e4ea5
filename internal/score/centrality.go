package score

import (
	"github.com/codemap-dev/codemap/internal/index"
)

// CentralityScores reads the cached import-graph scores from the
// index. Files without a cached score get zero. Returns nil when the
// index carries no graph data, which disables the signal.
func CentralityScores(state *index.State) []FileScore {
	if len(state.Centrality) == 0 {
		return nil
	}
	scores := make([]FileScore, 0, state.TotalDocs())
	for _, p := range state.Paths() {
		scores = append(scores, FileScore{Path: p, Score: state.Centrality[p]})
	}
	return scores
}
