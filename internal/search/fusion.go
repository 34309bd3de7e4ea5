// Package search fuses per-signal rankings into one ordering and
// selects files under a byte and token budget.
package search

import (
	"sort"

	"github.com/codemap-dev/codemap/internal/score"
)

// DefaultRRFConstant is the reciprocal rank fusion smoothing constant.
const DefaultRRFConstant = 60

// SignalRanking is one signal's ordered view of the corpus.
type SignalRanking struct {
	// Name identifies the signal ("bm25f", "heuristic", ...).
	Name string

	// Scores need not be sorted; ranking happens here.
	Scores []score.FileScore
}

// FusedFile is one file after rank fusion.
type FusedFile struct {
	Path string

	// Score is the summed reciprocal rank contribution.
	Score float64

	// Ranks records this file's 1-based rank per signal name, for
	// explain output. Absent signals are absent from the map.
	Ranks map[string]int
}

// FuseRRF merges the rankings with reciprocal rank fusion. Each file
// contributes 1/(k + rank) per signal that ranks it; a file absent
// from a signal contributes nothing for that signal. Ranks are 1-based
// in score-descending order with ties broken by path, and the fused
// order uses the same tie break. Nil rankings are skipped.
func FuseRRF(k int, rankings []SignalRanking) []FusedFile {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	fused := make(map[string]*FusedFile)
	for _, ranking := range rankings {
		if ranking.Scores == nil {
			continue
		}
		ordered := make([]score.FileScore, len(ranking.Scores))
		copy(ordered, ranking.Scores)
		score.SortDescending(ordered)

		for i, fs := range ordered {
			rank := i + 1
			f, ok := fused[fs.Path]
			if !ok {
				f = &FusedFile{Path: fs.Path, Ranks: make(map[string]int)}
				fused[fs.Path] = f
			}
			f.Score += 1.0 / float64(k+rank)
			f.Ranks[ranking.Name] = rank
		}
	}

	out := make([]FusedFile, 0, len(fused))
	for _, f := range fused {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	return out
}
