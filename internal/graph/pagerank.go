package graph

import (
	"math"
	"sort"
)

const (
	// Damping is the probability of following an edge vs teleporting.
	Damping = 0.85

	// MaxIterations caps the power iteration.
	MaxIterations = 100

	// Tolerance is the total-change threshold for convergence.
	Tolerance = 1e-6
)

// Centrality runs PageRank over the import graph and returns scores
// normalized so the highest-ranked file gets 1.0. Every indexed path
// gets a score, including isolated files. An empty path set yields an
// empty map.
func Centrality(paths []string, edges map[string][]string) map[string]float64 {
	n := len(paths)
	if n == 0 {
		return map[string]float64{}
	}

	sorted := make([]string, n)
	copy(sorted, paths)
	sort.Strings(sorted)

	id := make(map[string]int, n)
	for i, p := range sorted {
		id[p] = i
	}

	// Flat adjacency keyed by stable file id.
	out := make([][]int, n)
	for from, tos := range edges {
		fi, ok := id[from]
		if !ok {
			continue
		}
		for _, to := range tos {
			if ti, ok := id[to]; ok {
				out[fi] = append(out[fi], ti)
			}
		}
	}

	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	base := (1.0 - Damping) / float64(n)
	for iter := 0; iter < MaxIterations; iter++ {
		var dangling float64
		for i := range next {
			next[i] = base
		}
		for i, targets := range out {
			if len(targets) == 0 {
				dangling += rank[i]
				continue
			}
			share := Damping * rank[i] / float64(len(targets))
			for _, t := range targets {
				next[t] += share
			}
		}
		// Mass from dangling nodes spreads uniformly.
		if dangling > 0 {
			spread := Damping * dangling / float64(n)
			for i := range next {
				next[i] += spread
			}
		}

		var delta float64
		for i := range rank {
			delta += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if delta < Tolerance {
			break
		}
	}

	var max float64
	for _, r := range rank {
		if r > max {
			max = r
		}
	}

	scores := make(map[string]float64, n)
	for i, p := range sorted {
		if max > 0 {
			scores[p] = rank[i] / max
		} else {
			scores[p] = 0
		}
	}
	return scores
}
