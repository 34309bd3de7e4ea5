package score

import (
	"strings"

	"github.com/codemap-dev/codemap/internal/index"
	"github.com/codemap-dev/codemap/internal/scanner"
	"github.com/codemap-dev/codemap/internal/token"
)

// Heuristic component weights. They sum to 1.0, so the combined score
// already lives in [0, 1].
const (
	keywordWeight   = 0.40
	roleWeight      = 0.25
	depthWeight     = 0.15
	wellknownWeight = 0.10
	sizeWeight      = 0.10
)

// roleScores rank file roles by how likely they are to matter.
var roleScores = map[scanner.Role]float64{
	scanner.RoleImplementation: 1.0,
	scanner.RoleBuild:          0.6,
	scanner.RoleTest:           0.5,
	scanner.RoleConfig:         0.3,
	scanner.RoleDocs:           0.2,
	scanner.RoleOther:          0.1,
	scanner.RoleGenerated:      0.05,
}

// wellknownDirs score paths by their top-level directory.
var wellknownDirs = map[string]float64{
	"src": 1.0, "lib": 1.0, "cmd": 1.0, "pkg": 1.0,
	"app": 1.0, "internal": 1.0, "crates": 1.0,
	"bin": 0.8, "server": 0.8, "api": 0.8, "core": 0.8, "modules": 0.8,
	"test": 0.5, "tests": 0.5, "spec": 0.5, "__tests__": 0.5,
	"docs": 0.3, "doc": 0.3,
	"vendor": 0.0, "node_modules": 0.0,
}

// Heuristic scores every file on structural signals plus query keyword
// overlap with the path. Scores are clamped to [0, 1].
func Heuristic(query string, state *index.State) []FileScore {
	queryTerms := token.Tokenize(query)

	scores := make([]FileScore, 0, state.TotalDocs())
	for _, p := range state.Paths() {
		e := state.Files[p]
		s := keywordWeight*keywordScore(queryTerms, p) +
			roleWeight*roleScores[e.Info.Role] +
			depthWeight*depthScore(p) +
			wellknownWeight*wellknownScore(p) +
			sizeWeight*sizeScore(e.Info.Size)
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		scores = append(scores, FileScore{Path: p, Score: s})
	}
	return scores
}

// keywordScore is the fraction of query terms appearing in the path.
func keywordScore(queryTerms []string, p string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	pathTerms := make(map[string]bool)
	for _, t := range token.Tokenize(p) {
		pathTerms[t] = true
	}
	hits := 0
	for _, t := range queryTerms {
		if pathTerms[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// depthScore favors shallow paths.
func depthScore(p string) float64 {
	depth := strings.Count(p, "/") + 1
	switch depth {
	case 1:
		return 1.0
	case 2:
		return 0.9
	case 3:
		return 0.7
	case 4:
		return 0.5
	case 5:
		return 0.3
	}
	return 0.1
}

func wellknownScore(p string) float64 {
	dir := p
	if i := strings.IndexByte(p, '/'); i >= 0 {
		dir = p[:i]
	} else {
		// Top-level files get the neutral score.
		return 0.4
	}
	if s, ok := wellknownDirs[strings.ToLower(dir)]; ok {
		return s
	}
	return 0.4
}

// sizeScore prefers medium-sized files. Tiny files carry little
// signal, huge ones are usually bundles or data.
func sizeScore(size int64) float64 {
	switch {
	case size <= 1000:
		return 0.9
	case size <= 5000:
		return 1.0
	case size <= 20000:
		return 0.8
	case size <= 100000:
		return 0.5
	case size <= 500000:
		return 0.2
	}
	return 0.05
}
