package score

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/codemap-dev/codemap/internal/index"
)

// RecencyWindow is the git log lookback passed to --since.
const RecencyWindow = "90.days"

// CommitCounter returns per-file commit counts within the recency
// window. Implementations return (nil, nil) when no history exists.
type CommitCounter interface {
	CommitCounts(ctx context.Context) (map[string]int, error)
}

// GitCounter counts commits with the git CLI.
type GitCounter struct {
	// Root is the repository root.
	Root string
}

// CommitCounts runs git log over the window and counts how many
// commits touched each path. A missing git binary or a directory with
// no history yields (nil, nil), which disables the recency signal.
func (g *GitCounter) CommitCounts(ctx context.Context) (map[string]int, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", g.Root, "log", "--format=", "--name-only", "--since="+RecencyWindow)
	out, err := cmd.Output()
	if err != nil {
		return nil, nil
	}

	counts := make(map[string]int)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		counts[filepath.ToSlash(line)]++
	}
	if len(counts) == 0 {
		return nil, nil
	}
	return counts, nil
}

// Recency converts commit counts into [0, 1] scores with log scaling,
// so one very hot file does not flatten everything else. Files never
// touched in the window score zero. A nil counts map means the signal
// is unavailable and the result is nil.
func Recency(counts map[string]int, state *index.State) []FileScore {
	if counts == nil {
		return nil
	}

	max := 0
	for p, c := range counts {
		if _, ok := state.Files[p]; ok && c > max {
			max = c
		}
	}
	if max == 0 {
		return nil
	}

	denom := math.Log(1 + float64(max))
	scores := make([]FileScore, 0, state.TotalDocs())
	for _, p := range state.Paths() {
		var s float64
		if c := counts[p]; c > 0 {
			s = math.Log(1+float64(c)) / denom
		}
		scores = append(scores, FileScore{Path: p, Score: s})
	}
	return scores
}
