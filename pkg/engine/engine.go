// Package engine ties the pipeline together: scan, index, graph,
// score, fuse, select. It is the API the CLI and the watcher build on.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/codemap-dev/codemap/internal/config"
	cmerrors "github.com/codemap-dev/codemap/internal/errors"
	"github.com/codemap-dev/codemap/internal/graph"
	"github.com/codemap-dev/codemap/internal/index"
	"github.com/codemap-dev/codemap/internal/scanner"
	"github.com/codemap-dev/codemap/internal/score"
	"github.com/codemap-dev/codemap/internal/search"
	"github.com/codemap-dev/codemap/internal/token"
)

// Engine runs the indexing and ranking pipeline for one project root.
type Engine struct {
	root    string
	cfg     *config.Config
	builder *index.Builder

	// counter supplies commit counts; replaceable in tests.
	counter score.CommitCounter
}

// New creates an Engine for the given project root.
func New(root string, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	b, err := index.NewBuilder()
	if err != nil {
		return nil, err
	}
	return &Engine{
		root:    root,
		cfg:     cfg,
		builder: b,
		counter: &score.GitCounter{Root: root},
	}, nil
}

// DataDir returns the directory holding the persisted index.
func (e *Engine) DataDir() string {
	return filepath.Join(e.root, config.DataDirName)
}

// BuildResult is the outcome of BuildIndex.
type BuildResult struct {
	State    *index.State
	Warnings []error
	Stats    index.BuildStats
}

// BuildIndex loads the previous index if any, rebuilds incrementally,
// recomputes the import graph, and persists the result. A corrupt
// previous index triggers a full rebuild rather than an error.
func (e *Engine) BuildIndex(ctx context.Context) (*BuildResult, error) {
	return e.build(ctx, false)
}

// Rebuild ignores any previous index and builds from scratch.
func (e *Engine) Rebuild(ctx context.Context) (*BuildResult, error) {
	return e.build(ctx, true)
}

func (e *Engine) build(ctx context.Context, force bool) (*BuildResult, error) {
	var prev *index.State
	if !force {
		var err error
		prev, err = index.Load(e.DataDir())
		if err != nil {
			if cmerrors.GetCode(err) != cmerrors.ErrCodeIndexCorrupt {
				return nil, err
			}
			slog.Warn("persisted index is corrupt, rebuilding from scratch", "error", err)
			prev = nil
		}
	}

	res, err := e.builder.Build(ctx, index.BuildOptions{
		Root: e.root,
		Prev: prev,
		Scan: scanner.Options{
			Include:     e.cfg.Paths.Include,
			Exclude:     e.cfg.Paths.Exclude,
			MaxFileSize: e.cfg.Performance.MaxFileSize,
			Workers:     e.cfg.Performance.Workers,
		},
		Workers: e.cfg.Performance.Workers,
	})
	if err != nil {
		return nil, err
	}
	state := res.State

	if len(state.Centrality) == 0 {
		e.attachGraph(state, res)
	}

	if err := index.Save(state, e.DataDir()); err != nil {
		return nil, err
	}

	slog.Info("index built",
		"files", state.TotalDocs(),
		"added", res.Stats.Added,
		"changed", res.Stats.Changed,
		"deleted", res.Stats.Deleted,
		"warnings", len(res.Warnings))

	return &BuildResult{State: state, Warnings: res.Warnings, Stats: res.Stats}, nil
}

// attachGraph resolves import edges and caches centrality on the state.
func (e *Engine) attachGraph(state *index.State, res *index.BuildResult) {
	imports := make(map[string][]string, state.TotalDocs())
	for path, entry := range state.Files {
		if len(entry.Imports) > 0 {
			imports[path] = entry.Imports
		}
	}
	edges, warnings := graph.BuildEdges(imports, state.Paths())
	res.Warnings = append(res.Warnings, warnings...)

	state.Edges = edges
	state.Centrality = graph.Centrality(state.Paths(), edges)
}

// LoadIndex reads the persisted index, or nil when none exists.
func (e *Engine) LoadIndex() (*index.State, error) {
	return index.Load(e.DataDir())
}

// LoadOrBuild returns the persisted index, building one when it is
// missing or corrupt.
func (e *Engine) LoadOrBuild(ctx context.Context) (*index.State, error) {
	state, err := index.Load(e.DataDir())
	if err != nil && cmerrors.GetCode(err) != cmerrors.ErrCodeIndexCorrupt {
		return nil, err
	}
	if state != nil {
		return state, nil
	}
	res, err := e.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	return res.State, nil
}

// ScoredFile is one ranked file with everything a renderer needs.
type ScoredFile struct {
	Path     string
	Score    float64
	Size     int64
	Tokens   int64
	Language string
	Role     string

	// Signals holds each contributing signal's raw score.
	Signals map[string]float64

	// Ranks holds the per-signal 1-based ranks that produced Score.
	Ranks map[string]int
}

// Score ranks every indexed file against the query. Signals disabled
// in the configuration, or unavailable (no git history, no graph),
// are skipped; the rest are fused with RRF. The result is sorted by
// fused score descending, path ascending on ties.
func (e *Engine) Score(ctx context.Context, query string, state *index.State) []ScoredFile {
	var rankings []search.SignalRanking

	if e.cfg.Signals.BM25F {
		rankings = append(rankings, search.SignalRanking{Name: "bm25f", Scores: score.BM25F(query, state)})
	}
	if e.cfg.Signals.Heuristic {
		rankings = append(rankings, search.SignalRanking{Name: "heuristic", Scores: score.Heuristic(query, state)})
	}
	if e.cfg.Signals.Centrality {
		rankings = append(rankings, search.SignalRanking{Name: "centrality", Scores: score.CentralityScores(state)})
	}
	if e.cfg.Signals.Recency {
		counts, err := e.counter.CommitCounts(ctx)
		if err == nil && counts != nil {
			rankings = append(rankings, search.SignalRanking{Name: "recency", Scores: score.Recency(counts, state)})
		}
	}

	return toScored(state, rankings, search.FuseRRF(e.cfg.Fusion.RRFConstant, rankings))
}

// toScored joins the fused order with each file's metadata and the raw
// per-signal scores that produced it.
func toScored(state *index.State, rankings []search.SignalRanking, fused []search.FusedFile) []ScoredFile {
	raw := make(map[string]map[string]float64)
	for _, r := range rankings {
		for _, fs := range r.Scores {
			m, ok := raw[fs.Path]
			if !ok {
				m = make(map[string]float64)
				raw[fs.Path] = m
			}
			m[r.Name] = fs.Score
		}
	}

	out := make([]ScoredFile, 0, len(fused))
	for _, f := range fused {
		s := ScoredFile{Path: f.Path, Score: f.Score, Signals: raw[f.Path], Ranks: f.Ranks}
		if entry, ok := state.Files[f.Path]; ok {
			s.Size = entry.Info.Size
			s.Tokens = search.EstimateTokens(entry.Info.Size)
			s.Language = entry.Info.Language
			s.Role = string(entry.Info.Role)
		}
		out = append(out, s)
	}
	return out
}

// Select applies the budget to an already-scored ranking. Selected
// files keep their full signal breakdown and metadata.
func (e *Engine) Select(scored []ScoredFile) []ScoredFile {
	byPath := make(map[string]ScoredFile, len(scored))
	candidates := make([]search.Candidate, 0, len(scored))
	for _, s := range scored {
		byPath[s.Path] = s
		candidates = append(candidates, search.Candidate{
			FusedFile: search.FusedFile{Path: s.Path, Score: s.Score, Ranks: s.Ranks},
			Size:      s.Size,
		})
	}

	picked := search.Select(candidates, search.Budget{
		MaxBytes:  e.cfg.Budget.MaxBytes,
		MaxTokens: e.cfg.Budget.MaxTokens,
		MinScore:  e.cfg.Budget.MinScore,
	})

	out := make([]ScoredFile, 0, len(picked))
	for _, c := range picked {
		out = append(out, byPath[c.Path])
	}
	return out
}

// ScoreShallow ranks files from a scan alone, without reading file
// contents. Only path tokens feed the text signal, so it works before
// any index exists. Heuristic structure scores still apply; centrality
// and recency need an index and are skipped.
func (e *Engine) ScoreShallow(ctx context.Context, query string) ([]ScoredFile, error) {
	sc, err := scanner.New()
	if err != nil {
		return nil, err
	}
	res, err := sc.Scan(ctx, scanner.Options{
		Root:        e.root,
		Include:     e.cfg.Paths.Include,
		Exclude:     e.cfg.Paths.Exclude,
		MaxFileSize: e.cfg.Performance.MaxFileSize,
		Workers:     e.cfg.Performance.Workers,
	})
	if err != nil {
		return nil, err
	}

	state := index.NewState()
	for _, fi := range res.Files {
		entry := &index.FileEntry{Info: fi, Terms: make(map[string]index.FieldFreq)}
		terms := token.Tokenize(fi.Path)
		for _, t := range terms {
			f := entry.Terms[t]
			f.Filename++
			entry.Terms[t] = f
		}
		entry.DocLength = index.WeightFilename * float64(len(terms))
		state.Add(entry)
	}

	rankings := []search.SignalRanking{
		{Name: "bm25f", Scores: score.BM25F(query, state)},
		{Name: "heuristic", Scores: score.Heuristic(query, state)},
	}
	return toScored(state, rankings, search.FuseRRF(e.cfg.Fusion.RRFConstant, rankings)), nil
}

// SetCommitCounter overrides the git-backed counter, mainly for tests.
func (e *Engine) SetCommitCounter(c score.CommitCounter) {
	e.counter = c
}
