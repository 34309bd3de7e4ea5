package index

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codemap-dev/codemap/internal/chunk"
	cmerrors "github.com/codemap-dev/codemap/internal/errors"
	"github.com/codemap-dev/codemap/internal/graph"
	"github.com/codemap-dev/codemap/internal/scanner"
	"github.com/codemap-dev/codemap/internal/token"
)

// BuildOptions configures an index build.
type BuildOptions struct {
	// Root is the project root directory.
	Root string

	// Prev is the previous index state, or nil for a full build.
	Prev *State

	// Scan configures file discovery. Root is filled in from Root.
	Scan scanner.Options

	// Extractor produces chunks. Nil means the default layered extractor.
	Extractor chunk.Extractor

	// Workers bounds concurrent extraction. 0 means NumCPU.
	Workers int
}

// BuildResult is the outcome of a build.
type BuildResult struct {
	State *State

	// Warnings are per-file problems that did not abort the build.
	Warnings []error

	// Stats describe what the incremental pass did.
	Stats BuildStats
}

// BuildStats counts per-file decisions during a build.
type BuildStats struct {
	Unchanged int
	Changed   int
	Added     int
	Deleted   int
}

// Builder constructs index states incrementally.
type Builder struct {
	scanner   *scanner.Scanner
	extractor chunk.Extractor
}

// NewBuilder creates a Builder.
func NewBuilder() (*Builder, error) {
	sc, err := scanner.New()
	if err != nil {
		return nil, err
	}
	return &Builder{
		scanner:   sc,
		extractor: chunk.NewLayeredExtractor(),
	}, nil
}

// Build scans the tree and produces a new State. When Prev is given,
// unchanged files are carried over and only changed, added, and deleted
// files touch the statistics. The resulting totals are identical to a
// full rebuild of the same tree.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	extractor := opts.Extractor
	if extractor == nil {
		extractor = b.extractor
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scanOpts := opts.Scan
	scanOpts.Root = opts.Root
	scanRes, err := b.scanner.Scan(ctx, scanOpts)
	if err != nil {
		return nil, err
	}

	res := &BuildResult{Warnings: scanRes.Warnings}

	if opts.Prev != nil && opts.Prev.Fingerprint == scanner.Fingerprint(scanRes.Files) {
		res.State = opts.Prev
		res.Stats.Unchanged = opts.Prev.TotalDocs()
		return res, nil
	}

	state := cloneState(opts.Prev)
	// Graph caches describe the previous file set.
	state.Centrality = make(map[string]float64)
	state.Edges = make(map[string][]string)

	scanned := make(map[string]scanner.FileInfo, len(scanRes.Files))
	for _, fi := range scanRes.Files {
		scanned[fi.Path] = fi
	}

	// Deleted: indexed before, gone now.
	for path := range state.Files {
		if _, ok := scanned[path]; !ok {
			state.removeEntry(path)
			res.Stats.Deleted++
		}
	}

	// Changed and added files need extraction; unchanged carry over.
	var work []scanner.FileInfo
	for _, fi := range scanRes.Files {
		prev, ok := state.Files[fi.Path]
		if ok && prev.Info.Hash == fi.Hash {
			res.Stats.Unchanged++
			continue
		}
		if ok {
			state.removeEntry(fi.Path)
			res.Stats.Changed++
		} else {
			res.Stats.Added++
		}
		work = append(work, fi)
	}

	entries := make([]*FileEntry, len(work))
	warns := make([]error, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fi := range work {
		i, fi := i, fi
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			entries[i], warns[i] = buildEntry(opts.Root, fi, extractor)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Single-writer merge keeps DocFreq bookkeeping race-free, and work
	// is already in path order so results are deterministic.
	for i, entry := range entries {
		if warns[i] != nil {
			res.Warnings = append(res.Warnings, warns[i])
		}
		if entry == nil {
			continue
		}
		state.Add(entry)
	}

	// The fingerprint covers only what was committed. A file the pass
	// could not index stays out of it, so the next build retries the
	// file instead of short-circuiting past it.
	committed := make([]scanner.FileInfo, 0, len(state.Files))
	for _, e := range state.Files {
		committed = append(committed, e.Info)
	}
	state.Fingerprint = scanner.Fingerprint(committed)

	res.State = state
	return res, nil
}

// buildEntry reads and indexes one file. An extractor failure degrades
// to a single whole-file chunk rather than dropping the file; the
// returned warning then accompanies a usable entry.
func buildEntry(root string, fi scanner.FileInfo, extractor chunk.Extractor) (*FileEntry, error) {
	src, err := os.ReadFile(filepath.Join(root, fi.Path))
	if err != nil {
		return nil, cmerrors.FileIOError(fi.Path, err)
	}

	var warn error
	chunks, err := extractor.Extract(fi.Path, fi.Language, src)
	if err != nil {
		warn = cmerrors.ExtractionError(fi.Path, err)
		chunks = []chunk.Chunk{chunk.WholeFile(string(src))}
	}

	entry := &FileEntry{
		Info:    fi,
		Chunks:  chunks,
		Terms:   make(map[string]FieldFreq),
		Imports: graph.ExtractImports(fi.Language, src),
	}

	filenameTerms := token.Tokenize(fi.Path)
	symbolTerms := token.Tokenize(strings.Join(chunk.Symbols(chunks), " "))
	bodyTerms := token.Tokenize(string(src))

	for _, t := range filenameTerms {
		f := entry.Terms[t]
		f.Filename++
		entry.Terms[t] = f
	}
	for _, t := range symbolTerms {
		f := entry.Terms[t]
		f.Symbols++
		entry.Terms[t] = f
	}
	for _, t := range bodyTerms {
		f := entry.Terms[t]
		f.Body++
		entry.Terms[t] = f
	}

	entry.DocLength = WeightFilename*float64(len(filenameTerms)) +
		WeightSymbols*float64(len(symbolTerms)) +
		WeightBody*float64(len(bodyTerms))
	return entry, warn
}

// cloneState copies prev so the incremental pass can mutate freely.
// Entries themselves are shared; they are immutable once built.
func cloneState(prev *State) *State {
	s := NewState()
	if prev == nil {
		return s
	}
	for path, e := range prev.Files {
		s.Files[path] = e
	}
	for term, df := range prev.DocFreq {
		s.DocFreq[term] = df
	}
	s.TotalDocLength = prev.TotalDocLength
	return s
}
