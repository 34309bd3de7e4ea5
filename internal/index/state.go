// Package index holds the in-memory index state, the incremental
// builder that maintains it, and the binary on-disk format.
package index

import (
	"sort"

	"github.com/codemap-dev/codemap/internal/chunk"
	"github.com/codemap-dev/codemap/internal/scanner"
)

// Field weights for the three indexed fields. A term hit in a filename
// counts five times a body hit, a symbol hit three times.
const (
	WeightFilename = 5.0
	WeightSymbols  = 3.0
	WeightBody     = 1.0
)

// FieldFreq is the per-field term frequency within one file.
type FieldFreq struct {
	Filename uint32
	Symbols  uint32
	Body     uint32
}

// Weighted returns the field-weighted term frequency.
func (f FieldFreq) Weighted() float64 {
	return WeightFilename*float64(f.Filename) +
		WeightSymbols*float64(f.Symbols) +
		WeightBody*float64(f.Body)
}

// FileEntry is everything the index knows about one file.
type FileEntry struct {
	Info scanner.FileInfo

	// Chunks are the extracted regions, in file order.
	Chunks []chunk.Chunk

	// Terms maps each term to its per-field frequency.
	Terms map[string]FieldFreq

	// DocLength is the field-weighted token count.
	DocLength float64

	// Imports are the raw import references found in the file, before
	// graph resolution.
	Imports []string
}

// State is the complete index. It is immutable once built; the builder
// produces a new State on every run.
type State struct {
	// Files maps relative path to entry.
	Files map[string]*FileEntry

	// DocFreq maps each term to the number of files containing it.
	DocFreq map[string]int

	// TotalDocLength is the sum of all DocLength values.
	TotalDocLength float64

	// Fingerprint identifies the file set this index was built from.
	Fingerprint string

	// Centrality holds normalized import-graph scores per path, filled
	// in after graph analysis. May be empty.
	Centrality map[string]float64

	// Edges holds resolved import edges, importer path to imported
	// paths. May be empty.
	Edges map[string][]string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		Files:      make(map[string]*FileEntry),
		DocFreq:    make(map[string]int),
		Centrality: make(map[string]float64),
		Edges:      make(map[string][]string),
	}
}

// TotalDocs returns the number of indexed files.
func (s *State) TotalDocs() int {
	return len(s.Files)
}

// AvgDocLength returns the mean field-weighted document length.
func (s *State) AvgDocLength() float64 {
	if len(s.Files) == 0 {
		return 0
	}
	return s.TotalDocLength / float64(len(s.Files))
}

// Paths returns all indexed paths sorted ascending.
func (s *State) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Add folds one entry into the running totals.
func (s *State) Add(e *FileEntry) {
	s.Files[e.Info.Path] = e
	s.TotalDocLength += e.DocLength
	for term := range e.Terms {
		s.DocFreq[term]++
	}
}

// removeEntry reverses Add.
func (s *State) removeEntry(path string) {
	e, ok := s.Files[path]
	if !ok {
		return
	}
	delete(s.Files, path)
	s.TotalDocLength -= e.DocLength
	for term := range e.Terms {
		if s.DocFreq[term] <= 1 {
			delete(s.DocFreq, term)
		} else {
			s.DocFreq[term]--
		}
	}
}
