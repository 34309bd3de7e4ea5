// Package chunk extracts semantic chunks from source files.
//
// Extraction is layered: a tree-sitter pass for languages with a
// registered grammar, a regex pass for languages without one, and a
// whole-file chunk as the last resort. Extraction never fails a file
// outright; the worst case is a single chunk covering everything.
package chunk

// Kind classifies a chunk.
type Kind string

const (
	KindFunction Kind = "function"
	KindType     Kind = "type"
	KindImport   Kind = "import"
	KindOther    Kind = "other"
)

// Chunk is one extracted region of a source file.
type Chunk struct {
	// Kind is the chunk classification.
	Kind Kind `json:"kind"`

	// Name is the declared symbol name, or "" when anonymous.
	Name string `json:"name"`

	// StartLine and EndLine are 1-based, inclusive.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Text is the chunk source text.
	Text string `json:"text"`
}

// Extractor turns a file into chunks.
type Extractor interface {
	// Extract returns the chunks for the given file. The language hint
	// comes from the scanner and may be "".
	Extract(path, language string, src []byte) ([]Chunk, error)
}
