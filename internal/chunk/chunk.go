package chunk

import (
	"log/slog"
)

// LayeredExtractor tries tree-sitter first, then the regex fallback,
// and finally a whole-file chunk. It never returns an empty result for
// non-empty input.
type LayeredExtractor struct {
	precise  Extractor
	fallback Extractor
}

// NewLayeredExtractor builds the default extraction pipeline.
func NewLayeredExtractor() *LayeredExtractor {
	return &LayeredExtractor{
		precise:  NewTreeSitterExtractor(),
		fallback: NewRegexExtractor(),
	}
}

// Extract implements Extractor.
func (e *LayeredExtractor) Extract(path, language string, src []byte) ([]Chunk, error) {
	if len(src) == 0 {
		return nil, nil
	}

	chunks, err := e.precise.Extract(path, language, src)
	if err != nil {
		slog.Debug("precise extraction failed, using fallback", "path", path, "error", err)
	}
	if err == nil && len(chunks) > 0 {
		return chunks, nil
	}

	chunks, err = e.fallback.Extract(path, language, src)
	if err != nil || len(chunks) == 0 {
		return []Chunk{WholeFile(string(src))}, nil
	}
	return chunks, nil
}

// Symbols collects the named symbols across chunks.
func Symbols(chunks []Chunk) []string {
	var out []string
	for _, c := range chunks {
		if c.Name != "" {
			out = append(out, c.Name)
		}
	}
	return out
}
