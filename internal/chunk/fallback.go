package chunk

import (
	"regexp"
	"strings"
)

// defRegexes match definition-start lines for languages without a
// tree-sitter grammar. Group 1 captures the symbol name when present.
var defRegexes = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+|abstract\s+|final\s+)*(?:class|interface|enum|module|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`^\s*(?:def|fn|func|function|sub)\s+([A-Za-z_][A-Za-z0-9_!?]*)`),
	regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\([^)]*\)\s*\{\s*$`),
}

// RegexExtractor is the line-based fallback for grammarless languages.
type RegexExtractor struct{}

// NewRegexExtractor creates the fallback extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract splits src at definition-start lines. Text before the first
// definition becomes an "other" chunk. Files with no definitions come
// back as a single whole-file chunk.
func (e *RegexExtractor) Extract(path, language string, src []byte) ([]Chunk, error) {
	text := string(src)
	lines := strings.Split(text, "\n")

	type def struct {
		line int
		name string
	}
	var defs []def
	for i, line := range lines {
		if name, ok := matchDef(line); ok {
			defs = append(defs, def{line: i, name: name})
		}
	}

	if len(defs) == 0 {
		return []Chunk{WholeFile(text)}, nil
	}

	var chunks []Chunk
	if defs[0].line > 0 {
		chunks = append(chunks, Chunk{
			Kind:      KindOther,
			StartLine: 1,
			EndLine:   defs[0].line,
			Text:      strings.Join(lines[:defs[0].line], "\n"),
		})
	}
	for i, d := range defs {
		end := len(lines)
		if i+1 < len(defs) {
			end = defs[i+1].line
		}
		chunks = append(chunks, Chunk{
			Kind:      KindFunction,
			Name:      d.name,
			StartLine: d.line + 1,
			EndLine:   end,
			Text:      strings.Join(lines[d.line:end], "\n"),
		})
	}
	return chunks, nil
}

// controlKeywords are identifiers the C-style pattern must not treat
// as function names.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "do": true, "else": true,
}

func matchDef(line string) (string, bool) {
	for _, re := range defRegexes {
		if m := re.FindStringSubmatch(line); m != nil {
			if controlKeywords[m[1]] {
				continue
			}
			return m[1], true
		}
	}
	return "", false
}

// WholeFile wraps an entire file as a single chunk.
func WholeFile(text string) Chunk {
	return Chunk{
		Kind:      KindOther,
		StartLine: 1,
		EndLine:   strings.Count(text, "\n") + 1,
		Text:      text,
	}
}
