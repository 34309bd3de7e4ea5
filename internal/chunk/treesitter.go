package chunk

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
)

// TreeSitterExtractor parses files with tree-sitter grammars.
// Files in languages without a grammar yield (nil, nil) so the caller
// can fall back.
type TreeSitterExtractor struct{}

// NewTreeSitterExtractor creates a tree-sitter backed extractor.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	return &TreeSitterExtractor{}
}

// Extract implements Extractor.
func (e *TreeSitterExtractor) Extract(path, language string, src []byte) ([]Chunk, error) {
	spec := specFor(path, language)
	if spec == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, cmerrors.ExtractionError(path, err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.query), spec.language)
	if err != nil {
		return nil, cmerrors.ExtractionError(path, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var caps []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var node *sitter.Node
		var name string
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "chunk":
				node = c.Node
			case "name":
				name = c.Node.Content(src)
			}
		}
		if node == nil {
			continue
		}
		caps = append(caps, capture{
			name:      name,
			nodeType:  node.Type(),
			startLine: int(node.StartPoint().Row) + 1,
			endLine:   int(node.EndPoint().Row) + 1,
			startByte: node.StartByte(),
			endByte:   node.EndByte(),
		})
	}

	caps = dedupCaptures(caps)

	chunks := make([]Chunk, 0, len(caps))
	for _, c := range caps {
		chunks = append(chunks, Chunk{
			Kind:      kindForNode(c.nodeType),
			Name:      c.name,
			StartLine: c.startLine,
			EndLine:   c.endLine,
			Text:      string(src[c.startByte:c.endByte]),
		})
	}
	return chunks, nil
}

// specFor picks a grammar. The .tsx extension needs the tsx grammar
// even though the scanner labels it "typescript".
func specFor(path, language string) *languageSpec {
	if strings.EqualFold(filepath.Ext(path), ".tsx") {
		return specs["tsx"]
	}
	return lookupSpec(language)
}

type capture struct {
	name      string
	nodeType  string
	startLine int
	endLine   int
	startByte uint32
	endByte   uint32
}

// dedupCaptures drops captures fully contained in an earlier, larger one.
func dedupCaptures(caps []capture) []capture {
	if len(caps) <= 1 {
		return caps
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].startByte != caps[j].startByte {
			return caps[i].startByte < caps[j].startByte
		}
		return (caps[i].endByte - caps[i].startByte) > (caps[j].endByte - caps[j].startByte)
	})

	var out []capture
	var lastEnd uint32
	for _, c := range caps {
		if len(out) == 0 || c.startByte >= lastEnd {
			out = append(out, c)
			if c.endByte > lastEnd {
				lastEnd = c.endByte
			}
		}
	}
	return out
}
