package graph

import (
	"path"
	"sort"
	"strings"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
)

// resolveExts are tried in order when a reference has no extension.
var resolveExts = []string{".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".rs", ".rb", ".java", ".c", ".h", ".cc", ".cpp", ".hpp"}

// indexNames are preferred when a reference points at a directory.
var indexNames = []string{"index.ts", "index.js", "__init__.py", "mod.rs"}

// Resolver maps raw import references to indexed file paths.
type Resolver struct {
	paths  map[string]bool
	byStem map[string][]string
}

// NewResolver builds a resolver over the indexed path set.
func NewResolver(paths []string) *Resolver {
	r := &Resolver{
		paths:  make(map[string]bool, len(paths)),
		byStem: make(map[string][]string),
	}
	for _, p := range paths {
		r.paths[p] = true
		stem := stemOf(p)
		r.byStem[stem] = append(r.byStem[stem], p)
	}
	for stem := range r.byStem {
		sort.Strings(r.byStem[stem])
	}
	return r
}

// Resolve maps one reference from the given file to an indexed path.
// ok is false when the reference points outside the project. A
// reference matching several files that cannot be disambiguated
// returns an error and ok false.
func (r *Resolver) Resolve(from, ref string) (string, bool, error) {
	segs := splitRef(ref)
	if len(segs) == 0 {
		return "", false, nil
	}

	if strings.HasPrefix(ref, ".") {
		if p, ok := r.resolveRelative(from, ref); ok {
			return p, true, nil
		}
		return "", false, nil
	}

	// Module-style reference: try the joined segments as a path prefix
	// first, then fall back to matching the last segment as a stem.
	if p, ok := r.tryFile(path.Clean(strings.Join(segs, "/"))); ok {
		return p, true, nil
	}

	stem := segs[len(segs)-1]
	candidates := r.byStem[stem]
	switch len(candidates) {
	case 0:
		return "", false, nil
	case 1:
		return candidates[0], true, nil
	}

	// Disambiguate by the segment before the stem, matching it against
	// the candidate's parent directory.
	if len(segs) >= 2 {
		parent := segs[len(segs)-2]
		var matched []string
		for _, c := range candidates {
			if path.Base(path.Dir(c)) == parent {
				matched = append(matched, c)
			}
		}
		if len(matched) == 1 {
			return matched[0], true, nil
		}
	}
	return "", false, cmerrors.GraphAmbiguousError(from, ref)
}

// resolveRelative handles ./ and ../ references.
func (r *Resolver) resolveRelative(from, ref string) (string, bool) {
	joined := path.Clean(path.Join(path.Dir(from), ref))
	return r.tryFile(joined)
}

// tryFile checks a candidate path directly, with known extensions, and
// as a directory with an index file.
func (r *Resolver) tryFile(p string) (string, bool) {
	if r.paths[p] {
		return p, true
	}
	for _, ext := range resolveExts {
		if r.paths[p+ext] {
			return p + ext, true
		}
	}
	for _, name := range indexNames {
		idx := path.Join(p, name)
		if r.paths[idx] {
			return idx, true
		}
	}
	return "", false
}

// BuildEdges resolves every file's references into graph edges.
// Unresolvable references are dropped; ambiguous ones additionally
// produce a warning. Self-edges are dropped. Edge lists are sorted and
// deduplicated.
func BuildEdges(imports map[string][]string, paths []string) (map[string][]string, []error) {
	r := NewResolver(paths)
	edges := make(map[string][]string)
	var warnings []error

	froms := make([]string, 0, len(imports))
	for from := range imports {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	for _, from := range froms {
		seen := make(map[string]bool)
		for _, ref := range imports[from] {
			to, ok, err := r.Resolve(from, ref)
			if err != nil {
				warnings = append(warnings, err)
			}
			if !ok || to == from || seen[to] {
				continue
			}
			seen[to] = true
			edges[from] = append(edges[from], to)
		}
		sort.Strings(edges[from])
	}
	return edges, warnings
}

// stemOf returns the base name without extension, special-casing index
// files to their directory name.
func stemOf(p string) string {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "index" || stem == "__init__" || stem == "mod" {
		if dir := path.Base(path.Dir(p)); dir != "." {
			return dir
		}
	}
	return stem
}

// splitRef splits a reference on /, ., and :: separators. Path-like
// references with extensions keep the extension on the last segment.
func splitRef(ref string) []string {
	ref = strings.TrimSpace(ref)
	ref = strings.ReplaceAll(ref, "::", "/")
	if !strings.Contains(ref, "/") && !strings.HasPrefix(ref, ".") {
		// Dotted module path (python, java).
		ref = strings.ReplaceAll(ref, ".", "/")
	}
	var segs []string
	for _, s := range strings.Split(ref, "/") {
		if s != "" && s != "." && s != ".." {
			segs = append(segs, s)
		}
	}
	return segs
}
