// Package graph builds the import graph and computes file centrality.
//
// Import references are extracted with per-language regexes at index
// time, resolved to indexed paths afterwards, and fed to PageRank.
// References that cannot be resolved to an indexed file are dropped.
package graph

import (
	"regexp"
)

// importPatterns map a language to the regexes that capture its import
// targets in group 1. Only project-resolvable forms are captured;
// angle-bracket includes and the like are system references and skipped.
var importPatterns = map[string][]*regexp.Regexp{
	"go": {
		regexp.MustCompile(`(?m)^import\s+(?:[A-Za-z_.][A-Za-z0-9_]*\s+)?"([^"]+)"`),
		// Lines inside a gofmt-formatted import block.
		regexp.MustCompile(`(?m)^\t(?:[A-Za-z_.][A-Za-z0-9_]*\s+)?"([^"]+)"$`),
	},
	"javascript": {
		regexp.MustCompile(`(?m)import\s+(?:[^'"]*?\s+from\s+)?['"]([^'"]+)['"]`),
		regexp.MustCompile(`(?m)require\(\s*['"]([^'"]+)['"]\s*\)`),
	},
	"typescript": {
		regexp.MustCompile(`(?m)import\s+(?:[^'"]*?\s+from\s+)?['"]([^'"]+)['"]`),
		regexp.MustCompile(`(?m)require\(\s*['"]([^'"]+)['"]\s*\)`),
	},
	"python": {
		regexp.MustCompile(`(?m)^\s*import\s+([A-Za-z_][A-Za-z0-9_.]*)`),
		regexp.MustCompile(`(?m)^\s*from\s+([A-Za-z_.][A-Za-z0-9_.]*)\s+import`),
	},
	"c": {
		regexp.MustCompile(`(?m)^\s*#\s*include\s+"([^"]+)"`),
	},
	"cpp": {
		regexp.MustCompile(`(?m)^\s*#\s*include\s+"([^"]+)"`),
	},
	"rust": {
		regexp.MustCompile(`(?m)^\s*(?:pub\s+)?mod\s+([A-Za-z_][A-Za-z0-9_]*)\s*;`),
		regexp.MustCompile(`(?m)^\s*use\s+crate::([A-Za-z_][A-Za-z0-9_:]*)`),
	},
	"ruby": {
		regexp.MustCompile(`(?m)^\s*require_relative\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`(?m)^\s*require\s+['"]([^'"]+)['"]`),
	},
	"java": {
		regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*;`),
	},
}

// ExtractImports returns the raw import references found in src.
// Duplicates are removed; order follows first appearance.
func ExtractImports(language string, src []byte) []string {
	patterns, ok := importPatterns[language]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var refs []string
	for _, re := range patterns {
		for _, m := range re.FindAllSubmatch(src, -1) {
			ref := string(m[1])
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}
