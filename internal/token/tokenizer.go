// Package token normalizes source text and queries into index terms.
//
// The same pipeline runs at index time and query time, which is what
// makes matches line up: split on non-word boundaries, split compound
// identifiers, lowercase, drop short tokens and stop words. No
// stemming.
package token

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// stopWords are dropped from all fields.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"was": true, "one": true, "our": true, "out": true, "has": true,
	"have": true, "this": true, "that": true, "with": true, "from": true,
	"they": true, "been": true, "will": true, "each": true, "which": true,
	"their": true, "when": true, "where": true, "what": true, "there": true,
	"var": true, "let": true, "const": true, "func": true, "def": true,
	"return": true, "import": true, "package": true, "class": true,
	"pub": true, "use": true, "end": true, "nil": true, "null": true,
	"true": true, "false": true, "int": true, "str": true, "new": true,
}

// Tokenize splits text into normalized index terms.
func Tokenize(text string) []string {
	var out []string
	for _, word := range wordRe.FindAllString(text, -1) {
		for _, part := range splitCompound(word) {
			part = strings.ToLower(part)
			if len(part) < 2 || stopWords[part] {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// splitCompound breaks snake_case and camelCase identifiers into parts.
// Acronym runs stay together: "HTTPServer" becomes ["HTTP", "Server"].
func splitCompound(word string) []string {
	var parts []string
	for _, seg := range strings.Split(word, "_") {
		if seg == "" {
			continue
		}
		parts = append(parts, splitCamel(seg)...)
	}
	return parts
}

func splitCamel(s string) []string {
	var parts []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case isLower(prev) && isUpper(cur):
			boundary = true
		case isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]):
			// End of an acronym run: "XMLParser" splits before "Parser".
			boundary = true
		case isDigit(prev) != isDigit(cur):
			boundary = true
		}
		if boundary {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
