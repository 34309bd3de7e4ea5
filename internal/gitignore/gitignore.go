// Package gitignore implements .gitignore pattern matching for the scanner.
//
// Patterns follow git semantics: later rules override earlier ones,
// negation with !, directory-only patterns with a trailing slash, and
// anchoring with a leading slash. Matchers are compiled once per
// directory and cached by the scanner.
package gitignore

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// rule is a single compiled gitignore pattern.
type rule struct {
	pattern  string
	regex    *regexp.Regexp
	negation bool
	dirOnly  bool
	anchored bool
}

// Matcher holds an ordered list of compiled rules.
// The zero value matches nothing.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles the given pattern lines into a Matcher.
// Blank lines, comments, and patterns that fail to compile are skipped.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if r, ok := compile(p); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// LoadFile reads a .gitignore file and compiles its patterns.
// A missing file yields an empty matcher.
func LoadFile(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Matcher{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		patterns = append(patterns, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewMatcher(patterns), nil
}

// Match reports whether the given path is ignored.
// path is relative to the directory the patterns were loaded from,
// using forward slashes. Last matching rule wins.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = filepath.ToSlash(strings.TrimPrefix(path, "/"))

	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir && !r.matchesParent(path) {
			continue
		}
		if r.matches(path) {
			ignored = !r.negation
		}
	}
	return ignored
}

// Len returns the number of compiled rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

func (r *rule) matches(path string) bool {
	if r.regex.MatchString(path) {
		return true
	}
	// An unanchored pattern may match any path component.
	if !r.anchored && !strings.Contains(r.pattern, "/") {
		for _, part := range strings.Split(path, "/") {
			if r.regex.MatchString(part) {
				return true
			}
		}
	}
	return false
}

// matchesParent reports whether a dir-only rule applies because some
// ancestor directory of path matches it.
func (r *rule) matchesParent(path string) bool {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if r.matches(strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

// compile turns one gitignore line into a rule.
func compile(line string) (rule, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	r := rule{}
	if strings.HasPrefix(line, "!") {
		r.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		// Patterns with a slash anywhere are anchored per git semantics.
		r.anchored = true
	}

	r.pattern = line
	re, err := regexp.Compile(patternToRegex(line, r.anchored))
	if err != nil {
		return rule{}, false
	}
	r.regex = re
	return r, true
}

// patternToRegex converts a gitignore glob into an anchored regex.
func patternToRegex(pattern string, anchored bool) string {
	var sb strings.Builder
	sb.WriteString("^")

	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				// "**" crosses directory boundaries.
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					sb.WriteString("(?:.*/)?")
					i += 3
				} else {
					sb.WriteString(".*")
					i += 2
				}
				continue
			}
			sb.WriteString("[^/]*")
		case '?':
			sb.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				sb.WriteString(regexp.QuoteMeta(string(c)))
			} else {
				sb.WriteString(pattern[i : i+end+1])
				i += end
			}
		case '.', '(', ')', '+', '|', '^', '$', '{', '}', '\\':
			sb.WriteString(regexp.QuoteMeta(string(c)))
		default:
			sb.WriteByte(c)
		}
		i++
	}

	if anchored {
		// Anchored patterns also ignore everything beneath a matched dir.
		sb.WriteString("(?:/.*)?$")
	} else {
		sb.WriteString("$")
	}
	return sb.String()
}
