package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSource = `package auth

import "fmt"

// Login authenticates a user.
func Login(user, pass string) error {
	if user == "" {
		return fmt.Errorf("empty user")
	}
	return nil
}

type Session struct {
	Token string
}

func (s *Session) Valid() bool {
	return s.Token != ""
}
`

func TestTreeSitter_GoChunks(t *testing.T) {
	e := NewTreeSitterExtractor()
	chunks, err := e.Extract("auth/login.go", "go", []byte(goSource))
	require.NoError(t, err)

	names := map[string]Kind{}
	for _, c := range chunks {
		if c.Name != "" {
			names[c.Name] = c.Kind
		}
	}
	assert.Equal(t, KindFunction, names["Login"])
	assert.Equal(t, KindFunction, names["Valid"])
	assert.Equal(t, KindType, names["Session"])

	var hasImport bool
	for _, c := range chunks {
		if c.Kind == KindImport {
			hasImport = true
		}
	}
	assert.True(t, hasImport)
}

func TestTreeSitter_LineRangesAndText(t *testing.T) {
	e := NewTreeSitterExtractor()
	chunks, err := e.Extract("auth/login.go", "go", []byte(goSource))
	require.NoError(t, err)

	for _, c := range chunks {
		assert.GreaterOrEqual(t, c.StartLine, 1)
		assert.GreaterOrEqual(t, c.EndLine, c.StartLine)
		assert.NotEmpty(t, c.Text)
	}
}

func TestTreeSitter_PythonChunks(t *testing.T) {
	src := "import os\n\ndef run(path):\n    return os.stat(path)\n\nclass Runner:\n    def go(self):\n        pass\n"
	e := NewTreeSitterExtractor()
	chunks, err := e.Extract("run.py", "python", []byte(src))
	require.NoError(t, err)

	names := map[string]Kind{}
	for _, c := range chunks {
		if c.Name != "" {
			names[c.Name] = c.Kind
		}
	}
	assert.Equal(t, KindFunction, names["run"])
	assert.Equal(t, KindType, names["Runner"])
	// The nested method is contained in the class chunk and deduplicated.
	_, nested := names["go"]
	assert.False(t, nested)
}

func TestTreeSitter_UnknownLanguage(t *testing.T) {
	e := NewTreeSitterExtractor()
	chunks, err := e.Extract("notes.txt", "", []byte("hello"))
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestRegexFallback_RubyDefs(t *testing.T) {
	src := "require 'json'\n\ndef parse(input)\n  JSON.parse(input)\nend\n\nclass Loader\n  def load; end\nend\n"
	e := NewRegexExtractor()
	chunks, err := e.Extract("loader.rb", "ruby", []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var names []string
	for _, c := range chunks {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	assert.Contains(t, names, "parse")
	assert.Contains(t, names, "Loader")
}

func TestRegexFallback_NoDefinitions(t *testing.T) {
	e := NewRegexExtractor()
	chunks, err := e.Extract("data.csv", "", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, KindOther, chunks[0].Kind)
	assert.Equal(t, 1, chunks[0].StartLine)
}

func TestLayered_PrefersPrecise(t *testing.T) {
	e := NewLayeredExtractor()
	chunks, err := e.Extract("auth/login.go", "go", []byte(goSource))
	require.NoError(t, err)
	assert.Contains(t, Symbols(chunks), "Login")
}

func TestLayered_FallsBackForUnknown(t *testing.T) {
	e := NewLayeredExtractor()
	chunks, err := e.Extract("script.lua", "", []byte("function greet(name)\n  print(name)\nend\n"))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Contains(t, Symbols(chunks), "greet")
}

func TestLayered_EmptyFile(t *testing.T) {
	e := NewLayeredExtractor()
	chunks, err := e.Extract("empty.go", "go", nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestWholeFile(t *testing.T) {
	c := WholeFile("line1\nline2\nline3")
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, 3, c.EndLine)
}
