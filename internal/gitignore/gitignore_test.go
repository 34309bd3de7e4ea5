package gitignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_SimplePatterns(t *testing.T) {
	m := NewMatcher([]string{"*.log", "build/"})

	assert.True(t, m.Match("debug.log", false))
	assert.True(t, m.Match("sub/dir/trace.log", false))
	assert.True(t, m.Match("build", true))
	assert.True(t, m.Match("build/out.o", false))
	assert.False(t, m.Match("main.go", false))
}

func TestMatch_Negation(t *testing.T) {
	m := NewMatcher([]string{"*.log", "!keep.log"})

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("keep.log", false))
}

func TestMatch_LastRuleWins(t *testing.T) {
	m := NewMatcher([]string{"!keep.log", "*.log"})

	assert.True(t, m.Match("keep.log", false))
}

func TestMatch_Anchored(t *testing.T) {
	m := NewMatcher([]string{"/dist"})

	assert.True(t, m.Match("dist", true))
	assert.True(t, m.Match("dist/bundle.js", false))
	assert.False(t, m.Match("pkg/dist", true))
}

func TestMatch_SlashAnchorsPattern(t *testing.T) {
	m := NewMatcher([]string{"docs/*.md"})

	assert.True(t, m.Match("docs/readme.md", false))
	assert.False(t, m.Match("sub/docs/readme.md", false))
}

func TestMatch_DoubleStar(t *testing.T) {
	m := NewMatcher([]string{"**/generated", "logs/**"})

	assert.True(t, m.Match("generated", true))
	assert.True(t, m.Match("a/b/generated", true))
	assert.True(t, m.Match("logs/2024/app.log", false))
	assert.False(t, m.Match("other/app.log", false))
}

func TestMatch_QuestionMarkAndClass(t *testing.T) {
	m := NewMatcher([]string{"file?.txt", "[ab].go"})

	assert.True(t, m.Match("file1.txt", false))
	assert.False(t, m.Match("file12.txt", false))
	assert.True(t, m.Match("a.go", false))
	assert.False(t, m.Match("c.go", false))
}

func TestMatch_CommentsAndBlanksSkipped(t *testing.T) {
	m := NewMatcher([]string{"# comment", "", "*.tmp"})

	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Match("x.tmp", false))
}

func TestMatch_DirOnlyAppliesToChildren(t *testing.T) {
	m := NewMatcher([]string{"node_modules/"})

	assert.True(t, m.Match("node_modules", true))
	assert.True(t, m.Match("node_modules/pkg/index.js", false))
	assert.False(t, m.Match("node_modules", false))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("*.bak\n!important.bak\n"), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, m.Match("old.bak", false))
	assert.False(t, m.Match("important.bak", false))
}

func TestLoadFile_Missing(t *testing.T) {
	m, err := LoadFile(filepath.Join(t.TempDir(), ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Match("anything", false))
}
