package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemap-dev/codemap/internal/chunk"
	cmerrors "github.com/codemap-dev/codemap/internal/errors"
	"github.com/codemap-dev/codemap/internal/scanner"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func build(t *testing.T, root string, prev *State) *BuildResult {
	t.Helper()
	b, err := NewBuilder()
	require.NoError(t, err)
	res, err := b.Build(context.Background(), BuildOptions{Root: root, Prev: prev})
	require.NoError(t, err)
	return res
}

func seedProject(t *testing.T, root string) {
	writeFile(t, root, "auth/login.go", "package auth\n\nfunc Login(user string) error {\n\treturn nil\n}\n")
	writeFile(t, root, "auth/session.go", "package auth\n\ntype Session struct {\n\tToken string\n}\n")
	writeFile(t, root, "util/math.go", "package util\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n")
}

func TestBuild_FullIndexesAllFiles(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)

	res := build(t, root, nil)
	assert.Equal(t, 3, res.State.TotalDocs())
	assert.Equal(t, 3, res.Stats.Added)
	assert.NotEmpty(t, res.State.Fingerprint)

	entry := res.State.Files["auth/login.go"]
	require.NotNil(t, entry)
	assert.Greater(t, entry.DocLength, 0.0)
	assert.Contains(t, entry.Terms, "login")
	assert.Greater(t, entry.Terms["login"].Filename, uint32(0))
}

func TestBuild_UnchangedTreeShortCircuits(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)

	first := build(t, root, nil)
	second := build(t, root, first.State)

	assert.Same(t, first.State, second.State)
	assert.Equal(t, 3, second.Stats.Unchanged)
	assert.Zero(t, second.Stats.Added)
}

func TestBuild_IncrementalMatchesFullRebuild(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)

	first := build(t, root, nil)

	writeFile(t, root, "auth/login.go", "package auth\n\nfunc Login(user, pass string) error {\n\treturn validate(user, pass)\n}\n\nfunc validate(user, pass string) error {\n\treturn nil\n}\n")
	writeFile(t, root, "auth/token.go", "package auth\n\nfunc NewToken() string {\n\treturn \"tok\"\n}\n")
	require.NoError(t, os.Remove(filepath.Join(root, "util/math.go")))

	incremental := build(t, root, first.State)
	full := build(t, root, nil)

	assert.Equal(t, 1, incremental.Stats.Changed)
	assert.Equal(t, 1, incremental.Stats.Added)
	assert.Equal(t, 1, incremental.Stats.Deleted)
	assert.Equal(t, 1, incremental.Stats.Unchanged)

	assert.Equal(t, full.State.Fingerprint, incremental.State.Fingerprint)
	assert.Equal(t, full.State.TotalDocs(), incremental.State.TotalDocs())
	assert.InDelta(t, full.State.TotalDocLength, incremental.State.TotalDocLength, 1e-9)
	assert.Equal(t, full.State.DocFreq, incremental.State.DocFreq)
	assert.Equal(t, full.State.Paths(), incremental.State.Paths())
}

func TestBuild_DeletedFileLeavesNoTrace(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)

	first := build(t, root, nil)
	require.Contains(t, first.State.DocFreq, "math")

	require.NoError(t, os.Remove(filepath.Join(root, "util/math.go")))
	second := build(t, root, first.State)

	assert.NotContains(t, second.State.Files, "util/math.go")
	assert.NotContains(t, second.State.DocFreq, "math")
	assert.Equal(t, 1, second.Stats.Deleted)
}

func TestBuild_ExtractsImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "from models import User\n\ndef main():\n    pass\n")
	writeFile(t, root, "models.py", "class User:\n    pass\n")

	res := build(t, root, nil)
	entry := res.State.Files["app.py"]
	require.NotNil(t, entry)
	assert.Contains(t, entry.Imports, "models")
}

type failingExtractor struct{}

func (failingExtractor) Extract(path, language string, src []byte) ([]chunk.Chunk, error) {
	return nil, errors.New("parse failed")
}

func TestBuild_ExtractorFailureFallsBackToWholeFile(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)

	b, err := NewBuilder()
	require.NoError(t, err)
	res, err := b.Build(context.Background(), BuildOptions{Root: root, Extractor: failingExtractor{}})
	require.NoError(t, err)

	assert.Equal(t, 3, res.State.TotalDocs())
	require.Len(t, res.Warnings, 3)
	assert.Equal(t, cmerrors.ErrCodeExtraction, cmerrors.GetCode(res.Warnings[0]))

	entry := res.State.Files["auth/login.go"]
	require.NotNil(t, entry, "file must still be indexed after extractor failure")
	require.Len(t, entry.Chunks, 1)
	assert.Equal(t, chunk.KindOther, entry.Chunks[0].Kind)
	assert.Equal(t, 1, entry.Chunks[0].StartLine)
	assert.Greater(t, entry.Terms["login"].Body, uint32(0), "body terms come from the whole-file chunk")

	// Every scanned file made it in, so the next pass short-circuits.
	next, err := b.Build(context.Background(), BuildOptions{Root: root, Prev: res.State})
	require.NoError(t, err)
	assert.Same(t, res.State, next.State)
	assert.Equal(t, 3, next.Stats.Unchanged)
}

func TestBuild_FingerprintCoversOnlyIndexedFiles(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)

	res := build(t, root, nil)
	infos := make([]scanner.FileInfo, 0, len(res.State.Files))
	for _, e := range res.State.Files {
		infos = append(infos, e.Info)
	}
	assert.Equal(t, scanner.Fingerprint(infos), res.State.Fingerprint)
}

func TestBuildEntry_ReadFailureReportsFileIO(t *testing.T) {
	entry, warn := buildEntry(t.TempDir(), scanner.FileInfo{Path: "gone.go", Language: "go"}, chunk.NewLayeredExtractor())
	assert.Nil(t, entry)
	require.Error(t, warn)
	assert.Equal(t, cmerrors.ErrCodeFileIO, cmerrors.GetCode(warn))
}

func TestBuild_EmptyTree(t *testing.T) {
	res := build(t, t.TempDir(), nil)
	assert.Zero(t, res.State.TotalDocs())
	assert.Zero(t, res.State.AvgDocLength())
}

func TestFieldFreq_Weighted(t *testing.T) {
	f := FieldFreq{Filename: 1, Symbols: 2, Body: 3}
	assert.InDelta(t, 5.0+6.0+3.0, f.Weighted(), 1e-9)
}
