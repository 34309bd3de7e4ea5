package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scanPaths(t *testing.T, root string, opts Options) []string {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	opts.Root = root
	res, err := s.Scan(context.Background(), opts)
	require.NoError(t, err)
	paths := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestScan_SortedAndComplete(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zeta.go", "package zeta")
	writeFile(t, root, "alpha/one.go", "package alpha")
	writeFile(t, root, "beta.go", "package beta")

	paths := scanPaths(t, root, Options{})
	assert.Equal(t, []string{"alpha/one.go", "beta.go", "zeta.go"}, paths)
}

func TestScan_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\nbuild/\n")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "debug.log", "noise")
	writeFile(t, root, "build/out.txt", "artifact")

	paths := scanPaths(t, root, Options{})
	assert.Equal(t, []string{".gitignore", "main.go"}, paths)
}

func TestScan_NestedGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/.gitignore", "secret.txt\n")
	writeFile(t, root, "sub/secret.txt", "hidden")
	writeFile(t, root, "sub/open.go", "package sub")
	writeFile(t, root, "secret.txt", "visible at root")

	paths := scanPaths(t, root, Options{})
	assert.Contains(t, paths, "secret.txt")
	assert.Contains(t, paths, "sub/open.go")
	assert.NotContains(t, paths, "sub/secret.txt")
}

func TestScan_SkipsBinaryAndOversized(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.go", "package ok")
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0x7f, 0x00, 0x01, 0x02}, 0o644))
	writeFile(t, root, "big.txt", "this file is comfortably over the configured size cap")

	paths := scanPaths(t, root, Options{MaxFileSize: 16})
	assert.Equal(t, []string{"ok.go"}, paths)
}

func TestScan_SkipsDotGitAndDataDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config", "[core]")
	writeFile(t, root, ".codemap/index.bin", "data")
	writeFile(t, root, "main.go", "package main")

	paths := scanPaths(t, root, Options{})
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestScan_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.go", "package real")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.go"), filepath.Join(root, "link.go")))

	paths := scanPaths(t, root, Options{})
	assert.Equal(t, []string{"real.go"}, paths)
}

func TestScan_IncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a")
	writeFile(t, root, "src/b.py", "pass")
	writeFile(t, root, "docs/guide.md", "# guide")

	paths := scanPaths(t, root, Options{
		Include: []string{"src/**"},
		Exclude: []string{"*.py"},
	})
	assert.Equal(t, []string{"src/a.go"}, paths)
}

func TestScan_HashesContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "b.go", "package a")
	writeFile(t, root, "c.go", "package c")

	s, err := New()
	require.NoError(t, err)
	res, err := s.Scan(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, res.Files, 3)

	assert.Equal(t, res.Files[0].Hash, res.Files[1].Hash)
	assert.NotEqual(t, res.Files[0].Hash, res.Files[2].Hash)
	assert.Len(t, res.Files[0].Hash, 64)
}

func TestScan_RootNotADirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.go", "package x")

	s, err := New()
	require.NoError(t, err)
	_, err = s.Scan(context.Background(), Options{Root: filepath.Join(root, "file.go")})
	assert.Error(t, err)
}

func TestClassifyRole(t *testing.T) {
	cases := map[string]Role{
		"src/auth/login.go":          RoleImplementation,
		"src/auth/login_test.go":     RoleTest,
		"tests/helpers.py":           RoleTest,
		"web/__tests__/app.test.js":  RoleTest,
		"vendor/lib/util_test.go":    RoleGenerated,
		"api/service.pb.go":          RoleGenerated,
		"dist/bundle.min.js":         RoleGenerated,
		"README.md":                  RoleDocs,
		"docs/setup.py.txt":          RoleDocs,
		"config/app.yaml":            RoleConfig,
		".env.local":                 RoleConfig,
		"Makefile":                   RoleBuild,
		"Dockerfile":                 RoleBuild,
		"Cargo.toml":                 RoleBuild,
		"assets/logo.svg":            RoleOther,
		"internal/engine/engine.go":  RoleImplementation,
	}
	for path, want := range cases {
		assert.Equal(t, want, ClassifyRole(path), "path %s", path)
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("main.go"))
	assert.Equal(t, "typescript", DetectLanguage("app.tsx"))
	assert.Equal(t, "python", DetectLanguage("run.py"))
	assert.Equal(t, "", DetectLanguage("photo.png"))
}

func TestFingerprint_StableAcrossOrder(t *testing.T) {
	a := []FileInfo{{Path: "a.go", Size: 10, Hash: "h1"}, {Path: "b.go", Size: 20, Hash: "h2"}}
	b := []FileInfo{{Path: "b.go", Size: 20, Hash: "h2"}, {Path: "a.go", Size: 10, Hash: "h1"}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	c := []FileInfo{{Path: "a.go", Size: 10, Hash: "changed"}, {Path: "b.go", Size: 20, Hash: "h2"}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}
