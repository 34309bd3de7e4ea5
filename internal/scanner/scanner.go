// Package scanner discovers indexable files under a project root.
//
// Traversal is deterministic: results come back sorted by path. Files
// that cannot be read are reported as warnings and skipped, never
// aborting the scan. Binary files, symlinks, and anything matched by
// .gitignore or the configured excludes are skipped.
package scanner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
	"github.com/codemap-dev/codemap/internal/gitignore"
)

// DefaultMaxFileSize is the largest file the scanner will admit.
const DefaultMaxFileSize = 10 * 1024 * 1024

// gitignoreCacheSize bounds the per-directory matcher cache.
const gitignoreCacheSize = 1000

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 8192

// alwaysSkipDirs are never descended into regardless of gitignore.
var alwaysSkipDirs = map[string]bool{
	".git":         true,
	".codemap":     true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
}

// Options configures a scan.
type Options struct {
	// Root is the project root directory.
	Root string

	// Include restricts the scan to matching paths when non-empty.
	Include []string

	// Exclude drops matching paths, gitignore syntax.
	Exclude []string

	// MaxFileSize in bytes; 0 means DefaultMaxFileSize.
	MaxFileSize int64

	// Workers for concurrent hashing; 0 means NumCPU.
	Workers int
}

// Result is the outcome of a scan.
type Result struct {
	// Files is sorted by Path ascending.
	Files []FileInfo

	// Warnings are per-file errors that did not abort the scan.
	Warnings []error
}

// Scanner discovers indexable files. Safe for reuse across scans.
type Scanner struct {
	matcherCache *lru.Cache[string, *gitignore.Matcher]
	mu           sync.Mutex
}

// New creates a Scanner.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{matcherCache: cache}, nil
}

// Scan walks the tree under opts.Root and returns the discovered files.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, cmerrors.FileIOError(opts.Root, err)
	}
	if !info.IsDir() {
		return nil, cmerrors.FileIOError(opts.Root, os.ErrInvalid)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	include := gitignore.NewMatcher(opts.Include)
	exclude := gitignore.NewMatcher(opts.Exclude)

	res := &Result{}
	var candidates []FileInfo

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			res.Warnings = append(res.Warnings, cmerrors.FileIOError(relOrSelf(root, path), err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := relOrSelf(root, path)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if alwaysSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if exclude.Match(rel, true) || s.ignored(root, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are skipped to avoid cycles and double indexing.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if exclude.Match(rel, false) || s.ignored(root, rel, false) {
			return nil
		}
		if include.Len() > 0 && !include.Match(rel, false) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			res.Warnings = append(res.Warnings, cmerrors.FileIOError(rel, err))
			return nil
		}
		if fi.Size() > maxSize {
			slog.Debug("skipping oversized file", "path", rel, "size", fi.Size())
			return nil
		}

		candidates = append(candidates, FileInfo{
			Path:     rel,
			Size:     fi.Size(),
			Language: DetectLanguage(rel),
			Role:     ClassifyRole(rel),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})

	if err := s.hashAll(ctx, root, candidates, res, opts.Workers); err != nil {
		return nil, err
	}
	return res, nil
}

// hashAll computes content hashes concurrently, dropping binary files
// and recording read failures as warnings. Output order stays sorted.
func (s *Scanner) hashAll(ctx context.Context, root string, candidates []FileInfo, res *Result, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type slot struct {
		info FileInfo
		keep bool
		warn error
	}
	slots := make([]slot, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fi := candidates[i]
			hash, binary, err := hashFile(filepath.Join(root, fi.Path))
			if err != nil {
				slots[i] = slot{warn: cmerrors.FileIOError(fi.Path, err)}
				return nil
			}
			if binary {
				return nil
			}
			fi.Hash = hash
			slots[i] = slot{info: fi, keep: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, sl := range slots {
		if sl.warn != nil {
			res.Warnings = append(res.Warnings, sl.warn)
		}
		if sl.keep {
			res.Files = append(res.Files, sl.info)
		}
	}
	return nil
}

// hashFile returns the hex SHA-256 of the file, detecting binaries by
// a NUL byte in the leading bytes.
func hashFile(path string) (hash string, binary bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	head := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", false, err
	}
	head = head[:n]
	if bytes.IndexByte(head, 0) >= 0 {
		return "", true, nil
	}

	h := sha256.New()
	h.Write(head)
	if _, err := io.Copy(h, f); err != nil {
		return "", false, err
	}
	return hex.EncodeToString(h.Sum(nil)), false, nil
}

// ignored checks every .gitignore from the root down to the file's
// directory. Matchers are cached per directory.
func (s *Scanner) ignored(root, rel string, isDir bool) bool {
	dirs := ancestorDirs(rel)
	for _, dir := range dirs {
		m := s.matcherFor(filepath.Join(root, dir))
		if m == nil {
			continue
		}
		sub := rel
		if dir != "" {
			sub = strings.TrimPrefix(rel, dir+"/")
		}
		if m.Match(sub, isDir) {
			return true
		}
	}
	return false
}

// matcherFor loads and caches the .gitignore matcher for one directory.
// Returns nil when the directory has no patterns.
func (s *Scanner) matcherFor(dir string) *gitignore.Matcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.matcherCache.Get(dir); ok {
		return m
	}
	m, err := gitignore.LoadFile(filepath.Join(dir, ".gitignore"))
	if err != nil || m.Len() == 0 {
		m = nil
	}
	s.matcherCache.Add(dir, m)
	return m
}

// ancestorDirs returns "", then each ancestor directory of rel.
// For "a/b/c.go" it yields ["", "a", "a/b"].
func ancestorDirs(rel string) []string {
	dirs := []string{""}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := 1; i < len(parts); i++ {
		dirs = append(dirs, strings.Join(parts[:i], "/"))
	}
	return dirs
}

func relOrSelf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
