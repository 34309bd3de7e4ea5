// Package watch reindexes the project when files change on disk.
//
// Filesystem events are debounced so a burst of writes (editor saves,
// git checkout) triggers one rebuild. New directories are added to the
// watch set as they appear.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codemap-dev/codemap/internal/config"
	"github.com/codemap-dev/codemap/pkg/engine"
)

// DefaultDebounce is the quiet period before a rebuild fires.
const DefaultDebounce = 500 * time.Millisecond

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":            true,
	config.DataDirName: true,
	"node_modules":    true,
	"vendor":          true,
}

// Watcher rebuilds the index when the tree changes.
type Watcher struct {
	root     string
	eng      *engine.Engine
	debounce time.Duration

	// OnRebuild, when set, observes each rebuild result.
	OnRebuild func(*engine.BuildResult, error)
}

// New creates a Watcher for the project root.
func New(root string, eng *engine.Engine, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{root: root, eng: eng, debounce: debounce}
}

// Run watches until the context is cancelled. The initial build runs
// before the first event.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	w.rebuild(ctx)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.skip(ev.Name) {
				continue
			}
			// New directories need watching too.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addTree(fw, ev.Name)
				}
			}
			slog.Debug("fs event", "op", ev.Op.String(), "path", ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.rebuild(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	res, err := w.eng.BuildIndex(ctx)
	if err != nil {
		slog.Error("rebuild failed", "error", err)
	}
	if w.OnRebuild != nil {
		w.OnRebuild(res, err)
	}
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Debug("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// skip filters events under unwatched directories.
func (w *Watcher) skip(name string) bool {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}
