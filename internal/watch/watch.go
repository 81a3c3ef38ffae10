// Package watch revalidates shaders when they, or the configuration
// governing them, change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"glslcheck/internal/config"
	"glslcheck/internal/driver"
	"glslcheck/internal/log"
)

// DefaultDebounce is how long the watcher waits for more events before
// revalidating.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Jobs     int
}

// Batch is the outcome of one revalidation round.
type Batch struct {
	// Full is set for the initial round and after configuration changes.
	Full    bool
	Results []*driver.FileResult
	// Removed lists shaders that disappeared since the previous round.
	Removed []string
}

// Watcher watches a directory tree and revalidates shaders on change.
type Watcher struct {
	root   string
	env    *driver.Env
	opts   Options
	fsw    *fsnotify.Watcher
	logger *slog.Logger

	pending       map[string]struct{}
	configChanged bool
}

// New creates a Watcher over root. env must already be prepared; its config
// loader is invalidated whenever a configuration file changes.
func New(root string, env *driver.Env, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		root:    root,
		env:     env,
		opts:    opts,
		fsw:     fsw,
		logger:  log.Module(env.Logger, "watch"),
		pending: make(map[string]struct{}),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run validates the whole tree once, then revalidates on change until ctx
// is done. onBatch is called from the Run goroutine after every round.
func (w *Watcher) Run(ctx context.Context, onBatch func(Batch)) error {
	if err := w.validateAll(ctx, onBatch); err != nil {
		return err
	}

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				timer.Reset(w.opts.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		case <-timer.C:
			if err := w.flush(ctx, onBatch); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}

// handle records ev and reports whether a revalidation is due.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Chmod == ev.Op {
		return false
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if skipDir(ev.Name, w.root) {
				return false
			}
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch directory", "dir", ev.Name, "err", err)
			}
			// файлы, созданные до регистрации каталога, событий не дадут
			w.configChanged = true
			return true
		}
	}
	switch {
	case config.IsConfigFile(ev.Name):
		w.logger.Debug("config changed", "path", ev.Name, "op", ev.Op.String())
		w.configChanged = true
		return true
	case driver.IsShaderFile(ev.Name):
		w.pending[ev.Name] = struct{}{}
		return true
	}
	return false
}

func (w *Watcher) flush(ctx context.Context, onBatch func(Batch)) error {
	if w.configChanged {
		w.configChanged = false
		clear(w.pending)
		w.env.Configs.Invalidate()
		return w.validateAll(ctx, onBatch)
	}
	if len(w.pending) == 0 {
		return nil
	}

	var changed, removed []string
	for path := range w.pending {
		if _, err := os.Stat(path); err != nil {
			removed = append(removed, path)
			continue
		}
		changed = append(changed, path)
	}
	clear(w.pending)
	sort.Strings(changed)
	sort.Strings(removed)

	w.logger.Info("revalidating", "files", len(changed), "removed", len(removed))
	results, err := driver.ValidateFiles(ctx, changed, w.env, w.opts.Jobs)
	if err != nil {
		return err
	}
	onBatch(Batch{Results: results, Removed: removed})
	return nil
}

func (w *Watcher) validateAll(ctx context.Context, onBatch func(Batch)) error {
	files, err := driver.ListShaderFiles(w.root)
	if err != nil {
		return err
	}
	w.logger.Info("validating tree", "root", w.root, "files", len(files))
	results, err := driver.ValidateFiles(ctx, files, w.env, w.opts.Jobs)
	if err != nil {
		return err
	}
	onBatch(Batch{Full: true, Results: results})
	return nil
}

// addTree watches dir and every directory below it that ListShaderFiles
// would descend into.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(path, w.root) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(path, root string) bool {
	if path == root {
		return false
	}
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
