package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Find looks for a config file from startDir upwards. The search stops after
// root when startDir lies inside it, otherwise at the filesystem root.
func Find(startDir, root string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	stop := ""
	if root != "" {
		if absRoot, err := filepath.Abs(root); err == nil && within(dir, absRoot) {
			stop = absRoot
		}
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, true, nil
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		if dir == stop {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type entry struct {
	cfg *Config
	err error
}

// Loader resolves and caches configs per directory. Safe for concurrent use.
type Loader struct {
	root string

	mu     sync.Mutex
	byDir  map[string]string // dir -> config path, "" for defaults
	byFile map[string]entry
}

// NewLoader creates a loader bounded by the project root.
func NewLoader(root string) *Loader {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Loader{
		root:   root,
		byDir:  make(map[string]string),
		byFile: make(map[string]entry),
	}
}

// Root returns the project root.
func (l *Loader) Root() string {
	return l.root
}

// ForFile returns the config that applies to the shader at path.
func (l *Loader) ForFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return l.ForDir(filepath.Dir(abs))
}

// ForDir returns the config that applies to files in dir.
func (l *Loader) ForDir(dir string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfgPath, ok := l.byDir[dir]
	if !ok {
		found, hit, err := Find(dir, l.root)
		if err != nil {
			return nil, err
		}
		if hit {
			cfgPath = found
		}
		l.byDir[dir] = cfgPath
	}
	if cfgPath == "" {
		return Default(), nil
	}

	e, ok := l.byFile[cfgPath]
	if !ok {
		e.cfg, e.err = LoadFile(cfgPath)
		l.byFile[cfgPath] = e
	}
	return e.cfg, e.err
}

// Invalidate drops every cached lookup, e.g. after a config file changed.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.byDir = make(map[string]string)
	l.byFile = make(map[string]entry)
	l.mu.Unlock()
}

// IsConfigFile reports whether path has one of the recognised config names.
func IsConfigFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range FileNames {
		if base == name {
			return true
		}
	}
	return false
}
