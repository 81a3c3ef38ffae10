package augment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FS is the filesystem capability used for scratch files.
type FS interface {
	WriteFile(name string, data []byte) error
	RemoveAll(path string) error
}

// OSFS implements FS on the local filesystem.
type OSFS struct{}

func (OSFS) WriteFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o600)
}

func (OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// ScratchState tracks the lifecycle of the augmented copy of a file.
type ScratchState uint8

const (
	// ScratchUnused means the original file is validated directly.
	ScratchUnused ScratchState = iota
	// ScratchWritten means a scratch file exists and must be removed.
	ScratchWritten
	// ScratchRemoved means the scratch file has been cleaned up.
	ScratchRemoved
)

func (s ScratchState) String() string {
	switch s {
	case ScratchUnused:
		return "unused"
	case ScratchWritten:
		return "written"
	case ScratchRemoved:
		return "removed"
	}
	return "unknown"
}

// Request describes one file to prepare for validation.
type Request struct {
	Path       string // original file path
	Text       string // original text
	ScratchDir string
	AssetID    string // unique per asset, see AssetID
	Options    Options
}

// Target is the file the validator should run on.
type Target struct {
	Path       string
	LineOffset int
	State      ScratchState
	Augmented  Augmented
}

// Temporary reports whether Path points at a scratch file.
func (t *Target) Temporary() bool {
	return t.State == ScratchWritten
}

// ToFile augments req.Text and writes a scratch file iff the line offset is non-zero.
func ToFile(fsys FS, req Request) (Target, error) {
	aug := Augment(req.Text, StageFromPath(req.Path), req.Options)
	if !aug.Changed() {
		return Target{Path: req.Path, State: ScratchUnused, Augmented: aug}, nil
	}

	id := req.AssetID
	if id == "" {
		id = AssetID(req.Path)
	}
	path := ScratchPath(req.ScratchDir, req.Path, id)
	if err := fsys.WriteFile(path, []byte(aug.Text)); err != nil {
		return Target{}, fmt.Errorf("failed to write augmented copy of %s: %w", req.Path, err)
	}
	return Target{
		Path:       path,
		LineOffset: aug.LineOffset,
		State:      ScratchWritten,
		Augmented:  aug,
	}, nil
}

// Cleanup removes the scratch file, if any. The error is informational only.
func (t *Target) Cleanup(fsys FS) error {
	if t.State != ScratchWritten {
		return nil
	}
	if err := fsys.RemoveAll(t.Path); err != nil {
		return err
	}
	t.State = ScratchRemoved
	return nil
}

// ScratchPath builds <dir>/<name>-<id><ext> for the original path.
func ScratchPath(dir, original, id string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+"-"+id+ext)
}

// AssetID returns a stable identifier for the file at path.
func AssetID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(filepath.ToSlash(path)))
}
