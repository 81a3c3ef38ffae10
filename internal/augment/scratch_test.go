package augment

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

type fakeFS struct {
	written   map[string]string
	removed   []string
	removeErr error
	writeErr  error
}

func newFakeFS() *fakeFS {
	return &fakeFS{written: make(map[string]string)}
}

func (f *fakeFS) WriteFile(name string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written[name] = string(data)
	return nil
}

func (f *fakeFS) RemoveAll(path string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, path)
	delete(f.written, path)
	return nil
}

func TestToFileUnchangedReusesOriginal(t *testing.T) {
	fsys := newFakeFS()
	target, err := ToFile(fsys, Request{
		Path:       "/src/shader.frag",
		Text:       "#version 300 es\nvoid main(){}",
		ScratchDir: "/cache",
		AssetID:    "abc",
		Options:    Options{GLSLVersion: 110},
	})
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if target.Path != "/src/shader.frag" || target.LineOffset != 0 || target.State != ScratchUnused {
		t.Fatalf("unexpected target %+v", target)
	}
	if target.Temporary() {
		t.Fatal("unchanged file must not be temporary")
	}
	if len(fsys.written) != 0 {
		t.Fatalf("no scratch file expected, got %v", fsys.written)
	}
	if err := target.Cleanup(fsys); err != nil || len(fsys.removed) != 0 {
		t.Fatalf("Cleanup of unused scratch must be a no-op")
	}
}

func TestToFileWritesScratchWhenAugmented(t *testing.T) {
	fsys := newFakeFS()
	target, err := ToFile(fsys, Request{
		Path:       "/src/shaders/shader.frag",
		Text:       "void main(){}",
		ScratchDir: "/cache",
		AssetID:    "abc",
		Options:    Options{GLSLVersion: 110},
	})
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	wantPath := filepath.Join("/cache", "shader-abc.frag")
	if target.Path != wantPath {
		t.Fatalf("Path = %q, want %q", target.Path, wantPath)
	}
	if !target.Temporary() || target.LineOffset != 1 {
		t.Fatalf("unexpected target %+v", target)
	}
	if got := fsys.written[wantPath]; got != "#version 110 es\nvoid main(){}" {
		t.Fatalf("scratch content = %q", got)
	}

	if err := target.Cleanup(fsys); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if target.State != ScratchRemoved || len(fsys.removed) != 1 {
		t.Fatalf("expected scratch removal, state %s removed %v", target.State, fsys.removed)
	}
	// second cleanup is a no-op
	if err := target.Cleanup(fsys); err != nil || len(fsys.removed) != 1 {
		t.Fatal("Cleanup must be idempotent")
	}
}

func TestToFileWriteError(t *testing.T) {
	fsys := newFakeFS()
	fsys.writeErr = errors.New("disk full")
	_, err := ToFile(fsys, Request{Path: "a.vert", Text: "void main(){}", ScratchDir: "/cache"})
	if err == nil || !errors.Is(err, fsys.writeErr) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestCleanupErrorKeepsState(t *testing.T) {
	fsys := newFakeFS()
	target, err := ToFile(fsys, Request{Path: "a.vert", Text: "void main(){}", ScratchDir: "/cache", AssetID: "x"})
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	fsys.removeErr = errors.New("busy")
	if err := target.Cleanup(fsys); err == nil {
		t.Fatal("expected cleanup error to be reported")
	}
	if target.State != ScratchWritten {
		t.Fatalf("state = %s, want written", target.State)
	}
}

func TestOSFSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fsys := OSFS{}
	target, err := ToFile(fsys, Request{
		Path:       filepath.Join(dir, "water.vert"),
		Text:       "void main(){}",
		ScratchDir: filepath.Join(dir, "scratch", "nested"),
	})
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if _, err := os.Stat(target.Path); err != nil {
		t.Fatalf("scratch file missing: %v", err)
	}
	if filepath.Ext(target.Path) != ".vert" {
		t.Fatalf("extension not preserved: %s", target.Path)
	}
	if err := target.Cleanup(fsys); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(target.Path); !os.IsNotExist(err) {
		t.Fatalf("scratch file still present: %v", err)
	}
}

func TestAssetIDStable(t *testing.T) {
	a := AssetID("shaders/water.frag")
	b := AssetID("shaders/water.frag")
	c := AssetID("shaders/sky.frag")
	if a != b {
		t.Fatal("AssetID must be stable")
	}
	if a == c {
		t.Fatal("AssetID must differ between files")
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(a) {
		t.Fatalf("unexpected AssetID format %q", a)
	}
}

func TestScratchPath(t *testing.T) {
	got := ScratchPath("/tmp/x", "/a/b/my.shader.frag", "42")
	if want := filepath.Join("/tmp/x", "my.shader-42.frag"); got != want {
		t.Fatalf("ScratchPath = %q, want %q", got, want)
	}
}
