package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"glslcheck/internal/driver"
	"glslcheck/internal/glslang"
)

type passValidator struct{}

func (passValidator) Run(ctx context.Context, file, extraArgs string) (glslang.Output, error) {
	return glslang.Output{Stdout: file + "\n"}, nil
}

func newWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	env := &driver.Env{Validator: passValidator{}, ScratchDir: t.TempDir()}
	env.Prepare(root)
	w, err := New(root, env, Options{Debounce: 100 * time.Millisecond, Jobs: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestHandleClassifiesEvents(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, root)

	tests := []struct {
		name   string
		ev     fsnotify.Event
		due    bool
		config bool
	}{
		{"shader write", fsnotify.Event{Name: filepath.Join(root, "a.frag"), Op: fsnotify.Write}, true, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(root, "b.frag"), Op: fsnotify.Chmod}, false, false},
		{"unrelated file", fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Write}, false, false},
		{"config write", fsnotify.Event{Name: filepath.Join(root, "glslcheck.toml"), Op: fsnotify.Write}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.configChanged = false
			clear(w.pending)
			if got := w.handle(tt.ev); got != tt.due {
				t.Fatalf("handle() = %v, want %v", got, tt.due)
			}
			if w.configChanged != tt.config {
				t.Fatalf("configChanged = %v, want %v", w.configChanged, tt.config)
			}
		})
	}
}

func TestSkipDir(t *testing.T) {
	root := "/proj"
	cases := map[string]bool{
		"/proj":                  false,
		"/proj/shaders":          false,
		"/proj/.git":             true,
		"/proj/web/node_modules": true,
	}
	for path, want := range cases {
		if got := skipDir(path, root); got != want {
			t.Errorf("skipDir(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestRunRevalidatesOnChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.frag"), "#version 300 es\nvoid main(){}\n")
	w := newWatcher(t, root)

	batches := make(chan Batch, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(b Batch) { batches <- b }) }()

	next := func() Batch {
		t.Helper()
		select {
		case b := <-batches:
			return b
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a batch")
		}
		return Batch{}
	}

	first := next()
	if !first.Full || len(first.Results) != 1 {
		t.Fatalf("initial batch = %+v", first)
	}

	writeFile(t, filepath.Join(root, "b.frag"), "#version 300 es\nvoid main(){}\n")
	b := next()
	if b.Full || len(b.Results) != 1 || b.Results[0].Path != filepath.Join(root, "b.frag") {
		t.Fatalf("change batch = %+v", b)
	}

	writeFile(t, filepath.Join(root, "glslcheck.toml"), "glslVersion = 300\n")
	full := next()
	if !full.Full || len(full.Results) != 2 {
		t.Fatalf("config batch = %+v", full)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
