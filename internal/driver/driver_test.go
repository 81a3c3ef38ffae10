package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"glslcheck/internal/augment"
	"glslcheck/internal/diag"
	"glslcheck/internal/glslang"
	"glslcheck/internal/pipeline"
)

// fakeValidator reports an error for every line containing BAD and a
// warning for every line containing OLD, the way glslangValidator does.
type fakeValidator struct {
	mu    sync.Mutex
	calls []string
	texts []string

	extraStdout string
	stderr      string
	forceFail   bool
	startErr    error
}

func (f *fakeValidator) Run(ctx context.Context, file, extraArgs string) (glslang.Output, error) {
	if _, err := glslang.Args(file, extraArgs); err != nil {
		return glslang.Output{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return glslang.Output{}, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, file)
	f.texts = append(f.texts, string(data))
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return glslang.Output{Failed: true, ExitErr: err}, err
	}
	if f.startErr != nil {
		return glslang.Output{Failed: true, ExitErr: f.startErr}, f.startErr
	}

	var b strings.Builder
	b.WriteString(file + "\n")
	failed := f.forceFail
	for i, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "OLD") {
			fmt.Fprintf(&b, "WARNING: %s:%d: 'OLD' : deprecated\n", file, i+1)
		}
		if strings.Contains(line, "BAD") {
			fmt.Fprintf(&b, "ERROR: %s:%d: 'BAD' : undeclared identifier\n", file, i+1)
			failed = true
		}
	}
	if failed && !f.forceFail {
		b.WriteString("ERROR: 1 compilation errors.  No code generated.\n")
	}
	b.WriteString(f.extraStdout)

	out := glslang.Output{Stdout: b.String(), Stderr: f.stderr, Failed: failed}
	if failed {
		out.ExitErr = errors.New("exit status 2")
	}
	return out, nil
}

func (f *fakeValidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func writeShader(t *testing.T, path, text string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEnv(t *testing.T, root string, v glslang.Validator) *Env {
	t.Helper()
	env := &Env{
		Validator:   v,
		ValidatorID: "fake",
		ScratchDir:  filepath.Join(t.TempDir(), "scratch"),
	}
	env.Prepare(root)
	return env
}

func TestValidateCleanFileUsesOriginal(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "clean.frag"), "#version 300 es\nvoid main(){}\n")
	v := &fakeValidator{}
	res, err := ValidateFile(context.Background(), path, newTestEnv(t, root, v))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if !res.Result.Empty() || res.Failed || len(res.Logs) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if v.calls[0] != path {
		t.Fatalf("validator ran on %q, want original %q", v.calls[0], path)
	}
	if res.Status() != pipeline.StatusDone {
		t.Fatalf("status = %s", res.Status())
	}
}

func TestValidateMissingVersionMapsLinesAndCleansScratch(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "broken.vert"), "void main(){\n  vec3 a;\n  BAD;\n}")
	v := &fakeValidator{}
	env := newTestEnv(t, root, v)

	res, err := ValidateFile(context.Background(), path, env)
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	scratch := v.calls[0]
	if scratch == path || filepath.Dir(scratch) != env.ScratchDir {
		t.Fatalf("expected scratch file in %s, got %s", env.ScratchDir, scratch)
	}
	if !strings.HasPrefix(v.texts[0], "#version 110 es\n") {
		t.Fatalf("validator saw %q", v.texts[0])
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatalf("scratch file not removed: %v", err)
	}

	if res.LineOffset != 1 || !res.Failed {
		t.Fatalf("unexpected result header %+v", res)
	}
	if len(res.Result.Errors) != 1 {
		t.Fatalf("errors = %+v", res.Result.Errors)
	}
	d := res.Result.Errors[0]
	if d.File != path || d.Code != diag.GLSLValidationError {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Highlights) != 1 || d.Highlights[0].Line != 3 || d.Highlights[0].Message != "'BAD' : undeclared identifier" {
		t.Fatalf("highlights = %+v", d.Highlights)
	}
	if d.Message != "GLSL validation failed\nERROR: 1 compilation errors." {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestValidateIntegrationFromConfig(t *testing.T) {
	root := t.TempDir()
	writeShader(t, filepath.Join(root, "glslcheck.toml"), "threeIntegration = true\n")
	path := writeShader(t, filepath.Join(root, "fx", "water.frag"),
		"#version 300 es\nprecision mediump float;\nvoid main(){\n  BAD;\n  OLD;\n}\n")
	v := &fakeValidator{}

	res, err := ValidateFile(context.Background(), path, newTestEnv(t, root, v))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if res.LineOffset < 2 {
		t.Fatalf("expected integration snippet, offset = %d", res.LineOffset)
	}
	if !strings.Contains(v.texts[0], "cameraPosition") {
		t.Fatalf("three snippet missing from %q", v.texts[0])
	}
	if got := res.Result.Errors[0].Highlights[0].Line; got != 4 {
		t.Fatalf("error line = %d, want 4", got)
	}
	if got := res.Result.Warnings[0].Highlights[0].Line; got != 5 {
		t.Fatalf("warning line = %d, want 5", got)
	}
}

func TestValidateConfigErrorSkipsValidator(t *testing.T) {
	root := t.TempDir()
	writeShader(t, filepath.Join(root, "glslcheck.json"), `{"csmIntegration": "yes"}`)
	path := writeShader(t, filepath.Join(root, "a.frag"), "void main(){}")
	v := &fakeValidator{}

	res, err := ValidateFile(context.Background(), path, newTestEnv(t, root, v))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if v.callCount() != 0 {
		t.Fatal("validator must not run on config errors")
	}
	d := res.Result.Errors[0]
	if d.Code != diag.CfgInvalidOption || !strings.HasPrefix(d.Message, "glslcheck config - csmIntegration must be a boolean") {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

// countingFS records scratch writes on top of the real filesystem.
type countingFS struct {
	augment.OSFS
	mu     sync.Mutex
	writes int
}

func (c *countingFS) WriteFile(name string, data []byte) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.OSFS.WriteFile(name, data)
}

func TestValidateBadCommandArgumentsBeforeAugment(t *testing.T) {
	root := t.TempDir()
	writeShader(t, filepath.Join(root, "glslcheck.toml"), "commandArguments = '-S \"frag'\n")
	// no #version: a scratch copy would be needed
	path := writeShader(t, filepath.Join(root, "a.frag"), "void main(){}")
	v := &fakeValidator{}
	fsys := &countingFS{}
	env := newTestEnv(t, root, v)
	env.FS = fsys

	res, err := ValidateFile(context.Background(), path, env)
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if len(res.Result.Errors) != 1 || res.Result.Errors[0].Code != diag.CfgInvalidOption {
		t.Fatalf("expected config diagnostic, got %+v", res.Result)
	}
	if !strings.Contains(res.Result.Errors[0].Message, "commandArguments must be a valid argument list") {
		t.Fatalf("unexpected message %q", res.Result.Errors[0].Message)
	}
	if fsys.writes != 0 || v.callCount() != 0 {
		t.Fatalf("config error must stop before augmentation: writes=%d calls=%d", fsys.writes, v.callCount())
	}
}

func TestValidateExcluded(t *testing.T) {
	root := t.TempDir()
	writeShader(t, filepath.Join(root, "glslcheck.yaml"), "exclude:\n  - vendor/**\n")
	path := writeShader(t, filepath.Join(root, "vendor", "lib", "x.frag"), "BAD")
	v := &fakeValidator{}

	res, err := ValidateFile(context.Background(), path, newTestEnv(t, root, v))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if !res.Skipped || v.callCount() != 0 || res.Status() != pipeline.StatusSkipped {
		t.Fatalf("expected skipped file, got %+v", res)
	}
}

func TestValidateFailureWithoutRecords(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "a.frag"), "#version 300 es\nvoid main(){}")
	v := &fakeValidator{forceFail: true, extraStdout: "internal validator trouble\n"}

	res, err := ValidateFile(context.Background(), path, newTestEnv(t, root, v))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if len(res.Result.Errors) != 1 {
		t.Fatalf("errors = %+v", res.Result.Errors)
	}
	d := res.Result.Errors[0]
	if d.Code != diag.GLSLValidatorFailed || d.HasHighlights() {
		t.Fatalf("expected file-level failure, got %+v", d)
	}
	if d.Message != "GLSL validation failed\ninternal validator trouble" {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestValidateUnparsedSuccessIsLogged(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "a.frag"), "#version 300 es\nvoid main(){}")
	v := &fakeValidator{extraStdout: "Linked fragment stage\n", stderr: "odd note\n"}

	res, err := ValidateFile(context.Background(), path, newTestEnv(t, root, v))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if !res.Result.Empty() {
		t.Fatalf("expected no diagnostics, got %+v", res.Result)
	}
	if len(res.Logs) != 2 {
		t.Fatalf("logs = %+v", res.Logs)
	}
	if res.Logs[0].Level != int(slog.LevelInfo) || !strings.Contains(res.Logs[0].Message, "Linked fragment stage") {
		t.Fatalf("stdout log = %+v", res.Logs[0])
	}
	if res.Logs[1].Level != int(slog.LevelError) || res.Logs[1].Message != "odd note" {
		t.Fatalf("stderr log = %+v", res.Logs[1])
	}
}

func TestValidateStartFailure(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "a.frag"), "void main(){}")
	v := &fakeValidator{startErr: errors.New("fork/exec glslangValidator: permission denied")}
	env := newTestEnv(t, root, v)

	res, err := ValidateFile(context.Background(), path, env)
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	d := res.Result.Errors[0]
	if d.Code != diag.SysValidatorIO || !strings.Contains(d.Message, "permission denied") {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if _, err := os.Stat(v.calls[0]); !os.IsNotExist(err) {
		t.Fatal("scratch file must be removed on failure")
	}
}

func TestValidateCancelled(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "a.frag"), "void main(){}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ValidateFile(ctx, path, newTestEnv(t, root, &fakeValidator{})); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateUsesCache(t *testing.T) {
	root := t.TempDir()
	path := writeShader(t, filepath.Join(root, "a.frag"), "void main(){\n BAD;\n}")
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	v := &fakeValidator{}
	env := newTestEnv(t, root, v)
	env.Cache = cache

	first, err := ValidateFile(context.Background(), path, env)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := ValidateFile(context.Background(), path, env)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v.callCount() != 1 {
		t.Fatalf("validator calls = %d, want 1", v.callCount())
	}
	if !second.Cached || first.Cached {
		t.Fatal("expected only the second run to hit the cache")
	}
	if second.Result.Errors[0].Highlights[0].Line != first.Result.Errors[0].Highlights[0].Line {
		t.Fatal("cached result differs")
	}

	// content change is a miss
	writeShader(t, path, "void main(){\n\n BAD;\n}")
	third, err := ValidateFile(context.Background(), path, env)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Cached || third.Result.Errors[0].Highlights[0].Line != 3 {
		t.Fatalf("unexpected third result %+v", third)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	fourth, _ := ValidateFile(context.Background(), path, env)
	if fourth.Cached {
		t.Fatal("DropAll must clear results")
	}
}

func TestValidateDirParallel(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 12; i++ {
		body := "void main(){}"
		if i%3 == 0 {
			body = "void main(){\n BAD;\n}"
		}
		writeShader(t, filepath.Join(root, "s", fmt.Sprintf("f%02d.frag", i)), body)
	}
	writeShader(t, filepath.Join(root, "node_modules", "x.frag"), "BAD")
	writeShader(t, filepath.Join(root, ".hidden", "x.frag"), "BAD")
	writeShader(t, filepath.Join(root, "readme.md"), "BAD")

	var rec pipeline.Recorder
	v := &fakeValidator{}
	env := newTestEnv(t, root, v)
	env.Progress = &rec

	results, err := ValidateDir(context.Background(), root, env, 4)
	if err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
	if len(results) != 12 || v.callCount() != 12 {
		t.Fatalf("results = %d, calls = %d", len(results), v.callCount())
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Path >= results[i].Path {
			t.Fatal("results must be sorted by path")
		}
	}
	sum := Summarize(results)
	if sum.Failed != 4 || sum.Passed != 8 || sum.Errors != 4 {
		t.Fatalf("summary = %+v", sum)
	}

	terminal := 0
	for _, evt := range rec.Events() {
		if evt.Status.Terminal() {
			terminal++
		}
	}
	if terminal != 12 {
		t.Fatalf("terminal events = %d, want 12", terminal)
	}

	bag := Collect(results, 0, false)
	if bag.Len() != 4 || !bag.HasErrors() {
		t.Fatalf("bag = %d items", bag.Len())
	}
}

func TestComposeMessage(t *testing.T) {
	cases := []struct {
		name   string
		out    glslang.Output
		runErr error
		want   string
	}{
		{"failed with output", glslang.Output{Stdout: "a", Stderr: "b", Failed: true}, nil, "GLSL validation failed\na\nb"},
		{"failed stderr only", glslang.Output{Stderr: "b", Failed: true}, nil, "GLSL validation failed\n\nb"},
		{"failed silent", glslang.Output{Failed: true, ExitErr: errors.New("exit status 1")}, nil, "exit status 1"},
		{"start error", glslang.Output{Failed: true}, errors.New("no such file"), "no such file"},
		{"failed nothing", glslang.Output{Failed: true}, nil, "Unknown error"},
		{"passed", glslang.Output{Stdout: "a"}, nil, "GLSL validation passed, with warnings\na"},
		{"passed empty", glslang.Output{}, nil, "GLSL validation passed, with warnings"},
	}
	for _, tc := range cases {
		if got := ComposeMessage(tc.out, tc.runErr); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
