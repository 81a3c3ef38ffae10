package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "file.frag")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(baseDir, "nested", "file.vert")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := "nested/file.vert"
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestFormatPathModes(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "shaders", "water.frag")

	if got := FormatPath(path, "basename", ""); got != "water.frag" {
		t.Errorf("basename = %q", got)
	}
	if got := FormatPath(path, "relative", base); got != "shaders/water.frag" {
		t.Errorf("relative = %q", got)
	}
	if got := FormatPath("shaders/water.frag", "auto", ""); got != "shaders/water.frag" {
		t.Errorf("auto short = %q", got)
	}
	abs := FormatPath("water.frag", "absolute", "")
	if !filepath.IsAbs(filepath.FromSlash(abs)) {
		t.Errorf("absolute = %q", abs)
	}
}
