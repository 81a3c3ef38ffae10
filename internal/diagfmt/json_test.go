package diagfmt

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
)

func TestBuildDiagnosticsOutput(t *testing.T) {
	bag, fs := testFixture()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{
		PathMode:      PathModeRelative,
		IncludeSource: true,
		Files:         []FileStatus{{Path: waterPath, Status: "error", LineOffset: 1}},
	})

	if out.Count != 2 || out.Errors != 2 || out.Warnings != 0 {
		t.Fatalf("unexpected counters %+v", out)
	}
	if out.Files[0].Path != "shaders/water.frag" {
		t.Fatalf("file status path = %q", out.Files[0].Path)
	}
	water := out.Diagnostics[1]
	if water.File != "shaders/water.frag" || water.Code != "GLSL1001" || water.Severity != "ERROR" {
		t.Fatalf("unexpected diagnostic %+v", water)
	}
	if len(water.Highlights) != 1 || water.Highlights[0].Line != 3 || water.Highlights[0].Source != "  BAD;" {
		t.Fatalf("unexpected highlights %+v", water.Highlights)
	}
	if len(out.Diagnostics[0].Highlights) != 0 {
		t.Fatal("file-level diagnostic must have no highlights")
	}
}

func TestBuildDiagnosticsOutputMax(t *testing.T) {
	bag, fs := testFixture()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("Max not applied: %+v", out)
	}
}

func TestJSONIsValid(t *testing.T) {
	bag, fs := testFixture()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded["count"].(float64) != 2 {
		t.Fatalf("count = %v", decoded["count"])
	}
}
