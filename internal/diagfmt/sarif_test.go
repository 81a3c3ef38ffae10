package diagfmt

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
)

func TestSarifStructure(t *testing.T) {
	bag, fs := testFixture()
	var buf bytes.Buffer
	err := Sarif(&buf, bag, fs, SarifRunMeta{ToolVersion: "1.2.3", InvocationArgs: []string{"check", "."}, PathMode: PathModeRelative})
	if err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "glslcheck" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 2 || run.Tool.Driver.Rules[0].ID != "GLSL1001" {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatal("errors present, execution must not be successful")
	}
	if len(run.Results) != 2 {
		t.Fatalf("results = %d", len(run.Results))
	}

	var lineResult *sarifResult
	for i := range run.Results {
		if run.Results[i].RuleID == "GLSL1001" {
			lineResult = &run.Results[i]
		}
	}
	if lineResult == nil {
		t.Fatal("missing line result")
	}
	loc := lineResult.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "shaders/water.frag" || loc.Region == nil || loc.Region.StartLine != 3 {
		t.Fatalf("location = %+v", loc)
	}
	if loc.Region.Snippet == nil || loc.Region.Snippet.Text != "  BAD;" {
		t.Fatalf("snippet = %+v", loc.Region.Snippet)
	}
	if lineResult.Level != "error" || lineResult.Properties["validatorOutput"] == "" {
		t.Fatalf("result = %+v", lineResult)
	}
}

func TestRuleName(t *testing.T) {
	bag, _ := testFixture()
	if got := ruleName(bag.Items()[0].Code); got != "GLSLValidationFailed" {
		t.Fatalf("ruleName = %q", got)
	}
}
