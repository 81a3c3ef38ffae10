package diagfmt

import (
	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

const waterPath = "/proj/shaders/water.frag"

func testFixture() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSetWithBase("/proj")
	fs.AddVirtual(waterPath, []byte("#version 300 es\nvoid main(){\n  BAD;\n}\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity:   diag.SevError,
		Code:       diag.GLSLValidationError,
		File:       waterPath,
		Message:    "GLSL validation failed\nERROR: 1 compilation errors.",
		Highlights: []diag.Highlight{{Line: 3, Message: "'BAD' : undeclared identifier"}},
	})
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.GLSLValidatorFailed,
		File:     "/proj/shaders/sky.vert",
		Message:  "GLSL validation failed\nsegfault_in_validator",
	})
	bag.Sort()
	return bag, fs
}
