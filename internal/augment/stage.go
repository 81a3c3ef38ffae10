package augment

import (
	"path/filepath"
	"strings"
)

// Stage is the shader pipeline stage implied by a file extension.
type Stage uint8

const (
	StageUnknown Stage = iota
	StageVertex
	StageFragment
	StageGeometry
	StageCompute
	StageTessControl
	StageTessEval
)

var stageByExt = map[string]Stage{
	".vert": StageVertex,
	".frag": StageFragment,
	".geom": StageGeometry,
	".comp": StageCompute,
	".tesc": StageTessControl,
	".tese": StageTessEval,
}

// StageFromPath maps a file extension to a Stage.
func StageFromPath(path string) Stage {
	return stageByExt[strings.ToLower(filepath.Ext(path))]
}

// Ext returns the canonical extension of the stage, or "" for StageUnknown.
func (s Stage) Ext() string {
	for ext, st := range stageByExt {
		if st == s {
			return ext
		}
	}
	return ""
}

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	case StageCompute:
		return "compute"
	case StageTessControl:
		return "tess-control"
	case StageTessEval:
		return "tess-eval"
	}
	return "unknown"
}

// ShaderExtensions lists every extension recognised as a shader file.
func ShaderExtensions() []string {
	return []string{".vert", ".frag", ".geom", ".comp", ".tesc", ".tese"}
}
