// Package driver validates shader files end to end: configuration, source
// loading, augmentation, the external validator, output parsing and caching.
package driver

import (
	"log/slog"
	"os"
	"path/filepath"

	"glslcheck/internal/augment"
	"glslcheck/internal/config"
	"glslcheck/internal/glslang"
	"glslcheck/internal/log"
	"glslcheck/internal/observ"
	"glslcheck/internal/pipeline"
	"glslcheck/internal/source"
)

// Env carries everything a validation unit needs. Fields left empty get
// defaults from Prepare; all of them are safe to share between goroutines.
type Env struct {
	Validator   glslang.Validator
	ValidatorID string // path and version of the validator, part of cache keys
	ToolVersion string

	FS         augment.FS
	Files      *source.FileSet
	Configs    *config.Loader
	ScratchDir string
	Cache      *DiskCache // nil disables caching

	Logger   *slog.Logger
	Progress pipeline.ProgressSink
	Timer    *observ.Timer // nil disables timing
}

// Prepare fills defaults. Root is used for the config loader when Configs
// is nil.
func (env *Env) Prepare(root string) {
	if env.FS == nil {
		env.FS = augment.OSFS{}
	}
	if env.Files == nil {
		env.Files = source.NewFileSetWithBase(root)
	}
	if env.Configs == nil {
		env.Configs = config.NewLoader(root)
	}
	if env.ScratchDir == "" {
		env.ScratchDir = filepath.Join(os.TempDir(), "glslcheck")
	}
	if env.Logger == nil {
		env.Logger = log.Discard()
	}
	if env.Progress == nil {
		env.Progress = pipeline.NopSink{}
	}
}

func (env *Env) emit(file string, stage pipeline.Stage, status pipeline.Status, err error) {
	env.Progress.OnEvent(pipeline.Event{File: file, Stage: stage, Status: status, Err: err})
}
