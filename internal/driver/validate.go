package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"glslcheck/internal/augment"
	"glslcheck/internal/config"
	"glslcheck/internal/diag"
	"glslcheck/internal/glslang"
	"glslcheck/internal/metrics"
	"glslcheck/internal/parse"
	"glslcheck/internal/pipeline"
	"glslcheck/internal/source"
)

// ValidateFile runs one validation unit. Problems with the file itself are
// reported as diagnostics in the result; the error is reserved for
// cancellation.
func ValidateFile(ctx context.Context, path string, env *Env) (*FileResult, error) {
	res := &FileResult{Path: path, Timings: &pipeline.Timings{}}
	logger := env.Logger.With("file", path)

	// config
	env.emit(path, pipeline.StageConfig, pipeline.StatusWorking, nil)
	start := time.Now()
	cfg, err := env.Configs.ForFile(path)
	res.Timings.Add(pipeline.StageConfig, time.Since(start))
	if err != nil {
		res.Result.Errors = append(res.Result.Errors, configDiagnostic(path, err))
		return finish(env, res, logger), nil
	}
	if len(cfg.Unknown) > 0 {
		logger.Debug("unknown config keys ignored", "config", cfg.Source, "keys", strings.Join(cfg.Unknown, ","))
	}
	if cfg.Excluded(relativeTo(env.Configs.Root(), path)) {
		res.Skipped = true
		return finish(env, res, logger), nil
	}

	fileID, err := env.Files.Load(path)
	if err != nil {
		res.Result.Errors = append(res.Result.Errors,
			diag.Errorf(diag.SysReadSource, path, fmt.Sprintf("failed to read shader: %v", err)))
		return finish(env, res, logger), nil
	}
	file := env.Files.Get(fileID)
	res.FileID, res.HasFile = fileID, true

	key := cacheKey(file.Hash, file.Path, cfg.Fingerprint(), env.ValidatorID, env.ToolVersion)
	if env.Cache != nil {
		var payload CachePayload
		hit, err := env.Cache.Get(key, &payload)
		if err != nil {
			logger.Debug("cache read failed", "err", err)
		}
		metrics.ObserveCache(hit && err == nil)
		if hit && err == nil {
			res.Cached = true
			res.Result = payload.Result
			res.Failed = payload.Failed
			res.LineOffset = payload.LineOffset
			res.Logs = payload.Logs
			return finish(env, res, logger), nil
		}
	}

	cacheable, err := run(ctx, env, res, file, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cacheable && env.Cache != nil {
		payload := &CachePayload{
			Path:       path,
			LineOffset: res.LineOffset,
			Failed:     res.Failed,
			Result:     res.Result,
			Logs:       res.Logs,
		}
		if err := env.Cache.Put(key, payload); err != nil {
			logger.Debug("cache write failed", "err", err)
		}
	}
	return finish(env, res, logger), nil
}

// run augments, validates and parses. It reports whether the outcome
// depends only on the cache key inputs.
func run(ctx context.Context, env *Env, res *FileResult, file *source.File, cfg *config.Config, logger *slog.Logger) (bool, error) {
	path := res.Path

	env.emit(path, pipeline.StageAugment, pipeline.StatusWorking, nil)
	start := time.Now()
	target, err := augment.ToFile(env.FS, augment.Request{
		Path:       path,
		Text:       file.Text(),
		ScratchDir: env.ScratchDir,
		AssetID:    augment.AssetID(path),
		Options:    cfg.AugmentOptions(),
	})
	res.Timings.Add(pipeline.StageAugment, time.Since(start))
	if err != nil {
		res.Result.Errors = append(res.Result.Errors, diag.Errorf(diag.SysValidatorIO, path, err.Error()))
		return false, nil
	}
	res.LineOffset = target.LineOffset
	if target.Temporary() {
		metrics.ScratchFiles.Inc()
		logger.Debug("validating augmented copy", "scratch", target.Path, "offset", target.LineOffset,
			"integrations", strings.Join(target.Augmented.Applied, ","))
	}
	defer func() {
		if err := target.Cleanup(env.FS); err != nil {
			logger.Debug("failed to remove scratch file", "scratch", target.Path, "err", err)
		}
	}()

	env.emit(path, pipeline.StageValidate, pipeline.StatusWorking, nil)
	start = time.Now()
	out, runErr := env.Validator.Run(ctx, target.Path, cfg.CommandArguments)
	elapsed := time.Since(start)
	res.Timings.Add(pipeline.StageValidate, elapsed)
	metrics.ObserveValidator(elapsed)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	var argsErr *glslang.ArgsError
	if errors.As(runErr, &argsErr) {
		cfgErr := &config.ConfigError{
			Path:   cfg.Source,
			Key:    config.KeyCommandArguments,
			Type:   "string",
			Reason: fmt.Sprintf("must be a valid argument list: %v", argsErr.Err),
		}
		res.Result.Errors = append(res.Result.Errors, configDiagnostic(path, cfgErr))
		return false, nil
	}
	if runErr != nil {
		out.Failed = true
	}
	res.Failed = out.Failed

	env.emit(path, pipeline.StageParse, pipeline.StatusWorking, nil)
	start = time.Now()
	raw := ComposeMessage(out, runErr)
	res.Result = parse.Parse(parse.Input{
		Raw:           raw,
		File:          path,
		AugmentedPath: target.Path,
		LineOffset:    target.LineOffset,
	})
	res.Timings.Add(pipeline.StageParse, time.Since(start))

	if res.Result.Empty() {
		switch {
		case out.Failed:
			code := diag.GLSLValidatorFailed
			if runErr != nil {
				code = diag.SysValidatorIO
			}
			msg := parse.CleanResidual(raw, target.Path)
			if msg == "" {
				msg = failedHeader
			}
			res.Result.Errors = append(res.Result.Errors, diag.Errorf(code, path, msg))
		default:
			// nothing recognisable on success: surface it as logs, not diagnostics
			if s := strings.TrimSpace(out.Stdout); s != "" && s != target.Path && s != path {
				res.log(slog.LevelInfo, s)
			}
			if s := strings.TrimSpace(out.Stderr); s != "" {
				res.log(slog.LevelError, s)
			}
		}
	}
	return runErr == nil, nil
}

func finish(env *Env, res *FileResult, logger *slog.Logger) *FileResult {
	for _, entry := range res.Logs {
		logger.Log(context.Background(), slog.Level(entry.Level), entry.Message)
	}

	if env.Timer != nil {
		for _, stage := range pipeline.Stages {
			if res.Timings.Has(stage) {
				env.Timer.Add(string(stage), res.Timings.Duration(stage))
			}
		}
	}

	outcome := metrics.ResultPassed
	switch {
	case res.Skipped:
		outcome = metrics.ResultSkipped
	case res.Result.HasErrors() && !res.HasFile:
		outcome = metrics.ResultError
	case res.Result.HasErrors():
		outcome = metrics.ResultFailed
	}
	metrics.FilesValidated.WithLabelValues(outcome).Inc()
	for _, d := range res.Result.All() {
		metrics.Diagnostics.WithLabelValues(d.Severity.String()).Add(float64(max(1, len(d.Highlights))))
	}

	env.emit(res.Path, pipeline.StageParse, res.Status(), firstError(res))
	return res
}

func firstError(res *FileResult) error {
	if len(res.Result.Errors) == 0 {
		return nil
	}
	return errors.New(res.Result.Errors[0].Message)
}

func configDiagnostic(path string, err error) diag.Diagnostic {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		d := diag.Errorf(diag.CfgInvalidOption, path, cfgErr.Error())
		if cfgErr.Path != "" {
			d.Message += " (" + cfgErr.Path + ")"
		}
		return d
	}
	return diag.Errorf(diag.CfgLoadFailed, path, err.Error())
}

func relativeTo(root, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
