package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"glslcheck/internal/driver"
	"glslcheck/internal/glslang"
	"glslcheck/internal/log"
	"glslcheck/internal/observ"
	"glslcheck/internal/pipeline"
)

const appName = "glslcheck"

// addValidationFlags registers the flags shared by check and watch.
func addValidationFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif|markdown)")
	cmd.Flags().Int("jobs", 0, "max parallel validator processes (0=auto)")
	cmd.Flags().String("validator", "", "path to glslangValidator (default: $"+glslang.EnvValidator+", tools dir, PATH)")
	cmd.Flags().String("tools-dir", "", "directory holding prebuilt glslangValidator binaries")
	cmd.Flags().String("root", "", "project root; config files are not searched above it (default: working directory)")
	cmd.Flags().String("scratch-dir", "", "directory for augmented scratch files (default: system temp)")
	cmd.Flags().Bool("no-cache", false, "disable the persistent result cache")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// validationFlags holds the parsed values of addValidationFlags.
type validationFlags struct {
	format           string
	jobs             int
	validator        string
	toolsDir         string
	root             string
	scratchDir       string
	noCache          bool
	noWarnings       bool
	warningsAsErrors bool
	fullPath         bool
	maxDiagnostics   int
	timings          bool
	quiet            bool
}

func readValidationFlags(cmd *cobra.Command) (validationFlags, error) {
	var (
		vf  validationFlags
		err error
	)
	flags := cmd.Flags()
	if vf.format, err = flags.GetString("format"); err != nil {
		return vf, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch vf.format {
	case "pretty", "short", "json", "sarif", "markdown":
	default:
		return vf, fmt.Errorf("unknown format: %s", vf.format)
	}
	if vf.jobs, err = flags.GetInt("jobs"); err != nil {
		return vf, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if vf.validator, err = flags.GetString("validator"); err != nil {
		return vf, fmt.Errorf("failed to get validator flag: %w", err)
	}
	if vf.toolsDir, err = flags.GetString("tools-dir"); err != nil {
		return vf, fmt.Errorf("failed to get tools-dir flag: %w", err)
	}
	if vf.root, err = flags.GetString("root"); err != nil {
		return vf, fmt.Errorf("failed to get root flag: %w", err)
	}
	if vf.scratchDir, err = flags.GetString("scratch-dir"); err != nil {
		return vf, fmt.Errorf("failed to get scratch-dir flag: %w", err)
	}
	if vf.noCache, err = flags.GetBool("no-cache"); err != nil {
		return vf, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if vf.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return vf, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if vf.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
		return vf, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if vf.noWarnings && vf.warningsAsErrors {
		return vf, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if vf.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return vf, fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	persistent := cmd.Root().PersistentFlags()
	if vf.maxDiagnostics, err = persistent.GetInt("max-diagnostics"); err != nil {
		return vf, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if vf.timings, err = persistent.GetBool("timings"); err != nil {
		return vf, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if vf.quiet, err = persistent.GetBool("quiet"); err != nil {
		return vf, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return vf, nil
}

// resolveRoot returns the absolute project root.
func resolveRoot(flagValue string) (string, error) {
	root := flagValue
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return filepath.Abs(root)
}

// newEnv resolves the validator and assembles the driver environment.
// An unsupported platform or a missing validator is fatal.
func newEnv(cmd *cobra.Command, vf validationFlags, root string, progress pipeline.ProgressSink) (*driver.Env, error) {
	path, err := glslang.Resolve(vf.validator, vf.toolsDir)
	if err != nil {
		var platformErr *glslang.UnsupportedPlatformError
		if errors.As(err, &platformErr) {
			return nil, platformErr
		}
		return nil, fmt.Errorf("glslangValidator not found: %w", err)
	}
	runner := &glslang.Runner{Path: path}

	toolVersion, err := runner.Version(cmd.Context())
	if err != nil {
		logger.Warn("could not determine validator version", "err", err)
	}

	env := &driver.Env{
		Validator:   runner,
		ValidatorID: path,
		ToolVersion: toolVersion,
		ScratchDir:  vf.scratchDir,
		Logger:      log.Module(logger, "driver"),
		Progress:    progress,
	}
	if vf.timings {
		env.Timer = observ.NewTimer()
	}
	if !vf.noCache {
		cache, err := driver.OpenDiskCache(appName)
		if err != nil {
			logger.Warn("result cache disabled", "err", err)
		} else {
			env.Cache = cache
		}
	}
	env.Prepare(root)
	logger.Debug("validator resolved", "path", path, "version", toolVersion, "root", root)
	return env, nil
}
