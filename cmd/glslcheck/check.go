package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"glslcheck/internal/driver"
	"glslcheck/internal/observ"
	"glslcheck/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Validate a shader file or every shader in a directory",
	Long: `Validate GLSL shaders (.vert, .frag, .geom, .comp, .tesc, .tese)
with glslangValidator. Reported lines refer to the original files. Exits with
status 1 when any error remains.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	addValidationFlags(checkCmd)
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// runCheck validates the target and renders the collected diagnostics to
// stdout. Timings and the summary go to stderr.
func runCheck(cmd *cobra.Command, args []string) error {
	vf, err := readValidationFlags(cmd)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}

	target, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	root, err := resolveRoot(vf.root)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	discover := timer.Begin("discover")
	files := []string{target}
	if st.IsDir() {
		if files, err = driver.ListShaderFiles(target); err != nil {
			return fmt.Errorf("failed to list shaders: %w", err)
		}
	}
	timer.End(discover, fmt.Sprintf("%d files", len(files)))

	env, err := newEnv(cmd, vf, root, nil)
	if err != nil {
		return err
	}
	if vf.timings {
		env.Timer = timer
	}

	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling(session)

	validate := timer.Begin("validate")
	var results []*driver.FileResult
	if shouldUseTUI(mode) && vf.format == "pretty" && !vf.quiet && len(files) > 1 {
		results, err = runWithUI(cmd.Context(), "Validating shaders", files, env, vf.jobs)
	} else {
		results, err = driver.ValidateFiles(cmd.Context(), files, env, vf.jobs)
	}
	timer.End(validate, "")
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	bag := collectBag(results, vf)
	if err := renderDiagnostics(os.Stdout, bag, env.Files, results, vf, useColor); err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}

	if vf.format == "pretty" && !vf.quiet {
		if bag.Len() > 0 {
			fmt.Fprintln(os.Stdout)
		}
		printSummary(os.Stderr, driver.Summarize(results))
	}
	if vf.timings {
		printStageTimings(os.Stderr, mergeTimings(results))
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if bag.HasErrors() {
		// os.Exit не выполняет defer
		stopProfiling(session)
		os.Exit(1)
	}
	return nil
}

func mergeTimings(results []*driver.FileResult) *pipeline.Timings {
	total := &pipeline.Timings{}
	for _, r := range results {
		total.Merge(r.Timings)
	}
	return total
}
