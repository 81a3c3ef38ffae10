package main

import (
	"fmt"
	"io"
	"os"

	"glslcheck/internal/diag"
	"glslcheck/internal/diagfmt"
	"glslcheck/internal/driver"
	"glslcheck/internal/source"
	"glslcheck/internal/version"
)

// collectBag gathers diagnostics of results and applies the warning flags.
func collectBag(results []*driver.FileResult, vf validationFlags) *diag.Bag {
	bag := driver.Collect(results, vf.maxDiagnostics, vf.noWarnings)
	if vf.warningsAsErrors {
		bag.PromoteWarnings()
	}
	return bag
}

func pathMode(vf validationFlags) diagfmt.PathMode {
	if vf.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeRelative
}

func fileStatuses(results []*driver.FileResult) []diagfmt.FileStatus {
	out := make([]diagfmt.FileStatus, 0, len(results))
	for _, r := range results {
		out = append(out, diagfmt.FileStatus{
			Path:       r.Path,
			Status:     string(r.Status()),
			Cached:     r.Cached,
			LineOffset: r.LineOffset,
		})
	}
	return out
}

// renderDiagnostics writes bag to w in vf.format.
func renderDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, results []*driver.FileResult, vf validationFlags, useColor bool) error {
	mode := pathMode(vf)
	switch vf.format {
	case "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:    useColor,
			Context:  2,
			PathMode: mode,
			Width:    terminalWidth(),
		})
		return nil
	case "short":
		return diagfmt.Short(w, bag, fs)
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			PathMode:      mode,
			Max:           vf.maxDiagnostics,
			IncludeSource: true,
			Files:         fileStatuses(results),
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       appName,
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
			PathMode:       mode,
		})
	case "markdown":
		return diagfmt.Markdown(w, bag, fs, diagfmt.MarkdownOpts{PathMode: mode})
	}
	return fmt.Errorf("unknown format: %s", vf.format)
}

// printSummary writes the one-line run summary used by the pretty format.
func printSummary(w io.Writer, s driver.Summary) {
	fmt.Fprintf(w, "%d file(s): %d passed, %d failed", s.Files, s.Passed, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", s.Skipped)
	}
	if s.Cached > 0 {
		fmt.Fprintf(w, ", %d cached", s.Cached)
	}
	fmt.Fprintf(w, "; %d error(s), %d warning(s)\n", s.Errors, s.Warnings)
}
