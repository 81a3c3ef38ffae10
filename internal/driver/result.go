package driver

import (
	"log/slog"
	"sort"

	"glslcheck/internal/diag"
	"glslcheck/internal/pipeline"
	"glslcheck/internal/source"
)

// FileResult is the outcome of validating one shader.
type FileResult struct {
	Path       string
	FileID     source.FileID
	HasFile    bool // FileID is valid
	Result     diag.Result
	LineOffset int
	Failed     bool // the validator exited with an error
	Skipped    bool // excluded by configuration
	Cached     bool
	Logs       []LogEntry
	Timings    *pipeline.Timings
}

// Status folds the result into a terminal progress status.
func (r *FileResult) Status() pipeline.Status {
	switch {
	case r.Skipped:
		return pipeline.StatusSkipped
	case r.Result.HasErrors():
		return pipeline.StatusError
	case r.Cached:
		return pipeline.StatusCached
	}
	return pipeline.StatusDone
}

func (r *FileResult) log(level slog.Level, msg string) {
	r.Logs = append(r.Logs, LogEntry{Level: int(level), Message: msg})
}

// Summary counts outcomes over many files.
type Summary struct {
	Files    int
	Passed   int
	Failed   int
	Skipped  int
	Cached   int
	Errors   int // diagnostics
	Warnings int
}

// Summarize counts outcomes of results.
func Summarize(results []*FileResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Result.HasErrors():
			s.Failed++
		default:
			s.Passed++
		}
		if r.Cached {
			s.Cached++
		}
		s.Errors += len(r.Result.Errors)
		s.Warnings += len(r.Result.Warnings)
	}
	return s
}

// Collect puts every diagnostic of results into one sorted bag.
func Collect(results []*FileResult, maxDiagnostics int, ignoreWarnings bool) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	for _, r := range results {
		if r == nil {
			continue
		}
		bag.AddResult(r.Result, ignoreWarnings)
	}
	bag.Sort()
	return bag
}

func sortResults(results []*FileResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
}
