// Package parse turns glslangValidator output into line-accurate diagnostics.
//
// Warnings and errors are extracted by two independent passes of the same
// routine. Each pass runs: extract → offset-correct → merge-adjacent →
// strip artifacts → strip the augmented path → trim and drop blank lines.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"glslcheck/internal/diag"
)

// noCodeGenerated is printed by the validator even though nothing is compiled.
const noCodeGenerated = "No code generated."

// recordPatterns match "<KEYWORD>: <file>:<line>: <message>" lines.
var recordPatterns = map[diag.Severity]*regexp.Regexp{
	diag.SevWarning: recordPattern(diag.SevWarning),
	diag.SevError:   recordPattern(diag.SevError),
}

func recordPattern(sev diag.Severity) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + sev.Keyword() + `: (.+):(\d+): (.+)$`)
}

// Input is the raw validator output together with what is needed to map it
// back onto the original file.
type Input struct {
	Raw           string // combined validator output
	File          string // original file, used for attribution
	AugmentedPath string // path the validator actually saw
	LineOffset    int
}

// Issue is one extracted record, already in original-source coordinates.
type Issue struct {
	Line    uint32
	Message string
}

// Parse extracts at most one warning and one error diagnostic from in.Raw.
// It never fails: output in an unknown shape yields an empty result.
func Parse(in Input) diag.Result {
	raw := strings.ReplaceAll(in.Raw, "\r\n", "\n")

	var res diag.Result
	if d, ok := parseSeverity(raw, diag.SevWarning, in); ok {
		res.Warnings = append(res.Warnings, d)
	}
	if d, ok := parseSeverity(raw, diag.SevError, in); ok {
		res.Errors = append(res.Errors, d)
	}
	return res
}

func parseSeverity(raw string, sev diag.Severity, in Input) (diag.Diagnostic, bool) {
	issues, residual := extract(raw, recordPatterns[sev], in.LineOffset)
	if len(issues) == 0 {
		return diag.Diagnostic{}, false
	}
	issues = MergeAdjacent(issues)

	highlights := make([]diag.Highlight, 0, len(issues))
	for _, is := range issues {
		highlights = append(highlights, diag.Highlight{Line: is.Line, Message: is.Message})
	}

	code := diag.GLSLValidationError
	if sev == diag.SevWarning {
		code = diag.GLSLValidationWarning
	}
	return diag.Diagnostic{
		Severity:   sev,
		Code:       code,
		File:       in.File,
		Message:    CleanResidual(residual, in.AugmentedPath),
		Highlights: highlights,
	}, true
}

// extract returns the offset-corrected issues in output order and raw with
// every matched line blanked out.
func extract(raw string, re *regexp.Regexp, offset int) ([]Issue, string) {
	matches := re.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil, raw
	}

	issues := make([]Issue, 0, len(matches))
	var residual strings.Builder
	last := 0
	for _, m := range matches {
		lineText := raw[m[4]:m[5]]
		msg := raw[m[6]:m[7]]
		issues = append(issues, Issue{Line: originalLine(lineText, offset), Message: msg})

		residual.WriteString(raw[last:m[0]])
		last = m[1]
	}
	residual.WriteString(raw[last:])
	return issues, residual.String()
}

// originalLine maps an augmented line number back to the original source.
// Lines that land inside inserted text are clamped to the first line.
func originalLine(s string, offset int) uint32 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// only reachable on overflow of \d+
		return 1
	}
	n -= int64(offset)
	if n < 1 {
		return 1
	}
	line, err := safecast.Conv[uint32](n)
	if err != nil {
		return math.MaxUint32
	}
	return line
}

// MergeAdjacent joins strictly consecutive issues on the same line with "; ".
// Same-line issues separated by another line stay apart.
func MergeAdjacent(issues []Issue) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		if n := len(out); n > 0 && out[n-1].Line == is.Line {
			out[n-1].Message += "; " + is.Message
			continue
		}
		out = append(out, is)
	}
	return out
}

// CleanResidual removes validator artifacts and the augmented path from the
// text left after extraction, trims every line and drops blank ones.
func CleanResidual(residual, augmentedPath string) string {
	residual = strings.ReplaceAll(residual, noCodeGenerated, "")

	lines := strings.Split(residual, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if augmentedPath != "" && line == augmentedPath {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
