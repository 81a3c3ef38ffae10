package diagfmt

import (
	"io"

	"github.com/goccy/go-json"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

// HighlightJSON is one highlighted line.
type HighlightJSON struct {
	Line    uint32 `json:"line"`
	Column  uint32 `json:"column"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity   string          `json:"severity"`
	Code       string          `json:"code"`
	Title      string          `json:"title"`
	File       string          `json:"file"`
	Message    string          `json:"message"`
	Highlights []HighlightJSON `json:"highlights,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Files       []FileStatus     `json:"files,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, maxItems),
		Count:       maxItems,
	}
	for _, f := range opts.Files {
		f.Path = displayPath(f.Path, opts.PathMode, fs)
		out.Files = append(out.Files, f)
	}

	for _, d := range items[:maxItems] {
		switch d.Severity {
		case diag.SevError:
			out.Errors++
		case diag.SevWarning:
			out.Warnings++
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			File:     displayPath(d.File, opts.PathMode, fs),
			Message:  d.Message,
		}
		for _, h := range d.Highlights {
			hj := HighlightJSON{Line: h.Line, Column: h.Column, Message: h.Message}
			if opts.IncludeSource {
				hj.Source, _ = sourceLine(fs, d.File, h.Line)
			}
			dj.Highlights = append(dj.Highlights, hj)
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
