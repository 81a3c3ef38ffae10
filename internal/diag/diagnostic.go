package diag

// Highlight marks one line of the original source.
type Highlight struct {
	Line    uint32 // 1-based, original-source coordinates
	Column  uint32 // always 0: whole line
	Message string
}

// Diagnostic is one user-facing issue group for a file.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	File       string
	Message    string
	Highlights []Highlight
}

// HasHighlights reports whether the diagnostic is attributed to lines.
func (d Diagnostic) HasHighlights() bool {
	return len(d.Highlights) > 0
}

// Result is the outcome of validating one file.
// Each slice holds at most one parsed diagnostic, or one file-level one.
type Result struct {
	Warnings []Diagnostic
	Errors   []Diagnostic
}

// Empty reports whether neither warnings nor errors were produced.
func (r Result) Empty() bool {
	return len(r.Warnings) == 0 && len(r.Errors) == 0
}

// HasErrors reports whether any error diagnostic is present.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// All returns warnings followed by errors.
func (r Result) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Warnings)+len(r.Errors))
	out = append(out, r.Warnings...)
	out = append(out, r.Errors...)
	return out
}

// Errorf builds a file-level error diagnostic.
func Errorf(code Code, file, msg string) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, File: file, Message: msg}
}
