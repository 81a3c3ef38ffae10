package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	Context  int // source lines shown around each highlight
	PathMode PathMode
	Width    int // максимальная ширина строки кода, 0 - не ограничено
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode      PathMode
	Max           int // обрезка вывода, не Bag
	IncludeSource bool
	Files         []FileStatus
}

// FileStatus describes how a file fared, independent of its diagnostics.
type FileStatus struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	Cached     bool   `json:"cached,omitempty"`
	LineOffset int    `json:"line_offset,omitempty"`
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
	PathMode       PathMode
}

// MarkdownOpts configures the markdown report.
type MarkdownOpts struct {
	Title    string
	PathMode PathMode
}
