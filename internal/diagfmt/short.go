package diagfmt

import (
	"io"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

// Short writes one line per highlighted line, paths relative to the
// FileSet base directory.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	baseDir := ""
	if fs != nil {
		baseDir = fs.BaseDir()
	}
	out := diag.FormatShortDiagnostics(bag.Items(), baseDir)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
