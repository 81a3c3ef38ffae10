package diagfmt

import (
	"glslcheck/internal/source"
)

// displayPath formats path according to mode. fs supplies the base directory
// for relative paths and may be nil.
func displayPath(path string, mode PathMode, fs *source.FileSet) string {
	baseDir := ""
	if fs != nil {
		baseDir = fs.BaseDir()
	}
	switch mode {
	case PathModeAbsolute:
		return source.FormatPath(path, "absolute", "")
	case PathModeRelative:
		return source.FormatPath(path, "relative", baseDir)
	case PathModeBasename:
		return source.FormatPath(path, "basename", "")
	case PathModeAuto:
		return source.FormatPath(path, "auto", "")
	}
	return path
}

// sourceLine returns the text of a 1-based line of path as loaded in fs.
func sourceLine(fs *source.FileSet, path string, line uint32) (string, bool) {
	if fs == nil {
		return "", false
	}
	f, ok := fs.GetByPath(path)
	if !ok || line == 0 || line > f.LineCount() {
		return "", false
	}
	return f.GetLine(line), true
}
