package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

// Markdown writes a report suitable for CI job summaries. Every message is
// escaped; paths and codes are emitted as inline code.
func Markdown(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts MarkdownOpts) error {
	var b strings.Builder
	title := nonEmpty(opts.Title, "GLSL validation")
	fmt.Fprintf(&b, "## %s\n\n", diag.EscapeMarkdown(title))

	errs, warns, files := 0, 0, 0
	lastFile := ""
	for i, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
		if i == 0 || d.File != lastFile {
			files++
			lastFile = d.File
			fmt.Fprintf(&b, "### %s\n\n", inlineCode(displayPath(d.File, opts.PathMode, fs)))
		}

		sev := strings.ToLower(d.Severity.String())
		if !d.HasHighlights() {
			fmt.Fprintf(&b, "- **%s** %s\n", sev, inlineCode(d.Code.ID()))
		}
		for _, h := range d.Highlights {
			fmt.Fprintf(&b, "- **%s** %s line %d: %s\n", sev, inlineCode(d.Code.ID()), h.Line, diag.EscapeMarkdown(h.Message))
		}
		if msg := messageLines(d.Message); len(msg) > 0 {
			b.WriteString("\n")
			for _, l := range msg {
				fmt.Fprintf(&b, "  > %s\n", diag.EscapeMarkdown(strings.TrimSpace(l)))
			}
		}
		b.WriteString("\n")
	}

	if bag.Len() == 0 {
		b.WriteString("No problems found.\n")
	} else {
		fmt.Fprintf(&b, "**%d error(s), %d warning(s) in %d file(s)**\n", errs, warns, files)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// inlineCode wraps s in enough backticks to survive backticks inside it.
func inlineCode(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
