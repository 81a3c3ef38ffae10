package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

type palette struct {
	err, warn, info, code, path, gutter, marker, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan),
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		gutter: mk(color.FgBlue),
		marker: mk(color.FgRed),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой подсветки печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// затем строки контекста с маркером ^~~~ под строкой. Остаток вывода
// валидатора печатается как note. Диагностики без строк печатают
// сообщение блоком.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyDiagnostic(w, d, fs, opts, pal)
	}
}

func prettyDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	path := displayPath(d.File, opts.PathMode, fs)
	sev := pal.severity(d.Severity).Sprint(d.Severity.String())
	code := pal.code.Sprint(d.Code.ID())

	if !d.HasHighlights() {
		lines := messageLines(d.Message)
		first := d.Code.Title()
		if len(lines) > 0 {
			first, lines = lines[0], lines[1:]
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n", pal.path.Sprint(path), sev, code, first)
		for _, l := range lines {
			fmt.Fprintf(w, "    %s\n", l)
		}
		return
	}

	for _, h := range d.Highlights {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			pal.path.Sprintf("%s:%d:%d", path, h.Line, h.Column+1), sev, code, h.Message)
		codeFrame(w, fs, d.File, h.Line, opts, pal)
	}
	if lines := messageLines(d.Message); len(lines) > 0 {
		fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("= note:"), lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "          %s\n", l)
		}
	}
}

// codeFrame prints the highlighted line with opts.Context lines around it.
// Nothing is printed when the file is not in fs.
func codeFrame(w io.Writer, fs *source.FileSet, path string, line uint32, opts PrettyOpts, pal palette) {
	if _, ok := sourceLine(fs, path, line); !ok {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if line > ctx {
		first = line - ctx
	}
	last := line + ctx
	gutterWidth := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		text, ok := sourceLine(fs, path, n)
		if !ok {
			break
		}
		text = strings.ReplaceAll(text, "\t", "    ")
		if opts.Width > 0 {
			text = runewidth.Truncate(text, opts.Width, "…")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, n), text)
		if n == line {
			fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), pal.marker.Sprint(underline(text)))
		}
	}
}

// underline marks the non-blank part of a line: ^ at its start, ~ after.
func underline(text string) string {
	trimmed := strings.TrimLeft(text, " ")
	lead := runewidth.StringWidth(text) - runewidth.StringWidth(trimmed)
	width := runewidth.StringWidth(strings.TrimRight(trimmed, " "))
	if width == 0 {
		return strings.Repeat(" ", lead) + "^"
	}
	return strings.Repeat(" ", lead) + "^" + strings.Repeat("~", width-1)
}

func messageLines(msg string) []string {
	var out []string
	for _, l := range strings.Split(msg, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
