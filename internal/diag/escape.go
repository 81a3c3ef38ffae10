package diag

import "strings"

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
)

// EscapeMarkdown escapes characters that markdown renderers would interpret.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
