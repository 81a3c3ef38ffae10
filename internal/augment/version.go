package augment

import (
	"fmt"
	"regexp"
)

// Blank lines and // comments may precede the directive.
var versionDirective = regexp.MustCompile(`^(?:\s*//[^\n]*\n|\s+)*#version[ \t]+\d+(?:[ \t]+[a-z]+)?[ \t]*`)

// LocateVersion returns the index right after the #version directive at the
// top of text. The directive must end its line.
func LocateVersion(text string) (int, bool) {
	loc := versionDirective.FindStringIndex(text)
	if loc == nil {
		return 0, false
	}
	end := loc[1]
	if end < len(text) && text[end] != '\n' && text[end] != '\r' {
		return 0, false
	}
	return end, true
}

// VersionLine renders the directive synthesized for files that lack one.
func VersionLine(version int) string {
	return fmt.Sprintf("#version %d es\n", version)
}
