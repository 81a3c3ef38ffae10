package augment

import (
	"strings"
)

// Integration is one configurable snippet set, e.g. "three".
type Integration struct {
	Name    string
	Enabled bool // global flag; markers in the file override it
}

// Options controls augmentation.
type Options struct {
	GLSLVersion  int
	Integrations []Integration // inserted in this order
	Namespace    string        // marker prefix, DefaultNamespace when empty
	Snippets     SnippetSource // EmbeddedSnippets when nil
}

// Augmented is the text handed to the validator.
type Augmented struct {
	Text               string
	LineOffset         int
	VersionSynthesized bool
	Applied            []string // integrations actually inserted, in order
}

// Changed reports whether Text differs from the original.
func (a Augmented) Changed() bool {
	return a.LineOffset > 0
}

// Augment ensures a #version directive and inserts applicable integration
// snippets right after it. Nothing is ever inserted before the directive.
func Augment(text string, stage Stage, opts Options) Augmented {
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	snippets := opts.Snippets
	if snippets == nil {
		snippets = EmbeddedSnippets
	}

	out := Augmented{Text: text}

	insertAt, ok := LocateVersion(text)
	if !ok {
		line := VersionLine(opts.GLSLVersion)
		out.Text = line + text
		insertAt = len(line)
		out.LineOffset++
		out.VersionSynthesized = true
	}

	for _, integ := range opts.Integrations {
		// markers are looked up in the author's text, not in inserted snippets
		if !Applies(text, ns, integ.Name, integ.Enabled) {
			continue
		}
		snippet, ok := snippets.Snippet(integ.Name, stage)
		if !ok {
			continue
		}
		block := "\n" + snippet + "\n"
		out.Text = out.Text[:insertAt] + block + out.Text[insertAt:]
		insertAt += len(block)
		out.LineOffset += strings.Count(block, "\n")
		out.Applied = append(out.Applied, integ.Name)
	}

	return out
}
