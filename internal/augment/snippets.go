package augment

import (
	"embed"
	"strings"
)

//go:embed snippets/*.vert snippets/*.frag
var snippetDir embed.FS

// Integration names known to the embedded snippet set.
const (
	IntegrationThree = "three"
	IntegrationCSM   = "csm"
)

// SnippetSource provides the boilerplate inserted for an integration.
type SnippetSource interface {
	Snippet(integration string, stage Stage) (string, bool)
}

type embeddedSnippets struct{}

// EmbeddedSnippets serves the snippets compiled into the binary.
var EmbeddedSnippets SnippetSource = embeddedSnippets{}

func (embeddedSnippets) Snippet(integration string, stage Stage) (string, bool) {
	ext := stage.Ext()
	if ext == "" || strings.ContainsAny(integration, `/\.`) {
		return "", false
	}
	data, err := snippetDir.ReadFile("snippets/" + integration + ext)
	if err != nil {
		return "", false
	}
	return strings.TrimSuffix(string(data), "\n"), true
}

// SnippetMap is an in-memory SnippetSource keyed by integration then stage.
type SnippetMap map[string]map[Stage]string

func (m SnippetMap) Snippet(integration string, stage Stage) (string, bool) {
	s, ok := m[integration][stage]
	return s, ok
}
