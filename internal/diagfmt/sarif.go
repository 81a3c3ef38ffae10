package diagfmt

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	glslWikiURL  = "https://www.khronos.org/opengl/wiki/Core_Language_%28GLSL%29"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
	HelpURI          string       `json:"helpUri,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine uint32        `json:"startLine"`
	Snippet   *sarifMessage `json:"snippet,omitempty"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// Each highlighted line becomes one result; file-level diagnostics become
// results without a region.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	rules := map[diag.Code]sarifRule{}
	results := make([]sarifResult, 0, bag.Len())

	for _, d := range bag.Items() {
		rules[d.Code] = sarifRule{
			ID:               d.Code.ID(),
			Name:             ruleName(d.Code),
			ShortDescription: sarifMessage{Text: d.Code.Title()},
			HelpURI:          helpURI(d.Code),
		}
		uri := filepath.ToSlash(displayPath(d.File, meta.PathMode, fs))

		if !d.HasHighlights() {
			results = append(results, sarifResult{
				RuleID:  d.Code.ID(),
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: nonEmpty(d.Message, d.Code.Title())},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: uri}},
				}},
			})
			continue
		}
		for _, h := range d.Highlights {
			region := &sarifRegion{StartLine: h.Line}
			if text, ok := sourceLine(fs, d.File, h.Line); ok {
				region.Snippet = &sarifMessage{Text: text}
			}
			r := sarifResult{
				RuleID:  d.Code.ID(),
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: h.Message},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: uri},
						Region:           region,
					},
				}},
			}
			if d.Message != "" {
				r.Properties = map[string]string{"validatorOutput": d.Message}
			}
			results = append(results, r)
		}
	}

	ruleList := make([]sarifRule, 0, len(rules))
	for _, r := range rules {
		ruleList = append(ruleList, r)
	}
	sort.Slice(ruleList, func(i, j int) bool { return ruleList[i].ID < ruleList[j].ID })

	log := sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           nonEmpty(meta.ToolName, "glslcheck"),
				Version:        meta.ToolVersion,
				InformationURI: glslWikiURL,
				Rules:          ruleList,
			}},
			Invocations: []sarifInvocation{{
				Arguments:           meta.InvocationArgs,
				ExecutionSuccessful: !bag.HasErrors(),
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

// ruleName turns the code title into PascalCase, keeping acronyms intact.
func ruleName(c diag.Code) string {
	title := cases.Title(language.Und, cases.NoLower).String(c.Title())
	return strings.Join(strings.Fields(title), "")
}

func helpURI(c diag.Code) string {
	if strings.HasPrefix(c.ID(), "GLSL") {
		return glslWikiURL
	}
	return ""
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
