package driver

import (
	"strings"

	"glslcheck/internal/glslang"
)

const (
	failedHeader = "GLSL validation failed"
	passedHeader = "GLSL validation passed, with warnings"
)

// ComposeMessage builds the text handed to the parser from one validator run.
// runErr is the start failure, if any.
func ComposeMessage(out glslang.Output, runErr error) string {
	if out.Failed {
		if out.Stdout != "" || out.Stderr != "" {
			return strings.Join([]string{failedHeader, out.Stdout, out.Stderr}, "\n")
		}
		switch {
		case runErr != nil:
			return runErr.Error()
		case out.ExitErr != nil && out.ExitErr.Error() != "":
			return out.ExitErr.Error()
		}
		return "Unknown error"
	}

	parts := []string{passedHeader}
	for _, s := range []string{out.Stdout, out.Stderr} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
