// Package diag defines the diagnostic model shared by the augmenter, the
// validator output parser, the driver and the renderers.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - File – path of the ORIGINAL shader file the user authored.
//   - Message – residual validator text that could not be attributed to a line.
//   - Highlights – ordered (line, column, message) records in original-source
//     coordinates. Column is always 0: glslangValidator reports lines only.
//
// Result groups diagnostics for one file by severity. Bag aggregates results
// across files and provides deterministic ordering for output.
//
// Package diag does no IO. Rendering lives in internal/diagfmt.
package diag
