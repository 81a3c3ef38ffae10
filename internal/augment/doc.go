// Package augment rewrites shader source before it is handed to the validator.
//
// It guarantees a #version directive at the top of the text and inserts
// integration snippets (uniform/attribute declarations of shader-consuming
// frameworks) right after it. Every inserted newline is counted in a line
// offset so that diagnostics can be mapped back onto the original text.
//
// Augment is pure. ToFile persists the augmented text to a scratch file
// through the FS capability, and only when the line offset is non-zero.
package augment
