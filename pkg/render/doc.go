// Package render groups the drawing backends.
//
// # Overview
//
// Rendering turns mechanism state into images. There is currently one
// backend:
//
//   - Structure diagrams (in [structure] subpackage)
//
// The [structure] subpackage converts a molecule and its live session
// into Graphviz DOT, then renders SVG or PNG through an embedded
// Graphviz build; no external binary is needed. Rendered images are
// byte-for-byte deterministic for a given state, which is what lets the
// CLI and the HTTP API cache them by content hash.
//
// [structure]: github.com/curlyarrow/curlyarrow/pkg/render/structure
package render
