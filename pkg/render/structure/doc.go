// Package structure renders molecules as 2D structure diagrams.
//
// # Overview
//
// This package produces Graphviz drawings of molecular graphs: atoms as
// text labels, bonds as parallel strokes matching their order. When a
// mechanism session is supplied, the drawing reflects the live state of
// the mechanism, with ledger charges on the atoms and in-flight bond
// transitions highlighted with their progress.
//
// # Usage
//
// Convert a molecule to DOT format, then render to SVG:
//
//	dot := structure.ToDOT(m, sess, structure.Options{})
//	svg, err := structure.RenderSVG(dot)
//
// For raster output use [RenderPNG]. Both renderers run Graphviz
// in-process; no external binary is needed.
//
// # Bond styling
//
// Bond orders map to strokes:
//
//   - 1: single line
//   - 2: two parallel lines
//   - 3: three parallel lines
//   - 1.5 (aromatic): dashed line
//   - 0 (broken): dotted grey line
//
// A bond with an in-flight transition is drawn in crimson and labeled
// with its progress, so successive frames of an animation show the bond
// filling in or fading out.
//
// # Geometry
//
// Molfile coordinates pin atom positions through Graphviz's neato layout,
// preserving the depicted geometry. Hand-built molecules without
// coordinates fall back to automatic layout.
package structure
