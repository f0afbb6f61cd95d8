// Package mol provides the molecular graph that curved-arrow mechanism
// sessions operate on, plus a V2000 molfile parser to build one.
//
// # Overview
//
// A [Molecule] is an undirected graph of atoms (dense indices from 0) and
// bonds (stored once per unordered pair). It deliberately stores only what
// mechanism bookkeeping and rendering need: element symbols,
// construction-time formal charges, coordinates, implicit hydrogen counts
// and bond orders. There is no perception layer - aromaticity, charges
// and hydrogen counts are taken from the input file, not computed.
//
// # Bond orders
//
// Orders live on a small, deliberate scale:
//
//   - 1, 2, 3: ordinary single, double and triple bonds
//   - [Aromatic] (1.5): bonds read from aromatic ring input; these can be
//     inspected but never committed back, so ring systems must be
//     kekulized before a mechanism rewires them
//   - 0: a bond that existed and was broken; it stays in the graph and
//     can re-form
//   - [NoBond] (-1): the sentinel for a pair that has never been bonded
//
// The 0 versus [NoBond] distinction lets animation code treat "bond
// breaking" and "no bond here" differently without an error return;
// missing bonds are an expected query result, not a failure.
//
// # Molfiles
//
// [ParseMolfile] reads a single V2000 connection table: header, counts
// line, atom and bond blocks, and "M  CHG" / "M  RAD" property lines.
// Implicit hydrogens are filled in at parse time from per-element bond
// targets (C 4, N and P 3, O and S 2, halogens 1), so drawn-structure
// files behave like they do in structure editors: an unadorned "C" is
// methane, an "O" with one single bond is a hydroxyl group.
//
// # Concurrency
//
// Molecule instances are not safe for concurrent use. A mechanism session
// owns and mutates its molecule; share one across goroutines only behind
// external synchronization, or give each consumer a [Molecule.Clone].
package mol
