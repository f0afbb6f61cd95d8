// Package pkg provides the core libraries for curlyarrow mechanism animation.
//
// # Overview
//
// Curlyarrow animates curved-arrow electron pushing: the notation organic
// chemists use to explain how bonds break and form during a reaction. The
// pkg directory is organized into four main areas:
//
//  1. [mol] - Molecular graphs and V2000 molfile parsing
//  2. [mech] - Mechanism sessions (electron accounting, charge ledger, bond transitions)
//  3. [demo] - Scripted demonstrations that drive a session step by step
//  4. [render/structure] - Structure drawings via Graphviz
//
// # Architecture
//
// The typical data flow through curlyarrow:
//
//	V2000 molfile
//	         ↓
//	    [mol] package (molecular graph + implicit hydrogens)
//	         ↓
//	    [mech] package (lone pairs, charges, animated bond transitions)
//	         ↓
//	    [render/structure] package (DOT → SVG/PNG)
//	         ↓
//	    CLI player / HTTP API
//
// # Quick Start
//
// Parse a molecule, push electrons, and animate the bond change:
//
//	import (
//	    "github.com/curlyarrow/curlyarrow/pkg/mech"
//	    "github.com/curlyarrow/curlyarrow/pkg/mol"
//	)
//
//	// 1. Parse the molfile
//	m, _ := mol.ParseMolfile(src)
//
//	// 2. Seed the mechanism session
//	sess, _ := mech.NewSession(m)
//
//	// 3. Push a lone pair from atom 1 into a bond with atom 0
//	_ = sess.PushLonePairToBond(1, 0)
//
//	// 4. Advance until the transition completes
//	for len(sess.Transitions()) > 0 {
//	    sess.Advance(0.1)
//	}
//
// # Main Packages
//
// ## Chemistry Core
//
// [mol] - Molecular graph with atoms, bonds, and fractional bond orders.
// Parses V2000 molfiles including charge, radical, and valence-override
// properties, and derives implicit hydrogen counts per element.
//
// [mech] - The mechanism engine. An [mech.Accounting] derives lone pairs
// and single electrons from valence, bonding, and formal charge; a
// [mech.Ledger] tracks the charges the moves redistribute; bond changes
// run as timed transitions that mutate the molecule when they complete.
// The four moves are lone-pair-to-bond, bond-to-atom, bond-to-bond, and
// homolysis.
//
// ## Demonstrations
//
// [demo] - TOML mechanism scripts plus a [demo.Runner] that applies one
// scripted move at a time and advances its transitions. Builtin scripts
// cover carbonyl addition, substitution, an allylic shift, and homolysis.
//
// ## Visualization
//
// [render/structure] - Graphviz drawings of the live session: bond orders
// as parallel strokes, ledger charges as label suffixes, in-flight
// transitions highlighted with their progress.
//
// ## Persistence and Support
//
// [snapshot] - Captures a session (molfile, bond orders, charges) as a
// serializable document and restores it later.
//
// [store] - Snapshot storage backends: memory, JSON files, Redis, and
// MongoDB behind one interface.
//
// [cache] - Content-addressed cache for rendered images, keyed by DOT
// hash, with file and null implementations.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Common Workflows
//
// Run a scripted demonstration:
//
//	sc, _ := demo.LoadScript("mechanism.toml")
//	r, _ := demo.NewRunner(sc, logger)
//	for {
//	    if did, err := r.Tick(); err != nil || !did {
//	        break
//	    }
//	}
//
// Save and restore a session:
//
//	sn := snapshot.Capture("before attack", src, m, sess)
//	_ = st.Save(ctx, sn)
//
//	sn, _ = st.Load(ctx, sn.ID)
//	m, sess, _ := sn.Restore()
//
// Draw the current state:
//
//	dot := structure.ToDOT(m, sess, structure.Options{})
//	svg, _ := structure.RenderSVG(dot)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/mech/...     # Specific package
//	go test -run Example       # Examples only
//
// [mol]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/mol
// [mech]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/mech
// [demo]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/demo
// [render/structure]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/render/structure
// [snapshot]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/snapshot
// [store]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/store
// [cache]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/cache
// [errors]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/buildinfo
// [mech.Accounting]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/mech#Accounting
// [mech.Ledger]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/mech#Ledger
// [demo.Runner]: https://pkg.go.dev/github.com/curlyarrow/curlyarrow/pkg/demo#Runner
package pkg
