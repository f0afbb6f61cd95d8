// Package mech is the electron-accounting and bond-transition engine
// behind curved-arrow reaction mechanisms.
//
// # Overview
//
// Organic chemistry teaches reactions as electron pushes: a curved arrow
// moves a pair of electrons from a lone pair or a bond into an adjacent
// bond or atom, and bond orders and formal charges change accordingly.
// This package does the bookkeeping for that picture over any molecular
// graph that satisfies [Graph]:
//
//   - [Accounting] derives lone pairs and unpaired electrons per atom
//     from valence, bond orders, hydrogens and charge
//   - [Ledger] owns the per-atom formal charges for a session
//   - a bond transition machine animates each order change from its
//     initial to its target order and commits the result
//   - [Session] bundles the three behind the four moves:
//     [Session.PushLonePairToBond], [Session.PushBondToAtom],
//     [Session.PushBondToBond] and [Session.Homolyze]
//
// # Electron accounting
//
// For an atom with a known element symbol,
//
//	nonBonding = valence(symbol) - totalBondOrder + charge
//
// where totalBondOrder sums the incident bond orders (aromatic bonds read
// as 1.5) plus implicit hydrogens. Lone pairs are floor(nonBonding/2),
// clamped at zero; the remainder is the atom's unpaired electron count.
// Unknown symbols get zeros rather than an error. One asymmetry is
// intentional: non-carbon atoms with implicit hydrogens count only their
// explicit bonds, since their drawn valence already absorbs those
// hydrogens.
//
// For every atom with a known symbol and no transition in flight on its
// bonds, the books balance exactly:
//
//	2*lonePairs + singleElectrons + totalBondOrder - charge == valence
//
// # Moves and transitions
//
// A move validates its preconditions, starts one or two bond transitions,
// and applies its charge deltas to the ledger. Rejected moves change
// nothing. The transitions themselves are time-based: each holds a
// progress value in [0,1] that the caller advances tick by tick through
// [Session.Advance], and only when progress reaches 1 is the target order
// committed to the graph. Until then renderers can sample
// [Session.ActiveTransition] to draw the bond mid-change.
//
// Target orders are always whole numbers clamped to [0,3]. A push into a
// triple bond animates but commits 3 again; a decrease on a broken bond
// commits 0 again. Aromatic bonds are the one hard refusal
// ([ErrAromaticBond]): their fractional order has no single-step
// neighbor, so ring systems must be kekulized before their electrons
// move.
//
// At most one transition exists per bond pair. Starting another replaces
// the first, latest-move-wins; the replaced entry never commits.
//
// # Ticking
//
// The engine never schedules itself. Whoever owns the frame loop (a TUI
// program, an HTTP server's ticker, a test) calls
//
//	done := session.Advance(step)
//
// once per tick with its chosen step. All active transitions advance in
// the same pass, independently of one another, and the completions come
// back sorted. A session whose loop stops simply freezes mid-animation;
// nothing times out.
//
// # Concurrency
//
// Sessions are not safe for concurrent use. The model is one logical
// writer: moves, advances and reads interleave on a single goroutine, or
// behind a caller-owned mutex.
package mech
