package mech

import (
	"errors"
	"math"
	"slices"
)

// ErrAromaticBond is returned when a move touches a bond whose current
// order is fractional (the aromatic 1.5 reading). Transitions commit whole
// orders only, so delocalized ring systems must be kekulized into
// alternating single and double bonds before their electrons can be
// pushed.
var ErrAromaticBond = errors.New("aromatic bond cannot be transitioned")

// Direction says which way a transition moves the bond order.
type Direction int

const (
	// DirectionIncrease raises the order by one, capped at 3.
	DirectionIncrease Direction = iota
	// DirectionDecrease lowers the order by one, floored at 0.
	DirectionDecrease
)

// String returns "increase" or "decrease".
func (d Direction) String() string {
	if d == DirectionDecrease {
		return "decrease"
	}
	return "increase"
}

// MoveKind tags a transition with the electron move that started it.
type MoveKind int

const (
	// MoveLonePairToBond pushes a lone pair (or a unit of negative charge)
	// into a bond, raising its order.
	MoveLonePairToBond MoveKind = iota
	// MoveBondToAtom collapses a bonding pair onto one endpoint,
	// lowering the bond order.
	MoveBondToAtom
	// MoveBondToBond shifts a pair along a three-atom path, lowering one
	// bond while raising the adjacent one.
	MoveBondToBond
	// MoveHomolysis splits a bonding pair into one single electron per
	// endpoint, lowering the bond order.
	MoveHomolysis
)

// String returns the curved-arrow name of the move.
func (k MoveKind) String() string {
	switch k {
	case MoveLonePairToBond:
		return "lone-pair-to-bond"
	case MoveBondToAtom:
		return "bond-to-atom"
	case MoveBondToBond:
		return "bond-to-bond"
	case MoveHomolysis:
		return "homolysis"
	default:
		return "unknown"
	}
}

// ParseMoveKind maps a move name back to its kind. Names are the
// [MoveKind.String] values, as used in demo scripts and API requests.
func ParseMoveKind(s string) (MoveKind, bool) {
	switch s {
	case "lone-pair-to-bond":
		return MoveLonePairToBond, true
	case "bond-to-atom":
		return MoveBondToAtom, true
	case "bond-to-bond":
		return MoveBondToBond, true
	case "homolysis":
		return MoveHomolysis, true
	default:
		return 0, false
	}
}

// Transition is one bond's order change in flight. A and B are the
// endpoints as the move named them (donor first); the entry itself is
// keyed by the normalized pair, so at most one transition exists per bond
// regardless of endpoint order.
//
// Progress runs from 0 to 1 in the fixed steps handed to [Session.Advance].
// The bond order on the graph does not change until progress reaches 1;
// renderers interpolate between InitialOrder and TargetOrder using
// Progress if they want a continuous picture.
type Transition struct {
	A, B         int
	Progress     float64
	InitialOrder float64
	TargetOrder  float64
	Kind         MoveKind
	Direction    Direction
}

// Completion reports one transition that finished during an advance pass:
// the normalized bond pair (A < B), the order that was committed to the
// graph, and the move that started it. Err carries the graph's rejection
// in the unlikely case the commit failed; the entry is removed either way.
type Completion struct {
	A, B  int
	Order float64
	Kind  MoveKind
	Err   error
}

// bondKey normalizes an undirected atom pair for use as a map key.
type bondKey struct {
	a, b int
}

func keyOf(a, b int) bondKey {
	if a > b {
		a, b = b, a
	}
	return bondKey{a, b}
}

// machine holds the active bond transitions, keyed by normalized pair.
// It never owns a timer; an external scheduler calls advance once per
// frame and the machine is a pure state transition in between.
type machine struct {
	g       Graph
	entries map[bondKey]*Transition
}

func newMachine(g Graph) *machine {
	return &machine{g: g, entries: make(map[bondKey]*Transition)}
}

// checkWhole rejects pairs whose current order is fractional. Pairs that
// were never bonded read as the NoBond sentinel and pass: a transition on
// them starts from order 0 and can form the bond.
func (m *machine) checkWhole(a, b int) error {
	if o := m.g.BondOrder(a, b); o > 0 && o != math.Trunc(o) {
		return ErrAromaticBond
	}
	return nil
}

// start creates (or replaces) the transition for the pair (a,b). The
// initial order is read fresh from the graph at call time, never-bonded
// pairs starting from 0, and the target is the initial order moved one
// step in the given direction and clamped to [0,3].
//
// Starting on a pair with an active entry silently replaces it; the old
// entry's commit never happens. That race is accepted: the latest move
// wins, there is no queue.
func (m *machine) start(a, b int, dir Direction, kind MoveKind) error {
	if err := m.checkWhole(a, b); err != nil {
		return err
	}
	initial := m.g.BondOrder(a, b)
	if initial < 0 {
		initial = 0
	}
	target := initial
	if dir == DirectionIncrease {
		target++
	} else {
		target--
	}
	target = math.Min(3, math.Max(0, target))

	m.entries[keyOf(a, b)] = &Transition{
		A: a, B: b,
		InitialOrder: initial,
		TargetOrder:  target,
		Kind:         kind,
		Direction:    dir,
	}
	return nil
}

// advance moves every active transition forward by step and commits the
// ones that reach 1. Entries advance independently; no entry's outcome
// depends on another having advanced first in the same pass. Completions
// come back sorted by bond pair so callers see a deterministic order.
//
// A non-positive step is a no-op: progress only ever moves forward.
func (m *machine) advance(step float64) []Completion {
	if step <= 0 {
		return nil
	}
	var done []Completion
	for k, t := range m.entries {
		t.Progress += step
		if t.Progress < 1 {
			continue
		}
		t.Progress = 1
		done = append(done, Completion{
			A: k.a, B: k.b,
			Order: t.TargetOrder,
			Kind:  t.Kind,
			Err:   m.g.SetBondOrder(k.a, k.b, t.TargetOrder),
		})
		delete(m.entries, k)
	}
	slices.SortFunc(done, func(x, y Completion) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	return done
}

// active returns a copy of the transition for the pair (a,b), if any.
// Read-only: sampling progress never mutates state.
func (m *machine) active(a, b int) (Transition, bool) {
	t, ok := m.entries[keyOf(a, b)]
	if !ok {
		return Transition{}, false
	}
	return *t, true
}

// list returns copies of all active transitions sorted by bond pair.
func (m *machine) list() []Transition {
	keys := make([]bondKey, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y bondKey) int {
		if x.a != y.a {
			return x.a - y.a
		}
		return x.b - y.b
	})
	out := make([]Transition, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m.entries[k])
	}
	return out
}
