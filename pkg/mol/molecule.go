package mol

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrAtomOutOfRange is returned by [Molecule.AddBond] and
	// [Molecule.SetBondOrder] when an atom index does not refer to an atom
	// in the molecule. Read accessors do not return errors; they report
	// zero values (or [NoBond]) for unknown indices instead.
	ErrAtomOutOfRange = errors.New("atom index out of range")

	// ErrSelfBond is returned by [Molecule.AddBond] and [Molecule.SetBondOrder]
	// when both endpoints are the same atom. Bonds connect distinct atoms.
	ErrSelfBond = errors.New("bond endpoints must be distinct")

	// ErrInvalidOrder is returned by [Molecule.SetBondOrder] when the order
	// is not one of the committed whole orders 0, 1, 2 or 3, and by
	// [Molecule.AddBond] when the order is not a whole order or [Aromatic].
	ErrInvalidOrder = errors.New("invalid bond order")
)

// NoBond is the sentinel returned by [Molecule.BondOrder] for a pair of
// atoms that has never been bonded. It is distinct from 0, which marks a
// bond that existed and was broken (and can re-form).
const NoBond = -1.0

// Aromatic is the fractional order used for bonds read from an aromatic
// ring system. Aromatic orders appear only at construction time; committed
// writes through [Molecule.SetBondOrder] accept whole orders only.
const Aromatic = 1.5

// Vec3 is a position in molfile coordinate space. Mechanism bookkeeping
// never interprets positions; they pass through to renderers unchanged.
type Vec3 struct {
	X, Y, Z float64
}

// Atom is a single atom in a molecule.
//
// The zero value is a usable placeholder but not a meaningful atom; Symbol
// should be set before the atom is added. Unknown symbols are legal and
// simply contribute no electron bookkeeping downstream.
type Atom struct {
	Symbol   string // element symbol as written ("C", "O", "Br", ...)
	Charge   int    // formal charge at construction time
	Position Vec3   // molfile coordinates (pass-through)
	Implicit int    // implicit hydrogen count (never negative)
	Radical  int    // molfile radical code (0 none, 2 doublet, 3 triplet)
	Valence  int    // molfile valence override (0 default, 1-14, 15 = zero)
}

// Bond is an undirected bond between two atom indices with A < B.
// Order is one of 0, 1, 2, 3 or [Aromatic].
type Bond struct {
	A, B  int
	Order float64
}

// bondKey normalizes an undirected pair so (a,b) and (b,a) address the
// same bond.
type bondKey struct {
	a, b int
}

func key(a, b int) bondKey {
	if a > b {
		a, b = b, a
	}
	return bondKey{a, b}
}

// Molecule is an undirected molecular graph: atoms addressed by dense
// indices starting at 0, bonds stored once per unordered pair.
//
// Bonds whose order drops to 0 stay in the molecule. They keep their
// adjacency entries and report order 0, distinguishing a broken bond
// (which can re-form) from a pair that was never bonded ([NoBond]).
//
// The zero value is not usable - use [New] or [ParseMolfile].
// Molecule is not safe for concurrent use without external synchronization.
type Molecule struct {
	atoms []Atom
	bonds map[bondKey]float64
	adj   map[int][]int
}

// New creates an empty molecule.
func New() *Molecule {
	return &Molecule{
		bonds: make(map[bondKey]float64),
		adj:   make(map[int][]int),
	}
}

// AddAtom appends an atom and returns its index.
// A negative Implicit count is clamped to 0.
func (m *Molecule) AddAtom(a Atom) int {
	if a.Implicit < 0 {
		a.Implicit = 0
	}
	m.atoms = append(m.atoms, a)
	return len(m.atoms) - 1
}

// AddBond creates a bond between two existing atoms. The order must be a
// whole order 0-3 or [Aromatic]. Adding a bond that already exists
// overwrites its order.
//
// Returns ErrAtomOutOfRange, ErrSelfBond or ErrInvalidOrder. On error the
// molecule is unchanged.
func (m *Molecule) AddBond(a, b int, order float64) error {
	if !m.valid(a) || !m.valid(b) {
		return ErrAtomOutOfRange
	}
	if a == b {
		return ErrSelfBond
	}
	if !wholeOrder(order) && order != Aromatic {
		return ErrInvalidOrder
	}
	m.link(a, b)
	m.bonds[key(a, b)] = order
	return nil
}

// link records adjacency for both endpoints unless already present.
func (m *Molecule) link(a, b int) {
	if _, exists := m.bonds[key(a, b)]; exists {
		return
	}
	m.adj[a] = append(m.adj[a], b)
	m.adj[b] = append(m.adj[b], a)
}

func wholeOrder(order float64) bool {
	return order == 0 || order == 1 || order == 2 || order == 3
}

func (m *Molecule) valid(i int) bool { return i >= 0 && i < len(m.atoms) }

// AtomCount returns the number of atoms in the molecule.
func (m *Molecule) AtomCount() int { return len(m.atoms) }

// BondCount returns the number of tracked bonds, including broken
// order-0 bonds.
func (m *Molecule) BondCount() int { return len(m.bonds) }

// Symbol returns the element symbol of atom i, or "" for an unknown index.
func (m *Molecule) Symbol(i int) string {
	if !m.valid(i) {
		return ""
	}
	return m.atoms[i].Symbol
}

// Charge returns the construction-time formal charge of atom i, or 0 for
// an unknown index. After a mechanism session starts, its ledger owns the
// evolving charges; this accessor keeps reporting the parsed value.
func (m *Molecule) Charge(i int) int {
	if !m.valid(i) {
		return 0
	}
	return m.atoms[i].Charge
}

// Position returns the coordinates of atom i, or the zero vector for an
// unknown index.
func (m *Molecule) Position(i int) Vec3 {
	if !m.valid(i) {
		return Vec3{}
	}
	return m.atoms[i].Position
}

// ImplicitHydrogens returns the implicit hydrogen count of atom i, or 0
// for an unknown index.
func (m *Molecule) ImplicitHydrogens(i int) int {
	if !m.valid(i) {
		return 0
	}
	return m.atoms[i].Implicit
}

// Radical returns the molfile radical code of atom i, or 0 for an unknown
// index.
func (m *Molecule) Radical(i int) int {
	if !m.valid(i) {
		return 0
	}
	return m.atoms[i].Radical
}

// Neighbors returns the indices of atoms that share a bond with atom i,
// including broken order-0 bonds. Returns nil for an unknown or isolated
// atom. The returned slice should not be modified - use it as a read-only
// view.
func (m *Molecule) Neighbors(i int) []int { return m.adj[i] }

// BondOrder returns the order of the bond between a and b: 0-3, [Aromatic],
// or [NoBond] when the pair has never been bonded. Argument order does not
// matter.
func (m *Molecule) BondOrder(a, b int) float64 {
	if order, ok := m.bonds[key(a, b)]; ok {
		return order
	}
	return NoBond
}

// SetBondOrder commits a new order for the pair (a,b). The order must be a
// whole order 0-3; fractional aromatic orders are never committed. Writing
// to a pair that has never been bonded creates the bond, so order changes
// can form bonds as well as break them. Writing order 0 keeps the bond
// tracked (a broken bond that can re-form).
//
// Returns ErrAtomOutOfRange, ErrSelfBond or ErrInvalidOrder. On error the
// molecule is unchanged.
func (m *Molecule) SetBondOrder(a, b int, order float64) error {
	if !m.valid(a) || !m.valid(b) {
		return ErrAtomOutOfRange
	}
	if a == b {
		return ErrSelfBond
	}
	if !wholeOrder(order) {
		return ErrInvalidOrder
	}
	m.link(a, b)
	m.bonds[key(a, b)] = order
	return nil
}

// Bonds returns all bonds sorted by (A, B). Modifications to the returned
// slice do not affect the molecule.
func (m *Molecule) Bonds() []Bond {
	keys := slices.SortedFunc(maps.Keys(m.bonds), func(x, y bondKey) int {
		if x.a != y.a {
			return x.a - y.a
		}
		return x.b - y.b
	})
	bonds := make([]Bond, 0, len(keys))
	for _, k := range keys {
		bonds = append(bonds, Bond{A: k.a, B: k.b, Order: m.bonds[k]})
	}
	return bonds
}

// Clone returns a deep copy of the molecule. The copy shares no state with
// the original, so a mechanism session can mutate it freely while the
// source molecule stays pristine.
func (m *Molecule) Clone() *Molecule {
	c := &Molecule{
		atoms: slices.Clone(m.atoms),
		bonds: maps.Clone(m.bonds),
		adj:   make(map[int][]int, len(m.adj)),
	}
	for i, ns := range m.adj {
		c.adj[i] = slices.Clone(ns)
	}
	return c
}
