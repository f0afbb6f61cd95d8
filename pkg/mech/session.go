package mech

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGraph is returned by [NewSession] when no molecular graph is
	// supplied. Every other operation lives on a session and therefore
	// always has a graph attached.
	ErrNoGraph = errors.New("no molecular graph attached")

	// ErrInvalidMove is returned by the move operations when their
	// preconditions fail: an atom index outside the graph, indistinct
	// path atoms, a lone-pair push from an atom with neither negative
	// charge nor a lone pair, or homolysis of a bond that is not there.
	// A rejected move mutates nothing.
	ErrInvalidMove = errors.New("move preconditions not met")

	// ErrStateMismatch is returned by [RestoreSession] when the persisted
	// charges do not line up with the graph's atoms.
	ErrStateMismatch = errors.New("restored state does not match the graph")
)

// Graph is the read/write view of a molecular graph the mechanism engine
// needs. It is deliberately narrow: atoms are dense indices, bonds are
// addressed by unordered index pairs, and the only mutation is committing
// a bond order.
//
// BondOrder reports a negative sentinel for pairs that have never been
// bonded and the fractional 1.5 for aromatic bonds; SetBondOrder must
// accept whole orders 0 through 3 and create the bond when the pair is
// new. *mol.Molecule satisfies this interface.
type Graph interface {
	AtomCount() int
	Symbol(i int) string
	Charge(i int) int
	Neighbors(i int) []int
	BondOrder(a, b int) float64
	SetBondOrder(a, b int, order float64) error
	ImplicitHydrogens(i int) int
}

// Session is one electron-pushing session over a molecular graph: the
// charge ledger, the accounting engine and the bond transition machine,
// wired together behind the four curved-arrow moves.
//
// A session assumes a single logical thread of control. Moves, advances
// and reads must not race; callers that share a session across goroutines
// (an HTTP handler plus a ticker, say) serialize access themselves.
//
// The zero value is not usable - use [NewSession].
type Session struct {
	g      Graph
	ledger *Ledger
	acct   *Accounting
	trans  *machine
}

// NewSession creates a session over g. The ledger is seeded from the
// graph's formal charges, one entry per atom; from here on the ledger is
// the authoritative charge source and the graph's own charge fields go
// stale with the first move.
//
// Returns ErrNoGraph when g is nil.
func NewSession(g Graph) (*Session, error) {
	if g == nil {
		return nil, ErrNoGraph
	}
	ledger := NewLedger()
	for i := 0; i < g.AtomCount(); i++ {
		ledger.SetCharge(i, g.Charge(i))
	}
	return &Session{
		g:      g,
		ledger: ledger,
		acct:   NewAccounting(g, ledger),
		trans:  newMachine(g),
	}, nil
}

// RestoreSession rebuilds a session around g using previously captured
// ledger charges instead of the charges parsed into the graph. The graph
// charges go stale as soon as moves run, so round-tripping a session
// through persistence must carry the ledger explicitly; charges[i] becomes
// the ledger charge of atom i. Unpaired electrons are re-derived from the
// graph and the restored charges. Transitions that were in flight at
// capture time are not recoverable and the restored session starts with
// none.
func RestoreSession(g Graph, charges []int) (*Session, error) {
	if g == nil {
		return nil, ErrNoGraph
	}
	if len(charges) != g.AtomCount() {
		return nil, fmt.Errorf("%w: %d charges for %d atoms", ErrStateMismatch, len(charges), g.AtomCount())
	}
	ledger := NewLedger()
	for i, c := range charges {
		ledger.SetCharge(i, c)
	}
	return &Session{
		g:      g,
		ledger: ledger,
		acct:   NewAccounting(g, ledger),
		trans:  newMachine(g),
	}, nil
}

// LonePairs returns the current lone-pair count of atom i.
func (s *Session) LonePairs(i int) int { return s.acct.LonePairs(i) }

// SingleElectrons returns the current unpaired electron count of atom i.
func (s *Session) SingleElectrons(i int) int { return s.acct.SingleElectrons(i) }

// Charge returns the ledger charge of atom i (0 for atoms outside the
// graph).
func (s *Session) Charge(i int) int { return s.ledger.Charge(i) }

// ActiveTransition returns the in-flight transition for the bond (a,b),
// if any. Argument order does not matter. Sampling progress has no side
// effects and must never be used for correctness decisions; it exists for
// renderers.
func (s *Session) ActiveTransition(a, b int) (Transition, bool) {
	return s.trans.active(a, b)
}

// Transitions returns all in-flight transitions sorted by bond pair.
func (s *Session) Transitions() []Transition { return s.trans.list() }

// Advance moves every active transition forward by step and returns the
// transitions that completed in this pass, sorted by bond pair. Completed
// transitions have their target order committed to the graph and their
// entries removed; the electron accounting is then recomputed for every
// atom so lone-pair and radical counts reflect the new connectivity.
//
// The session never schedules itself. An external loop (animation frame,
// ticker, test) calls Advance once per tick with its chosen step; a
// transition that never sees another call simply stays in flight.
func (s *Session) Advance(step float64) []Completion {
	done := s.trans.advance(step)
	if len(done) > 0 {
		s.acct.Refresh()
	}
	return done
}

// PushLonePairToBond pushes a lone pair from the donor atom into the bond
// between donor and acceptor, raising its order by one (capped at 3, so
// pushing into a triple bond animates but commits the same order). The
// pair to push must be visible: the donor needs a negative ledger charge
// or a positive lone-pair count, otherwise the move is rejected with
// ErrInvalidMove and nothing changes.
//
// On success the donor's charge goes up by one, the acceptor's down by
// one, and one cached lone pair is consumed from the donor when one was
// available. The charge moves even when the pair came from bare negative
// charge with no lone pair behind it.
func (s *Session) PushLonePairToBond(donor, acceptor int) error {
	if err := s.checkAtoms(donor, acceptor); err != nil {
		return err
	}
	if donor == acceptor {
		return fmt.Errorf("%w: bond endpoints must be distinct", ErrInvalidMove)
	}
	if s.ledger.Charge(donor) >= 0 && s.acct.LonePairs(donor) <= 0 {
		return fmt.Errorf("%w: atom %d has neither negative charge nor a lone pair", ErrInvalidMove, donor)
	}
	if err := s.trans.start(donor, acceptor, DirectionIncrease, MoveLonePairToBond); err != nil {
		return err
	}
	if err := s.ledger.Adjust(donor, +1); err != nil {
		return err
	}
	if err := s.ledger.Adjust(acceptor, -1); err != nil {
		return err
	}
	s.acct.takeLonePair(donor)
	return nil
}

// PushBondToAtom collapses the bonding pair of (donor, acceptor) onto the
// acceptor atom, lowering the bond order by one (floored at 0). There is
// no precondition beyond valid, distinct atoms: pushing out of an already
// broken bond animates 0 to 0.
//
// The acceptor keeps both electrons, so its charge goes down by one and
// the donor's up by one.
func (s *Session) PushBondToAtom(donor, acceptor int) error {
	if err := s.checkAtoms(donor, acceptor); err != nil {
		return err
	}
	if donor == acceptor {
		return fmt.Errorf("%w: bond endpoints must be distinct", ErrInvalidMove)
	}
	if err := s.trans.start(donor, acceptor, DirectionDecrease, MoveBondToAtom); err != nil {
		return err
	}
	if err := s.ledger.Adjust(acceptor, -1); err != nil {
		return err
	}
	return s.ledger.Adjust(donor, +1)
}

// PushBondToBond shifts a bonding pair one bond over along the path
// a-b-c: the (a,b) order goes down by one while the (b,c) order goes up
// by one (forming the bond if the pair was never bonded). The two
// transitions start together but animate independently; there is no
// barrier making them commit in the same pass.
//
// Atom a's charge goes up by one, atom c's down by one, and b, which only
// relays the pair, is untouched. The three atoms must be distinct.
func (s *Session) PushBondToBond(a, b, c int) error {
	if err := s.checkAtoms(a, b, c); err != nil {
		return err
	}
	if a == b || b == c || a == c {
		return fmt.Errorf("%w: path atoms must be distinct", ErrInvalidMove)
	}
	// Validate both bonds up front so a rejection cannot strand a
	// half-started move.
	if err := s.trans.checkWhole(a, b); err != nil {
		return err
	}
	if err := s.trans.checkWhole(b, c); err != nil {
		return err
	}
	if err := s.trans.start(a, b, DirectionDecrease, MoveBondToBond); err != nil {
		return err
	}
	if err := s.trans.start(b, c, DirectionIncrease, MoveBondToBond); err != nil {
		return err
	}
	if err := s.ledger.Adjust(a, +1); err != nil {
		return err
	}
	return s.ledger.Adjust(c, -1)
}

// Homolyze splits the bonding pair of (a,b) evenly: each endpoint gains
// one unpaired electron and the bond order goes down by one. Charges do
// not move; a homolytic cleavage is charge-neutral. The bond must
// currently have a positive order, otherwise the move is rejected with
// ErrInvalidMove.
func (s *Session) Homolyze(a, b int) error {
	if err := s.checkAtoms(a, b); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w: bond endpoints must be distinct", ErrInvalidMove)
	}
	if s.g.BondOrder(a, b) <= 0 {
		return fmt.Errorf("%w: no bond between atoms %d and %d", ErrInvalidMove, a, b)
	}
	if err := s.trans.start(a, b, DirectionDecrease, MoveHomolysis); err != nil {
		return err
	}
	s.acct.addSingle(a)
	s.acct.addSingle(b)
	return nil
}

// checkAtoms rejects indices outside the graph.
func (s *Session) checkAtoms(atoms ...int) error {
	n := s.g.AtomCount()
	for _, i := range atoms {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: atom index %d out of range", ErrInvalidMove, i)
		}
	}
	return nil
}

// Apply runs the move named by kind against the given atoms. Moves over a
// bond take two atoms; the bond-to-bond shift takes the three path atoms
// in order. Demo scripts and the HTTP API funnel through here so move
// dispatch lives in one place.
func Apply(s *Session, kind MoveKind, atoms []int) error {
	want := 2
	if kind == MoveBondToBond {
		want = 3
	}
	if len(atoms) != want {
		return fmt.Errorf("%w: %s takes %d atoms, got %d", ErrInvalidMove, kind, want, len(atoms))
	}
	switch kind {
	case MoveLonePairToBond:
		return s.PushLonePairToBond(atoms[0], atoms[1])
	case MoveBondToAtom:
		return s.PushBondToAtom(atoms[0], atoms[1])
	case MoveBondToBond:
		return s.PushBondToBond(atoms[0], atoms[1], atoms[2])
	case MoveHomolysis:
		return s.Homolyze(atoms[0], atoms[1])
	default:
		return fmt.Errorf("%w: unknown move kind %d", ErrInvalidMove, kind)
	}
}
