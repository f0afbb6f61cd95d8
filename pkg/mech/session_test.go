package mech_test

import (
	"errors"
	"testing"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

var _ mech.Graph = (*mol.Molecule)(nil)

// run advances the session in quarter steps until nothing is in flight,
// returning every completion seen. The cap guards against a transition
// that never finishes.
func run(t *testing.T, s *mech.Session) []mech.Completion {
	t.Helper()
	var done []mech.Completion
	for i := 0; i < 16; i++ {
		done = append(done, s.Advance(0.25)...)
		if len(s.Transitions()) == 0 {
			return done
		}
	}
	t.Fatal("transitions still active after 16 ticks")
	return nil
}

func newSession(t *testing.T, m *mol.Molecule) *mech.Session {
	t.Helper()
	s, err := mech.NewSession(m)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// ethane is two carbons joined by a single bond.
func ethane() *mol.Molecule {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	m.AddBond(0, 1, 1)
	return m
}

// methoxide is CH3-O(-).
func methoxide() *mol.Molecule {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "O", Charge: -1})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	m.AddBond(0, 1, 1)
	return m
}

func TestNewSessionNilGraph(t *testing.T) {
	if _, err := mech.NewSession(nil); !errors.Is(err, mech.ErrNoGraph) {
		t.Fatalf("NewSession(nil) error = %v, want ErrNoGraph", err)
	}
}

func TestSessionSeedsLedgerFromGraph(t *testing.T) {
	s := newSession(t, methoxide())

	if got := s.Charge(0); got != -1 {
		t.Errorf("Charge(0) = %d, want -1", got)
	}
	if got := s.Charge(1); got != 0 {
		t.Errorf("Charge(1) = %d, want 0", got)
	}
}

func TestPushBondToAtom(t *testing.T) {
	m := ethane()
	s := newSession(t, m)

	if err := s.PushBondToAtom(0, 1); err != nil {
		t.Fatalf("PushBondToAtom: %v", err)
	}

	// Charges move when the arrow is drawn, not when the bond finishes
	// breaking.
	if got := s.Charge(0); got != 1 {
		t.Errorf("donor charge = %d, want 1", got)
	}
	if got := s.Charge(1); got != -1 {
		t.Errorf("acceptor charge = %d, want -1", got)
	}
	if got := m.BondOrder(0, 1); got != 1 {
		t.Errorf("order mid-flight = %v, want 1", got)
	}

	done := run(t, s)
	if len(done) != 1 {
		t.Fatalf("completions = %d, want 1", len(done))
	}
	c := done[0]
	if c.A != 0 || c.B != 1 || c.Order != 0 || c.Kind != mech.MoveBondToAtom || c.Err != nil {
		t.Errorf("completion = %+v, want {0 1 0 bond-to-atom <nil>}", c)
	}

	if got := m.BondOrder(0, 1); got != 0 {
		t.Errorf("order = %v, want 0", got)
	}
	if _, ok := s.ActiveTransition(0, 1); ok {
		t.Error("transition still active after completion")
	}

	// The ledger is authoritative; the molecule's parsed charges are
	// stale once a move has run.
	if got := m.Charge(0); got != 0 {
		t.Errorf("graph charge = %d, want stale 0", got)
	}
}

func TestPushLonePairToBondRejected(t *testing.T) {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 4})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 4})
	s := newSession(t, m)

	err := s.PushLonePairToBond(0, 1)
	if !errors.Is(err, mech.ErrInvalidMove) {
		t.Fatalf("error = %v, want ErrInvalidMove", err)
	}

	if _, ok := s.ActiveTransition(0, 1); ok {
		t.Error("rejected move created a transition")
	}
	if s.Charge(0) != 0 || s.Charge(1) != 0 {
		t.Errorf("charges = %d, %d, want 0, 0", s.Charge(0), s.Charge(1))
	}
	if got := m.BondOrder(0, 1); got != mol.NoBond {
		t.Errorf("order = %v, want NoBond", got)
	}
}

func TestPushLonePairToBond(t *testing.T) {
	m := methoxide()
	s := newSession(t, m)

	before := s.LonePairs(0)
	if before != 2 {
		t.Fatalf("LonePairs(0) = %d, want 2", before)
	}

	if err := s.PushLonePairToBond(0, 1); err != nil {
		t.Fatalf("PushLonePairToBond: %v", err)
	}

	// The pushed pair disappears immediately, while the bond is still
	// animating toward its new order.
	if got := s.LonePairs(0); got != before-1 {
		t.Errorf("LonePairs mid-flight = %d, want %d", got, before-1)
	}
	if got := s.Charge(0); got != 0 {
		t.Errorf("donor charge = %d, want 0", got)
	}
	if got := s.Charge(1); got != -1 {
		t.Errorf("acceptor charge = %d, want -1", got)
	}

	tr, ok := s.ActiveTransition(0, 1)
	if !ok {
		t.Fatal("no active transition")
	}
	if tr.InitialOrder != 1 || tr.TargetOrder != 2 || tr.Kind != mech.MoveLonePairToBond {
		t.Errorf("transition = %+v, want initial 1, target 2, lone-pair-to-bond", tr)
	}

	run(t, s)
	if got := m.BondOrder(0, 1); got != 2 {
		t.Errorf("order = %v, want 2", got)
	}
}

// A bare negative charge qualifies as a pushable pair even when the
// accounting shows no lone pairs; the charge still moves.
func TestPushLonePairToBondChargeOnly(t *testing.T) {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "Xx", Charge: -1})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	s := newSession(t, m)

	if got := s.LonePairs(0); got != 0 {
		t.Fatalf("LonePairs(0) = %d, want 0", got)
	}
	if err := s.PushLonePairToBond(0, 1); err != nil {
		t.Fatalf("PushLonePairToBond: %v", err)
	}
	if got := s.Charge(0); got != 0 {
		t.Errorf("donor charge = %d, want 0", got)
	}
	if got := s.LonePairs(0); got != 0 {
		t.Errorf("LonePairs = %d, want 0 still", got)
	}

	run(t, s)
	if got := m.BondOrder(0, 1); got != 1 {
		t.Errorf("order = %v, want 1 (bond formed)", got)
	}
}

func TestPushBondToBond(t *testing.T) {
	// Propene-like chain: C0=C1-C2.
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 2})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 1})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 2})
	m.AddBond(0, 1, 2)
	m.AddBond(1, 2, 1)
	s := newSession(t, m)

	if err := s.PushBondToBond(0, 1, 2); err != nil {
		t.Fatalf("PushBondToBond: %v", err)
	}

	if len(s.Transitions()) != 2 {
		t.Fatalf("active transitions = %d, want 2", len(s.Transitions()))
	}

	done := run(t, s)
	if len(done) != 2 {
		t.Fatalf("completions = %d, want 2", len(done))
	}

	if got := m.BondOrder(0, 1); got != 1 {
		t.Errorf("order(0,1) = %v, want 1", got)
	}
	if got := m.BondOrder(1, 2); got != 2 {
		t.Errorf("order(1,2) = %v, want 2", got)
	}
	if got := s.Charge(0); got != 1 {
		t.Errorf("charge(0) = %d, want 1", got)
	}
	if got := s.Charge(1); got != 0 {
		t.Errorf("charge(1) = %d, want 0", got)
	}
	if got := s.Charge(2); got != -1 {
		t.Errorf("charge(2) = %d, want -1", got)
	}
}

func TestPushBondToBondFormsNewBond(t *testing.T) {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 4})
	m.AddBond(0, 1, 1)
	s := newSession(t, m)

	if err := s.PushBondToBond(0, 1, 2); err != nil {
		t.Fatalf("PushBondToBond: %v", err)
	}
	run(t, s)

	if got := m.BondOrder(0, 1); got != 0 {
		t.Errorf("order(0,1) = %v, want 0", got)
	}
	if got := m.BondOrder(1, 2); got != 1 {
		t.Errorf("order(1,2) = %v, want 1 (formed)", got)
	}
}

func TestIncreaseAtTripleIsIdempotent(t *testing.T) {
	// Acetylide-flavored: negatively charged carbon triple-bonded to
	// carbon.
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Charge: -1})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 1})
	m.AddBond(0, 1, 3)
	s := newSession(t, m)

	if err := s.PushLonePairToBond(0, 1); err != nil {
		t.Fatalf("PushLonePairToBond at triple: %v", err)
	}
	tr, ok := s.ActiveTransition(0, 1)
	if !ok {
		t.Fatal("no active transition")
	}
	if tr.TargetOrder != 3 {
		t.Errorf("target = %v, want 3", tr.TargetOrder)
	}

	done := run(t, s)
	if len(done) != 1 || done[0].Err != nil {
		t.Fatalf("completions = %+v, want one clean completion", done)
	}
	if got := m.BondOrder(0, 1); got != 3 {
		t.Errorf("order = %v, want 3", got)
	}
	// The charge bookkeeping still ran.
	if got := s.Charge(0); got != 0 {
		t.Errorf("charge(0) = %d, want 0", got)
	}
	if got := s.Charge(1); got != -1 {
		t.Errorf("charge(1) = %d, want -1", got)
	}
}

// Increasing then decreasing the same bond restores the order but not the
// charges. The asymmetry is the point: arrows move charge the same way
// regardless of which direction the order went.
func TestOrderRoundTripChargesDoNot(t *testing.T) {
	m := methoxide()
	s := newSession(t, m)

	if err := s.PushLonePairToBond(0, 1); err != nil {
		t.Fatalf("PushLonePairToBond: %v", err)
	}
	run(t, s)
	if err := s.PushBondToAtom(0, 1); err != nil {
		t.Fatalf("PushBondToAtom: %v", err)
	}
	run(t, s)

	if got := m.BondOrder(0, 1); got != 1 {
		t.Errorf("order = %v, want 1 (restored)", got)
	}
	if got := s.Charge(0); got != 1 {
		t.Errorf("charge(0) = %d, want 1", got)
	}
	if got := s.Charge(1); got != -2 {
		t.Errorf("charge(1) = %d, want -2", got)
	}
}

func TestStartReplacesActiveTransition(t *testing.T) {
	m := methoxide()
	s := newSession(t, m)

	if err := s.PushLonePairToBond(0, 1); err != nil {
		t.Fatalf("PushLonePairToBond: %v", err)
	}
	s.Advance(0.5)

	// Replacing mid-flight: the increase never commits.
	if err := s.PushBondToAtom(0, 1); err != nil {
		t.Fatalf("PushBondToAtom: %v", err)
	}
	tr, ok := s.ActiveTransition(1, 0)
	if !ok {
		t.Fatal("no active transition after replacement")
	}
	if tr.Progress != 0 {
		t.Errorf("progress = %v, want 0 (fresh entry)", tr.Progress)
	}
	if tr.Kind != mech.MoveBondToAtom || tr.TargetOrder != 0 {
		t.Errorf("transition = %+v, want bond-to-atom toward 0", tr)
	}

	done := run(t, s)
	if len(done) != 1 || done[0].Kind != mech.MoveBondToAtom {
		t.Fatalf("completions = %+v, want single bond-to-atom", done)
	}
	if got := m.BondOrder(0, 1); got != 0 {
		t.Errorf("order = %v, want 0", got)
	}
}

func TestHomolyze(t *testing.T) {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "Br"})
	m.AddAtom(mol.Atom{Symbol: "Br"})
	m.AddBond(0, 1, 1)
	s := newSession(t, m)

	if err := s.Homolyze(0, 1); err != nil {
		t.Fatalf("Homolyze: %v", err)
	}

	// Radical electrons appear immediately; charges never move.
	for _, i := range []int{0, 1} {
		if got := s.SingleElectrons(i); got != 1 {
			t.Errorf("SingleElectrons(%d) mid-flight = %d, want 1", i, got)
		}
		if got := s.Charge(i); got != 0 {
			t.Errorf("Charge(%d) = %d, want 0", i, got)
		}
	}

	run(t, s)
	if got := m.BondOrder(0, 1); got != 0 {
		t.Errorf("order = %v, want 0", got)
	}
	// Recomputed from the broken bond, the books still show one unpaired
	// electron per bromine.
	for _, i := range []int{0, 1} {
		if got := s.SingleElectrons(i); got != 1 {
			t.Errorf("SingleElectrons(%d) = %d, want 1", i, got)
		}
		if got := s.LonePairs(i); got != 3 {
			t.Errorf("LonePairs(%d) = %d, want 3", i, got)
		}
	}

	// The bond is gone now, so a second homolysis is rejected.
	if err := s.Homolyze(0, 1); !errors.Is(err, mech.ErrInvalidMove) {
		t.Errorf("Homolyze(broken) error = %v, want ErrInvalidMove", err)
	}
}

func TestHomolyzeRequiresBond(t *testing.T) {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 4})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 4})
	s := newSession(t, m)

	if err := s.Homolyze(0, 1); !errors.Is(err, mech.ErrInvalidMove) {
		t.Fatalf("Homolyze(unbonded) error = %v, want ErrInvalidMove", err)
	}
	if got := s.SingleElectrons(0); got != 0 {
		t.Errorf("SingleElectrons = %d, want 0 after rejection", got)
	}
}

func aromaticPair() *mol.Molecule {
	m := mol.New()
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 1})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 1})
	m.AddAtom(mol.Atom{Symbol: "C", Implicit: 3})
	m.AddBond(0, 1, mol.Aromatic)
	m.AddBond(1, 2, 1)
	return m
}

func TestAromaticBondsAreRejected(t *testing.T) {
	tests := []struct {
		name string
		move func(s *mech.Session) error
	}{
		{name: "BondToAtom", move: func(s *mech.Session) error { return s.PushBondToAtom(0, 1) }},
		{name: "Homolysis", move: func(s *mech.Session) error { return s.Homolyze(0, 1) }},
		{name: "BondToBondFirstLeg", move: func(s *mech.Session) error { return s.PushBondToBond(0, 1, 2) }},
		{name: "BondToBondSecondLeg", move: func(s *mech.Session) error { return s.PushBondToBond(2, 1, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, aromaticPair())

			var charges, singles [3]int
			for i := range charges {
				charges[i] = s.Charge(i)
				singles[i] = s.SingleElectrons(i)
			}

			if err := tt.move(s); !errors.Is(err, mech.ErrAromaticBond) {
				t.Fatalf("error = %v, want ErrAromaticBond", err)
			}
			if got := len(s.Transitions()); got != 0 {
				t.Errorf("active transitions after rejection = %d, want 0", got)
			}
			for i := 0; i < 3; i++ {
				if got := s.Charge(i); got != charges[i] {
					t.Errorf("Charge(%d) = %d, want %d unchanged", i, got, charges[i])
				}
				if got := s.SingleElectrons(i); got != singles[i] {
					t.Errorf("SingleElectrons(%d) = %d, want %d unchanged", i, got, singles[i])
				}
			}
		})
	}
}

func TestMoveArgumentValidation(t *testing.T) {
	s := newSession(t, ethane())

	tests := []struct {
		name string
		err  error
	}{
		{name: "OutOfRange", err: s.PushBondToAtom(0, 9)},
		{name: "Negative", err: s.PushBondToAtom(-1, 1)},
		{name: "SameAtomBond", err: s.PushBondToAtom(1, 1)},
		{name: "SameAtomPush", err: s.PushLonePairToBond(0, 0)},
		{name: "PathRepeatsEnd", err: s.PushBondToBond(0, 1, 0)},
		{name: "PathRepeatsMiddle", err: s.PushBondToBond(0, 0, 1)},
		{name: "HomolyzeSelf", err: s.Homolyze(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, mech.ErrInvalidMove) {
				t.Errorf("error = %v, want ErrInvalidMove", tt.err)
			}
		})
	}
	if got := len(s.Transitions()); got != 0 {
		t.Errorf("active transitions = %d, want 0", got)
	}
}

func TestAdvance(t *testing.T) {
	m := ethane()
	s := newSession(t, m)

	if err := s.PushBondToAtom(0, 1); err != nil {
		t.Fatalf("PushBondToAtom: %v", err)
	}

	// Non-positive steps never move progress.
	if done := s.Advance(0); done != nil {
		t.Errorf("Advance(0) = %v, want nil", done)
	}
	if done := s.Advance(-0.5); done != nil {
		t.Errorf("Advance(-0.5) = %v, want nil", done)
	}
	tr, _ := s.ActiveTransition(0, 1)
	if tr.Progress != 0 {
		t.Errorf("progress = %v, want 0", tr.Progress)
	}

	// Progress accumulates monotonically across ticks.
	s.Advance(0.25)
	tr, _ = s.ActiveTransition(0, 1)
	if tr.Progress != 0.25 {
		t.Errorf("progress = %v, want 0.25", tr.Progress)
	}
	s.Advance(0.25)
	s.Advance(0.25)
	if done := s.Advance(0.25); len(done) != 1 {
		t.Fatalf("completions on final tick = %d, want 1", len(done))
	}
	if got := m.BondOrder(0, 1); got != 0 {
		t.Errorf("order = %v, want 0", got)
	}

	// Advancing an idle session is a no-op.
	if done := s.Advance(1); done != nil {
		t.Errorf("Advance(idle) = %v, want nil", done)
	}
}

func TestActiveTransitionIgnoresArgumentOrder(t *testing.T) {
	s := newSession(t, ethane())

	if err := s.PushBondToAtom(1, 0); err != nil {
		t.Fatalf("PushBondToAtom: %v", err)
	}

	forward, okF := s.ActiveTransition(0, 1)
	backward, okB := s.ActiveTransition(1, 0)
	if !okF || !okB {
		t.Fatal("transition not found under both argument orders")
	}
	if forward != backward {
		t.Errorf("lookups disagree: %+v vs %+v", forward, backward)
	}
	// Endpoints keep the donor-first order the move used.
	if forward.A != 1 || forward.B != 0 {
		t.Errorf("endpoints = %d,%d, want 1,0", forward.A, forward.B)
	}
}

func TestParseMoveKind(t *testing.T) {
	kinds := []mech.MoveKind{
		mech.MoveLonePairToBond,
		mech.MoveBondToAtom,
		mech.MoveBondToBond,
		mech.MoveHomolysis,
	}
	for _, kind := range kinds {
		got, ok := mech.ParseMoveKind(kind.String())
		if !ok || got != kind {
			t.Errorf("ParseMoveKind(%q) = %v, %v", kind.String(), got, ok)
		}
	}
	if _, ok := mech.ParseMoveKind("sigmatropic"); ok {
		t.Error("ParseMoveKind accepted an unknown name")
	}
}

func TestApply(t *testing.T) {
	s := newSession(t, methoxide())
	if err := mech.Apply(s, mech.MoveLonePairToBond, []int{0, 1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	tr, ok := s.ActiveTransition(0, 1)
	if !ok || tr.Kind != mech.MoveLonePairToBond {
		t.Errorf("Apply did not start the move: %+v, %v", tr, ok)
	}

	if err := mech.Apply(s, mech.MoveHomolysis, []int{0, 1, 2}); !errors.Is(err, mech.ErrInvalidMove) {
		t.Errorf("Apply with wrong atom count: err = %v, want ErrInvalidMove", err)
	}
	if err := mech.Apply(s, mech.MoveKind(99), []int{0, 1}); !errors.Is(err, mech.ErrInvalidMove) {
		t.Errorf("Apply with unknown kind: err = %v, want ErrInvalidMove", err)
	}
}
