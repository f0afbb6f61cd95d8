package mech

import (
	"errors"
	"fmt"
)

// ErrUnseededAtom is returned by [Ledger.Adjust] when the atom index was
// never initialized. A session seeds every atom at construction time, so
// seeing this error means a charge delta was aimed at an atom outside the
// graph it was built for.
var ErrUnseededAtom = errors.New("atom was never seeded in the charge ledger")

// Ledger is the authoritative per-atom formal charge store for a
// manipulation session. It is seeded once from the graph's formal charges
// when the session is created; after the first move the graph's own charge
// fields are stale and only the ledger is current.
//
// The zero value is not usable - use [NewLedger].
type Ledger struct {
	charges map[int]int
}

// NewLedger creates an empty ledger. Callers seed it with [Ledger.SetCharge]
// before handing it to an accounting engine.
func NewLedger() *Ledger {
	return &Ledger{charges: make(map[int]int)}
}

// Charge returns the charge of atom i, or 0 when the atom was never set.
func (l *Ledger) Charge(i int) int { return l.charges[i] }

// SetCharge overwrites the charge of atom i unconditionally, seeding the
// atom if it was not tracked before.
func (l *Ledger) SetCharge(i, value int) { l.charges[i] = value }

// Adjust adds delta to the charge of atom i. Unlike [Ledger.SetCharge] it
// refuses to invent entries: adjusting an atom that was never seeded
// returns ErrUnseededAtom, since that indicates a bookkeeping bug rather
// than a legitimate charge movement.
func (l *Ledger) Adjust(i, delta int) error {
	if _, ok := l.charges[i]; !ok {
		return fmt.Errorf("%w: atom %d", ErrUnseededAtom, i)
	}
	l.charges[i] += delta
	return nil
}
