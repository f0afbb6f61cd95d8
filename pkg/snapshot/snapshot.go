// Package snapshot persists mechanism sessions as JSON documents that can
// be written to disk, stored in a backend, and rebuilt later.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

// ErrInvalidSnapshot is returned by [Restore] when a snapshot does not
// describe a loadable session: the embedded molfile fails to parse, a
// bond references an atom the molfile does not declare, or the charge
// list does not cover the atoms.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// =============================================================================
// Snapshot - Session Serialization
// =============================================================================

// Snapshot is the canonical serialization format for a mechanism session
// at rest. Used for API responses, storage backends, and files on disk.
//
// A session cannot be rebuilt from its molfile alone: moves mutate bond
// orders and the charge ledger while the molfile keeps reporting the
// parsed values. A snapshot therefore carries the source molfile plus the
// live bond orders and ledger charges. Transitions that are still in
// flight at capture time are not recorded; capture after the animation
// settles.
type Snapshot struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Molfile is the V2000 source text the session was built from.
	Molfile string `json:"molfile" bson:"molfile"`

	// Charges holds the ledger charge of every atom, indexed by atom.
	Charges []int `json:"charges" bson:"charges"`

	// Singles holds the unpaired electron count of every atom. The counts
	// are informational for readers of the raw snapshot; Restore re-derives
	// them from the bonds and charges.
	Singles []int `json:"singles,omitempty" bson:"singles,omitempty"`

	// Bonds holds the live bond table, including broken order-0 bonds.
	Bonds []Bond `json:"bonds" bson:"bonds"`
}

// Bond is one entry of the live bond table, endpoints normalized A < B.
type Bond struct {
	A     int     `json:"a" bson:"a"`
	B     int     `json:"b" bson:"b"`
	Order float64 `json:"order" bson:"order"`
}

// =============================================================================
// Capture / Restore
// =============================================================================

// Capture records the current state of a session as a snapshot with a
// fresh random ID. The source is the molfile text m was parsed from; it
// is stored verbatim so a restored session sees the same atoms, implicit
// hydrogens, and element symbols.
func Capture(name, source string, m *mol.Molecule, s *mech.Session) Snapshot {
	sn := Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Molfile:   source,
	}
	for i := 0; i < m.AtomCount(); i++ {
		sn.Charges = append(sn.Charges, s.Charge(i))
		sn.Singles = append(sn.Singles, s.SingleElectrons(i))
	}
	for _, b := range m.Bonds() {
		sn.Bonds = append(sn.Bonds, Bond{A: b.A, B: b.B, Order: b.Order})
	}
	return sn
}

// Restore rebuilds the molecule and session a snapshot describes. The
// molfile is parsed, the captured bond orders are replayed over it, and
// the session ledger is seeded from the captured charges rather than the
// molfile's. The restored session starts with no active transitions.
func Restore(sn Snapshot) (*mol.Molecule, *mech.Session, error) {
	m, err := mol.ParseMolfile(sn.Molfile)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for _, b := range sn.Bonds {
		if err := m.AddBond(b.A, b.B, b.Order); err != nil {
			return nil, nil, fmt.Errorf("%w: bond %d-%d: %v", ErrInvalidSnapshot, b.A, b.B, err)
		}
	}
	s, err := mech.RestoreSession(m, sn.Charges)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return m, s, nil
}
