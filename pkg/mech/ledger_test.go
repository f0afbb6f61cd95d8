package mech_test

import (
	"errors"
	"testing"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
)

func TestLedger(t *testing.T) {
	l := mech.NewLedger()

	if got := l.Charge(3); got != 0 {
		t.Errorf("Charge(unset) = %d, want 0", got)
	}

	l.SetCharge(3, -1)
	if got := l.Charge(3); got != -1 {
		t.Errorf("Charge = %d, want -1", got)
	}

	if err := l.Adjust(3, 2); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if got := l.Charge(3); got != 1 {
		t.Errorf("Charge after Adjust = %d, want 1", got)
	}

	l.SetCharge(3, 5)
	if got := l.Charge(3); got != 5 {
		t.Errorf("Charge after SetCharge = %d, want 5", got)
	}
}

func TestLedgerAdjustUnseeded(t *testing.T) {
	l := mech.NewLedger()
	l.SetCharge(0, 0)

	err := l.Adjust(7, 1)
	if !errors.Is(err, mech.ErrUnseededAtom) {
		t.Fatalf("Adjust(unseeded) error = %v, want ErrUnseededAtom", err)
	}
	if got := l.Charge(7); got != 0 {
		t.Errorf("Charge(7) after failed Adjust = %d, want 0", got)
	}

	// A zero charge is still a seeded entry.
	if err := l.Adjust(0, -1); err != nil {
		t.Fatalf("Adjust(seeded zero): %v", err)
	}
}
