package mech

import "math"

// Accounting derives per-atom electron bookkeeping (lone pairs and
// unpaired single electrons) from the graph's connectivity and the
// ledger's charges.
//
// Results are cached per atom. The cache is rebuilt from scratch whenever
// bond orders change ([Session.Advance] refreshes it after every committed
// transition), so reads between mutations are cheap and consistent. Two
// mutations adjust the cache directly instead of recomputing: a lone-pair
// push consumes one cached pair from the donor, and homolysis adds one
// single electron to each endpoint. Both become visible immediately, while
// the underlying bond order is still animating toward the state that will
// re-derive them.
//
// The zero value is not usable - use [NewAccounting].
type Accounting struct {
	g      Graph
	ledger *Ledger
	pairs  map[int]int
	// singles holds the raw remainder, which can be fractional when an
	// atom carries an odd number of aromatic bonds. Readers see the
	// floored integer.
	singles map[int]float64
}

// NewAccounting creates an accounting engine over a graph and a charge
// ledger and computes the bookkeeping for every atom. The ledger should
// already be seeded; charges are always read through it, never from the
// graph.
func NewAccounting(g Graph, ledger *Ledger) *Accounting {
	a := &Accounting{
		g:       g,
		ledger:  ledger,
		pairs:   make(map[int]int),
		singles: make(map[int]float64),
	}
	a.Refresh()
	return a
}

// Compute recomputes the lone-pair and single-electron counts for atom i
// from the current graph state, stores both, and returns them.
//
// The rules, applied in order:
//
//   - An unknown element symbol yields 0 lone pairs and 0 single
//     electrons. Not an error.
//   - totalBondOrder is the sum of incident bond orders (aromatic bonds
//     count 1.5) plus the implicit hydrogen count, EXCEPT that a
//     non-carbon atom with at least one implicit hydrogen counts only its
//     explicit bond orders.
//   - nonBonding = valence(symbol) - totalBondOrder + charge(i).
//   - lone pairs = floor(nonBonding/2), floored toward negative infinity
//     and never below 0. Single electrons are the non-negative remainder
//     nonBonding - 2*floor(nonBonding/2).
func (a *Accounting) Compute(i int) (pairs, singles int) {
	v, ok := Valence(a.g.Symbol(i))
	if !ok {
		a.pairs[i] = 0
		a.singles[i] = 0
		return 0, 0
	}

	nonBonding := float64(v) - a.totalBondOrder(i) + float64(a.ledger.Charge(i))
	half := math.Floor(nonBonding / 2)
	remainder := nonBonding - 2*half

	pairs = int(half)
	if pairs < 0 {
		pairs = 0
	}
	a.pairs[i] = pairs
	a.singles[i] = remainder
	return pairs, int(math.Floor(remainder))
}

// totalBondOrder sums the incident bond orders of atom i plus its implicit
// hydrogens. Non-carbon atoms with implicit hydrogens drop the hydrogen
// term: their displayed valence already folds those hydrogens in, and
// counting them twice would eat their lone pairs.
func (a *Accounting) totalBondOrder(i int) float64 {
	var sum float64
	for _, n := range a.g.Neighbors(i) {
		sum += a.g.BondOrder(i, n)
	}
	h := a.g.ImplicitHydrogens(i)
	if h > 0 && a.g.Symbol(i) != "C" {
		return sum
	}
	return sum + float64(h)
}

// Refresh recomputes the bookkeeping for every atom in the graph.
func (a *Accounting) Refresh() {
	for i := 0; i < a.g.AtomCount(); i++ {
		a.Compute(i)
	}
}

// LonePairs returns the cached lone-pair count of atom i. Atoms never
// computed (out-of-range indices) report 0.
func (a *Accounting) LonePairs(i int) int { return a.pairs[i] }

// SingleElectrons returns the cached unpaired electron count of atom i,
// floored to a whole electron. Atoms never computed report 0.
func (a *Accounting) SingleElectrons(i int) int {
	return int(math.Floor(a.singles[i]))
}

// takeLonePair consumes one cached lone pair from atom i if one is
// available and reports whether it did.
func (a *Accounting) takeLonePair(i int) bool {
	if a.pairs[i] > 0 {
		a.pairs[i]--
		return true
	}
	return false
}

// addSingle credits atom i with one unpaired electron.
func (a *Accounting) addSingle(i int) { a.singles[i]++ }
