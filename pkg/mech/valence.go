package mech

// valenceElectrons maps element symbols to the valence electron count used
// by the accounting engine. Main-group elements only; transition metals do
// not fit the lone-pair formalism and stay unknown on purpose.
var valenceElectrons = map[string]int{
	"H": 1, "He": 2,
	"Li": 1, "Be": 2, "B": 3, "C": 4, "N": 5, "O": 6, "F": 7, "Ne": 8,
	"Na": 1, "Mg": 2, "Al": 3, "Si": 4, "P": 5, "S": 6, "Cl": 7, "Ar": 8,
	"K": 1, "Ca": 2, "Se": 6, "Br": 7, "I": 7,
}

// Valence returns the number of valence electrons for an element symbol
// and whether the symbol is known. Unknown symbols are not an error;
// accounting treats their atoms as having no electrons to book.
func Valence(symbol string) (int, bool) {
	v, ok := valenceElectrons[symbol]
	return v, ok
}
