package mol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMolfile is returned by [ParseMolfile] when the input is not a
// readable V2000 connection table. The returned error wraps this sentinel
// and includes the offending line number where one exists.
var ErrInvalidMolfile = errors.New("invalid molfile")

// hydrogenTargets maps element symbols to the bond count an uncharged atom
// fills with implicit hydrogens. Symbols not listed (including "H" itself)
// never receive implicit hydrogens.
var hydrogenTargets = map[string]int{
	"C": 4, "Si": 4,
	"N": 3, "P": 3, "B": 3,
	"O": 2, "S": 2, "Se": 2,
	"F": 1, "Cl": 1, "Br": 1, "I": 1,
}

// ParseMolfile reads a single V2000 molfile (MDL connection table) and
// returns the molecule it describes.
//
// The parser consumes the three header lines, the counts line, the atom
// block (x, y, z coordinates and element symbol), the bond block (1-based
// atom indices; bond type 4 becomes the fractional [Aromatic] order) and
// the property block up to "M  END". Formal charges are taken from
// "M  CHG" lines and radical codes from "M  RAD" lines; the legacy
// atom-block charge column is ignored, matching how current structure
// editors write charges. Content after "M  END" (SDF data fields,
// "$$$$" separators) is ignored.
//
// After the connection table is built, implicit hydrogens are assigned:
// each atom with a known hydrogen target receives target minus the
// rounded-up sum of its explicit bond orders, floored at zero. An
// atom-block valence override (columns 49-51) replaces the element
// target, which is how charged species such as hydroxide or an allyl
// cation are written without spurious hydrogens. Explicit hydrogen atoms
// stay ordinary graph atoms and reduce their neighbor's implicit count
// through the bond sum like any other substituent.
//
// Errors wrap [ErrInvalidMolfile].
func ParseMolfile(src string) (*Molecule, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidMolfile)
	}
	r := &molfileReader{lines: strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")}

	// Header: title, program, comment. Content is not interpreted.
	for i := 0; i < 3; i++ {
		if _, ok := r.next(); !ok {
			return nil, fmt.Errorf("%w: truncated header", ErrInvalidMolfile)
		}
	}

	counts, ok := r.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing counts line", ErrInvalidMolfile)
	}
	if len(counts) < 6 {
		return nil, r.errf("counts line too short")
	}
	atomCount, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil || atomCount < 0 {
		return nil, r.errf("bad atom count %q", counts[0:3])
	}
	bondCount, err := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err != nil || bondCount < 0 {
		return nil, r.errf("bad bond count %q", counts[3:6])
	}

	m := New()
	for i := 0; i < atomCount; i++ {
		line, ok := r.next()
		if !ok {
			return nil, fmt.Errorf("%w: atom block ends after %d of %d atoms", ErrInvalidMolfile, i, atomCount)
		}
		atom, err := r.parseAtom(line)
		if err != nil {
			return nil, err
		}
		m.AddAtom(atom)
	}

	for i := 0; i < bondCount; i++ {
		line, ok := r.next()
		if !ok {
			return nil, fmt.Errorf("%w: bond block ends after %d of %d bonds", ErrInvalidMolfile, i, bondCount)
		}
		if err := r.parseBond(line, m); err != nil {
			return nil, err
		}
	}

	if err := r.parseProperties(m); err != nil {
		return nil, err
	}

	hydrogenate(m)
	return m, nil
}

// molfileReader walks the input line by line, tracking the 1-based line
// number for error messages.
type molfileReader struct {
	lines []string
	pos   int
}

func (r *molfileReader) next() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	line := r.lines[r.pos]
	r.pos++
	return line, true
}

// errf wraps ErrInvalidMolfile with the line number of the most recently
// consumed line.
func (r *molfileReader) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: line %d: %s", ErrInvalidMolfile, r.pos, msg)
}

func (r *molfileReader) parseAtom(line string) (Atom, error) {
	if len(line) < 34 {
		return Atom{}, r.errf("atom line too short")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(line[0:10]), 64)
	if err != nil {
		return Atom{}, r.errf("bad x coordinate %q", line[0:10])
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(line[10:20]), 64)
	if err != nil {
		return Atom{}, r.errf("bad y coordinate %q", line[10:20])
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(line[20:30]), 64)
	if err != nil {
		return Atom{}, r.errf("bad z coordinate %q", line[20:30])
	}
	symbol := strings.TrimSpace(line[31:34])
	if symbol == "" {
		return Atom{}, r.errf("missing element symbol")
	}
	atom := Atom{Symbol: symbol, Position: Vec3{X: x, Y: y, Z: z}}
	if len(line) >= 51 {
		if v, err := strconv.Atoi(strings.TrimSpace(line[48:51])); err == nil && v >= 1 && v <= 15 {
			atom.Valence = v
		}
	}
	return atom, nil
}

func (r *molfileReader) parseBond(line string, m *Molecule) error {
	if len(line) < 9 {
		return r.errf("bond line too short")
	}
	from, err := strconv.Atoi(strings.TrimSpace(line[0:3]))
	if err != nil {
		return r.errf("bad bond source %q", line[0:3])
	}
	to, err := strconv.Atoi(strings.TrimSpace(line[3:6]))
	if err != nil {
		return r.errf("bad bond target %q", line[3:6])
	}
	code, err := strconv.Atoi(strings.TrimSpace(line[6:9]))
	if err != nil {
		return r.errf("bad bond type %q", line[6:9])
	}
	var order float64
	switch code {
	case 1, 2, 3:
		order = float64(code)
	case 4:
		order = Aromatic
	default:
		return r.errf("unsupported bond type %d", code)
	}
	if from < 1 || from > m.AtomCount() || to < 1 || to > m.AtomCount() {
		return r.errf("bond references atom outside 1..%d", m.AtomCount())
	}
	if err := m.AddBond(from-1, to-1, order); err != nil {
		return r.errf("bond %d-%d: %v", from, to, err)
	}
	return nil
}

// parseProperties reads the property block. "M  CHG" and "M  RAD" lines
// carry (atom, value) pairs as whitespace-separated fields; everything
// else up to "M  END" is skipped.
func (r *molfileReader) parseProperties(m *Molecule) error {
	for {
		line, ok := r.next()
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "M" {
			continue
		}
		switch fields[1] {
		case "END":
			return nil
		case "CHG", "RAD":
			if err := r.applyPairs(m, fields); err != nil {
				return err
			}
		}
	}
}

func (r *molfileReader) applyPairs(m *Molecule, fields []string) error {
	kind := fields[1]
	if len(fields) < 3 {
		return r.errf("malformed M  %s line", kind)
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || n < 1 || len(fields) < 3+2*n {
		return r.errf("malformed M  %s line", kind)
	}
	for i := 0; i < n; i++ {
		idx, err1 := strconv.Atoi(fields[3+2*i])
		val, err2 := strconv.Atoi(fields[4+2*i])
		if err1 != nil || err2 != nil {
			return r.errf("malformed M  %s pair %d", kind, i+1)
		}
		if idx < 1 || idx > m.AtomCount() {
			return r.errf("M  %s references atom outside 1..%d", kind, m.AtomCount())
		}
		switch kind {
		case "CHG":
			m.atoms[idx-1].Charge = val
		case "RAD":
			m.atoms[idx-1].Radical = val
		}
	}
	return nil
}

// hydrogenate assigns implicit hydrogen counts. An atom-block valence
// override takes precedence over the per-element target (15 means zero
// valence per the ctfile format). The explicit bond sum rounds up so an
// odd aromatic attachment never over-hydrogenates.
func hydrogenate(m *Molecule) {
	for i := range m.atoms {
		target, ok := hydrogenTargets[m.atoms[i].Symbol]
		switch v := m.atoms[i].Valence; {
		case v == 15:
			continue
		case v > 0:
			target, ok = v, true
		}
		if !ok {
			continue
		}
		var sum float64
		for _, n := range m.Neighbors(i) {
			sum += m.BondOrder(i, n)
		}
		implicit := target - int(math.Ceil(sum))
		if implicit < 0 {
			implicit = 0
		}
		m.atoms[i].Implicit = implicit
	}
}
