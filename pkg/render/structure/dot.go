package structure

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

// Options configures structure diagram rendering.
type Options struct {
	// Detailed includes lone-pair and unpaired-electron counts in atom
	// labels. When false, only the symbol, implicit hydrogens, and charge
	// are shown. Requires a session; without one there is no electron
	// bookkeeping to display.
	Detailed bool
}

// ToDOT converts a molecule to Graphviz DOT format for structure display.
// The resulting DOT string can be rendered using [RenderSVG] or
// [RenderPNG].
//
// When a session is given, atom charges come from its ledger instead of
// the parsed molfile values, and bonds with an in-flight transition are
// drawn in crimson with the current progress as the edge label. A nil
// session renders the molecule as parsed.
//
// Molfile coordinates pin the atoms, so the drawing keeps the depicted
// geometry. Molecules whose atoms all sit at the origin are laid out by
// Graphviz instead.
func ToDOT(m *mol.Molecule, s *mech.Session, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph M {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plaintext, fontsize=24, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [penwidth=2];\n")
	buf.WriteString("\n")

	pinned := hasGeometry(m)
	for i := 0; i < m.AtomCount(); i++ {
		attrs := []string{fmt.Sprintf("label=%q", fmtAtomLabel(m, s, i, opts.Detailed))}
		if pinned {
			p := m.Position(i)
			attrs = append(attrs, fmt.Sprintf("pos=\"%.4f,%.4f!\"", p.X, p.Y))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, b := range m.Bonds() {
		attrs := fmtBondAttrs(s, b)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %d -- %d;\n", b.A, b.B)
			continue
		}
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", b.A, b.B, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func hasGeometry(m *mol.Molecule) bool {
	for i := 0; i < m.AtomCount(); i++ {
		if p := m.Position(i); p.X != 0 || p.Y != 0 {
			return true
		}
	}
	return false
}

func fmtAtomLabel(m *mol.Molecule, s *mech.Session, i int, detailed bool) string {
	label := m.Symbol(i)
	switch h := m.ImplicitHydrogens(i); {
	case h == 1:
		label += "H"
	case h > 1:
		label += "H" + strconv.Itoa(h)
	}

	charge := m.Charge(i)
	if s != nil {
		charge = s.Charge(i)
	}
	label += fmtCharge(charge)

	if !detailed || s == nil {
		return label
	}
	parts := []string{fmt.Sprintf("lp: %d", s.LonePairs(i))}
	if rad := s.SingleElectrons(i); rad > 0 {
		parts = append(parts, fmt.Sprintf("rad: %d", rad))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtCharge(charge int) string {
	switch {
	case charge == 0:
		return ""
	case charge == 1:
		return "+"
	case charge == -1:
		return "-"
	case charge > 1:
		return strconv.Itoa(charge) + "+"
	default:
		return strconv.Itoa(-charge) + "-"
	}
}

func fmtBondAttrs(s *mech.Session, b mol.Bond) []string {
	color := "black"
	var attrs []string
	if s != nil {
		if tr, ok := s.ActiveTransition(b.A, b.B); ok {
			color = "crimson"
			attrs = append(attrs, fmt.Sprintf("label=\"%.2f\"", tr.Progress), "fontsize=16", "fontcolor=crimson")
		}
	}
	switch b.Order {
	case 0:
		if color == "black" {
			color = "grey"
		}
		attrs = append(attrs, "style=dotted", "color="+color)
	case 2:
		attrs = append(attrs, fmt.Sprintf("color=%q", parallel(color, 2)))
	case 3:
		attrs = append(attrs, fmt.Sprintf("color=%q", parallel(color, 3)))
	case mol.Aromatic:
		attrs = append(attrs, "style=dashed", "color="+color)
	default:
		if color != "black" {
			attrs = append(attrs, "color="+color)
		}
	}
	return attrs
}

// parallel builds a Graphviz color list that draws n parallel strokes,
// which is how DOT draws double and triple bonds.
func parallel(color string, n int) string {
	strokes := make([]string, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			strokes = append(strokes, "invis")
		}
		strokes = append(strokes, color)
	}
	return strings.Join(strokes, ":")
}

// RenderSVG renders a DOT structure to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT structure to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
