package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

// inspectCommand creates the inspect command for examining a molfile.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [molecule.mol]",
		Short: "Show electron accounting for a molfile",
		Long: `Show electron accounting for a molfile.

The inspect command parses a V2000 molfile, derives lone pairs, unpaired
electrons, and formal charges for every atom, and prints the result as a
table. Implicit hydrogens are assigned from standard element valences.

Use --json for machine-readable output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON")

	return cmd
}

// atomReport is one atom's bookkeeping, shared by the table and JSON views.
type atomReport struct {
	Index     int    `json:"index"`
	Symbol    string `json:"symbol"`
	Charge    int    `json:"charge"`
	LonePairs int    `json:"lone_pairs"`
	Singles   int    `json:"single_electrons"`
	Hydrogens int    `json:"implicit_hydrogens"`
}

type bondReport struct {
	A     int     `json:"a"`
	B     int     `json:"b"`
	Order float64 `json:"order"`
}

type inspectReport struct {
	Source string       `json:"source"`
	Atoms  []atomReport `json:"atoms"`
	Bonds  []bondReport `json:"bonds"`
}

// runInspect parses the molfile and writes the accounting report to w.
func (c *CLI) runInspect(w io.Writer, input string, asJSON bool) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	report, err := buildReport(input, string(src))
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	writeReport(w, report)
	return nil
}

// buildReport derives the full accounting view for a molfile source.
func buildReport(source, molfile string) (inspectReport, error) {
	m, err := mol.ParseMolfile(molfile)
	if err != nil {
		return inspectReport{}, fmt.Errorf("parse %s: %w", source, err)
	}
	sess, err := mech.NewSession(m)
	if err != nil {
		return inspectReport{}, err
	}

	report := inspectReport{Source: source}
	for i := 0; i < m.AtomCount(); i++ {
		report.Atoms = append(report.Atoms, atomReport{
			Index:     i,
			Symbol:    m.Symbol(i),
			Charge:    sess.Charge(i),
			LonePairs: sess.LonePairs(i),
			Singles:   sess.SingleElectrons(i),
			Hydrogens: m.ImplicitHydrogens(i),
		})
	}
	for _, b := range m.Bonds() {
		report.Bonds = append(report.Bonds, bondReport{A: b.A, B: b.B, Order: b.Order})
	}
	return report, nil
}

// writeReport renders the report as terminal tables.
func writeReport(w io.Writer, report inspectReport) {
	fmt.Fprintln(w, StyleTitle.Render(report.Source))

	rows := make([][]string, 0, len(report.Atoms))
	for _, a := range report.Atoms {
		rows = append(rows, []string{
			strconv.Itoa(a.Index),
			a.Symbol,
			fmtChargeLabel(a.Charge),
			strconv.Itoa(a.LonePairs),
			strconv.Itoa(a.Singles),
			strconv.Itoa(a.Hydrogens),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Atom", "Charge", "Lone pairs", "Radicals", "Implicit H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 2 {
				return StyleWarning
			}
			return StyleValue
		})
	fmt.Fprintln(w, t.Render())

	if len(report.Bonds) == 0 {
		fmt.Fprintln(w, StyleDim.Render("no bonds"))
		return
	}
	for _, b := range report.Bonds {
		fmt.Fprintf(w, "  %s\n", fmtBondLine(report, b))
	}
}

// fmtBondLine renders one bond as "C0 - O1  order 2".
func fmtBondLine(report inspectReport, b bondReport) string {
	label := func(i int) string {
		return fmt.Sprintf("%s%d", report.Atoms[i].Symbol, i)
	}
	order := strconv.FormatFloat(b.Order, 'g', -1, 64)
	return label(b.A) + " - " + label(b.B) + "  " + StyleDim.Render("order "+order)
}
