package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
	"github.com/curlyarrow/curlyarrow/pkg/store"
)

// snapshotsCommand creates the snapshot management command. It works on
// the file store; server backends are managed through the API.
func (c *CLI) snapshotsCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Manage saved session snapshots",
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "snapshot directory (default ~/.config/curlyarrow/snapshots)")

	cmd.AddCommand(c.snapshotsListCommand(&dir))
	cmd.AddCommand(c.snapshotsShowCommand(&dir))
	cmd.AddCommand(c.snapshotsDeleteCommand(&dir))
	cmd.AddCommand(c.snapshotsPathCommand(&dir))

	return cmd
}

// snapshotsListCommand creates the "snapshots list" subcommand.
func (c *CLI) snapshotsListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFileStore(*dir)
			if err != nil {
				return err
			}
			sns, err := fs.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), StyleDim.Render("no snapshots in "+fs.Path()))
				return nil
			}

			rows := make([][]string, 0, len(sns))
			for _, sn := range sns {
				rows = append(rows, []string{
					sn.ID,
					sn.Name,
					sn.CreatedAt.Local().Format("Jan 2 15:04"),
					strconv.Itoa(len(sn.Charges)),
				})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("ID", "Name", "Saved", "Atoms").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return styleHeader
					}
					if col == 0 {
						return StyleHighlight
					}
					return StyleValue
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

// snapshotsShowCommand creates the "snapshots show" subcommand.
func (c *CLI) snapshotsShowCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show the session state a snapshot restores to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFileStore(*dir)
			if err != nil {
				return err
			}
			sn, err := fs.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report, err := snapshotReport(sn)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

// snapshotsDeleteCommand creates the "snapshots delete" subcommand.
func (c *CLI) snapshotsDeleteCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a saved snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFileStore(*dir)
			if err != nil {
				return err
			}
			if err := fs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}

// snapshotsPathCommand creates the "snapshots path" subcommand.
func (c *CLI) snapshotsPathCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the snapshot directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFileStore(*dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fs.Path())
			return nil
		},
	}
}

// snapshotReport restores a snapshot and reports the live state, mutated
// bond orders and ledger charges included. Reparsing the molfile would
// show the pre-mechanism molecule instead.
func snapshotReport(sn snapshot.Snapshot) (inspectReport, error) {
	m, sess, err := snapshot.Restore(sn)
	if err != nil {
		return inspectReport{}, err
	}

	title := sn.Name
	if title == "" {
		title = sn.ID
	}
	report := inspectReport{Source: title}
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
