package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/pkg/demo"
)

// demoCommand creates the demo command for playing mechanism scripts.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		plain bool
		step  float64
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "demo [name|script.toml]",
		Short: "Play a canned mechanism demonstration",
		Long: `Play a canned mechanism demonstration.

Without arguments the demo command lists the available demonstrations.
Pass a name or the path of a TOML script file to play it in the
interactive terminal player: atoms, charges, and lone pairs update live
while each curved-arrow push animates its bond transitions.

Player keys: space pauses, n jumps to the next step, q quits.

Use --plain for non-interactive output that prints each caption as the
step starts, and --dir to make every script in a directory playable by
name alongside the built-ins.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listDemos(cmd.OutOrStdout(), dir)
			}
			sc, err := resolveScript(args[0], dir)
			if err != nil {
				return err
			}
			if plain {
				return c.runPlainDemo(cmd.OutOrStdout(), sc, step)
			}
			return runDemoTUI(sc, step)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print steps without the interactive player")
	cmd.Flags().Float64Var(&step, "step", demo.DefaultStep, "transition progress per frame")
	cmd.Flags().StringVar(&dir, "dir", "", "directory of extra TOML scripts")

	return cmd
}

// availableScripts returns the built-in demonstrations, plus every
// script under dir when one is given.
func availableScripts(dir string) ([]demo.Script, error) {
	scripts := demo.Builtin()
	if dir == "" {
		return scripts, nil
	}
	extra, err := demo.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return append(scripts, extra...), nil
}

// resolveScript finds an available script by name, or loads a TOML
// file when the argument points at one.
func resolveScript(arg, dir string) (demo.Script, error) {
	scripts, err := availableScripts(dir)
	if err != nil {
		return demo.Script{}, err
	}
	for _, sc := range scripts {
		if sc.Name == arg {
			return sc, nil
		}
	}
	if _, err := os.Stat(arg); err == nil {
		return demo.LoadScript(arg)
	}
	return demo.Script{}, fmt.Errorf("no demonstration %q: run 'curlyarrow demo' for the list or pass a .toml script", arg)
}

// listDemos prints the demonstration table.
func listDemos(w io.Writer, dir string) error {
	scripts, err := availableScripts(dir)
	if err != nil {
		return err
	}

	rows := [][]string{}
	for _, sc := range scripts {
		rows = append(rows, []string{sc.Name, sc.Title, strconv.Itoa(len(sc.Steps))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Demonstration", "Steps").
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

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render("play one with: curlyarrow demo <name>"))
	return nil
}

// runPlainDemo runs the script to completion, printing each caption as
// its step starts.
func (c *CLI) runPlainDemo(w io.Writer, sc demo.Script, step float64) error {
	runner, err := demo.NewRunner(sc, c.Logger)
	if err != nil {
		return err
	}
	if step > 0 {
		runner.Step = step
	}

	fmt.Fprintln(w, StyleTitle.Render(sc.Title))
	last := 0
	for {
		did, err := runner.Tick()
		if err != nil {
			return err
		}
		if !did {
			break
		}
		if idx := runner.StepIndex(); idx != last {
			last = idx
			fmt.Fprintf(w, "%d. %s\n", idx, runner.Caption())
		}
	}
	fmt.Fprintln(w, StyleSuccess.Render("mechanism complete"))
	return nil
}

// runDemoTUI plays the script in the interactive bubbletea player. The
// player owns the screen, so runner logs are discarded.
func runDemoTUI(sc demo.Script, step float64) error {
	runner, err := demo.NewRunner(sc, log.New(io.Discard))
	if err != nil {
		return err
	}
	if step > 0 {
		runner.Step = step
	}

	p := tea.NewProgram(newPlayerModel(runner))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("demo player: %w", err)
	}
	if m, ok := final.(playerModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
