package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/curlyarrow/curlyarrow/pkg/demo"
)

// frameInterval paces the player at roughly twenty frames per second,
// slow enough to follow a bond order changing.
const frameInterval = 50 * time.Millisecond

// frameMsg is one animation tick.
type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// =============================================================================
// playerModel - Interactive mechanism playback
// =============================================================================

// playerModel is the bubbletea model that plays a demo script frame by
// frame: atoms and charges on the left, active bond transitions as
// progress bars underneath.
type playerModel struct {
	runner *demo.Runner
	paused bool
	done   bool
	err    error
}

func newPlayerModel(runner *demo.Runner) playerModel {
	return playerModel{runner: runner}
}

func (m playerModel) Init() tea.Cmd {
	return frame()
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.paused = !m.paused
			}
		case "n":
			// Jump: tick until the next step starts or the script runs out.
			if m.done {
				return m, nil
			}
			want := m.runner.StepIndex() + 1
			for m.runner.StepIndex() < want {
				did, err := m.runner.Tick()
				if err != nil {
					m.err = err
					return m, tea.Quit
				}
				if !did {
					m.done = true
					break
				}
			}
		}
		return m, nil

	case frameMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, frame()
		}
		did, err := m.runner.Tick()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if !did {
			m.done = true
			return m, nil
		}
		return m, frame()
	}
	return m, nil
}

func (m playerModel) View() string {
	var b strings.Builder

	sc := m.runner.Script()
	b.WriteString(StyleTitle.Render(sc.Title))
	b.WriteString("\n")
	b.WriteString(m.captionLine(sc))
	b.WriteString("\n\n")

	b.WriteString(m.atomTable())
	b.WriteString("\n")

	if bars := m.transitionBars(); bars != "" {
		b.WriteString("\n")
		b.WriteString(bars)
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m playerModel) captionLine(sc demo.Script) string {
	idx := m.runner.StepIndex()
	if idx == 0 {
		return StyleDim.Render(m.runner.Caption())
	}
	pos := StyleDim.Render(fmt.Sprintf("step %d/%d", idx, len(sc.Steps)))
	return pos + "  " + StyleValue.Render(m.runner.Caption())
}

func (m playerModel) atomTable() string {
	mol := m.runner.Molecule()
	sess := m.runner.Session()

	rows := [][]string{}
	for i := 0; i < mol.AtomCount(); i++ {
		rows = append(rows, []string{
			mol.Symbol(i) + strconv.Itoa(i),
			fmtChargeLabel(sess.Charge(i)),
			strconv.Itoa(sess.LonePairs(i)),
			strconv.Itoa(sess.SingleElectrons(i)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Atom", "Charge", "Lone pairs", "Radicals").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return StyleWarning
			}
			return StyleValue
		})

	return t.Render()
}

func (m playerModel) transitionBars() string {
	mol := m.runner.Molecule()
	active := m.runner.Session().Transitions()
	if len(active) == 0 {
		return ""
	}

	var b strings.Builder
	for _, tr := range active {
		label := fmt.Sprintf("%s%d %s %s%d",
			mol.Symbol(tr.A), tr.A, iconArrow, mol.Symbol(tr.B), tr.B)
		orders := StyleDim.Render(fmt.Sprintf("%g %s %g",
			tr.InitialOrder, iconArrow, tr.TargetOrder))
		fmt.Fprintf(&b, "  %-12s %s %s\n",
			StyleHighlight.Render(label), renderBar(tr.Progress, 20), orders)
	}
	return b.String()
}

func (m playerModel) footer() string {
	if m.done {
		return StyleSuccess.Render(iconSuccess+" mechanism complete") +
			StyleDim.Render("  ·  q quit")
	}
	state := ""
	if m.paused {
		state = StyleWarning.Render("paused") + StyleDim.Render("  ·  ")
	}
	return state + StyleDim.Render("space pause · n next step · q quit")
}
