package demo

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// play runs a script to completion with a coarse step, failing the test
// if it does not settle within the tick budget.
func play(t *testing.T, sc Script) *Runner {
	t.Helper()
	r, err := NewRunner(sc, quiet())
	if err != nil {
		t.Fatalf("NewRunner(%s): %v", sc.Name, err)
	}
	r.Step = 0.5
	for i := 0; i < 100; i++ {
		more, err := r.Tick()
		if err != nil {
			t.Fatalf("Tick(%s): %v", sc.Name, err)
		}
		if !more {
			if !r.Done() {
				t.Fatalf("%s: Tick returned false before Done", sc.Name)
			}
			return r
		}
	}
	t.Fatalf("%s: script did not settle within 100 ticks", sc.Name)
	return nil
}

func TestBuiltinScriptsValidate(t *testing.T) {
	seen := map[string]bool{}
	for _, sc := range Builtin() {
		if err := sc.Validate(); err != nil {
			t.Errorf("builtin %s: %v", sc.Name, err)
		}
		if seen[sc.Name] {
			t.Errorf("duplicate builtin name %q", sc.Name)
		}
		seen[sc.Name] = true
	}
}

func TestBuiltinScriptsRunToCompletion(t *testing.T) {
	checks := map[string]func(t *testing.T, r *Runner){
		"carbonyl": func(t *testing.T, r *Runner) {
			if got := r.Molecule().BondOrder(0, 1); got != 2 {
				t.Errorf("C=O order = %v, want 2", got)
			}
			if r.Session().Charge(0) != 0 || r.Session().Charge(1) != 0 {
				t.Errorf("charges = %d, %d, want 0, 0", r.Session().Charge(0), r.Session().Charge(1))
			}
		},
		"substitution": func(t *testing.T, r *Runner) {
			if got := r.Molecule().BondOrder(0, 1); got != 1 {
				t.Errorf("new O-C order = %v, want 1", got)
			}
			if got := r.Molecule().BondOrder(1, 2); got != 0 {
				t.Errorf("C-Br order = %v, want 0", got)
			}
			if got := r.Session().Charge(2); got != -1 {
				t.Errorf("bromide charge = %d, want -1", got)
			}
		},
		"allyl-shift": func(t *testing.T, r *Runner) {
			if got := r.Molecule().BondOrder(0, 1); got != 1 {
				t.Errorf("first bond order = %v, want 1", got)
			}
			if got := r.Molecule().BondOrder(1, 2); got != 2 {
				t.Errorf("second bond order = %v, want 2", got)
			}
			if r.Session().Charge(0) != 1 || r.Session().Charge(2) != 0 {
				t.Errorf("charges = %d, %d, want 1, 0", r.Session().Charge(0), r.Session().Charge(2))
			}
		},
		"homolysis": func(t *testing.T, r *Runner) {
			if got := r.Molecule().BondOrder(0, 1); got != 0 {
				t.Errorf("Br-Br order = %v, want 0", got)
			}
			for i := 0; i < 2; i++ {
				if got := r.Session().SingleElectrons(i); got != 1 {
					t.Errorf("atom %d unpaired electrons = %d, want 1", i, got)
				}
			}
		},
	}

	for _, sc := range Builtin() {
		t.Run(sc.Name, func(t *testing.T) {
			r := play(t, sc)
			check, ok := checks[sc.Name]
			if !ok {
				t.Fatalf("no final-state check for builtin %s", sc.Name)
			}
			check(t, r)
		})
	}
}

func TestRunnerTickSequence(t *testing.T) {
	sc := Builtin()[0] // carbonyl: two steps
	r, err := NewRunner(sc, quiet())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if r.Step != DefaultStep {
		t.Errorf("Step = %v, want DefaultStep", r.Step)
	}
	r.Step = 0.5

	if got := r.Caption(); got != sc.Summary {
		t.Errorf("initial caption = %q, want summary", got)
	}

	// First tick starts the move instead of advancing.
	if _, err := r.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if r.StepIndex() != 1 {
		t.Fatalf("StepIndex = %d, want 1", r.StepIndex())
	}
	if got := r.Caption(); got != sc.Steps[0].Caption {
		t.Errorf("caption = %q, want step 1 caption", got)
	}
	if r.Session().Charge(0) != 1 || r.Session().Charge(1) != -1 {
		t.Errorf("charges moved wrong: %d, %d", r.Session().Charge(0), r.Session().Charge(1))
	}
	if len(r.Session().Transitions()) != 1 {
		t.Fatalf("transitions = %d, want 1", len(r.Session().Transitions()))
	}

	// Two half-step ticks settle the bond.
	for i := 0; i < 2; i++ {
		if _, err := r.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if got := r.Molecule().BondOrder(0, 1); got != 1 {
		t.Errorf("after step 1, order = %v, want 1", got)
	}
	if r.Done() {
		t.Error("Done before second step ran")
	}

	// Second step starts, animates, settles.
	for i := 0; i < 3; i++ {
		if _, err := r.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	more, err := r.Tick()
	if err != nil {
		t.Fatalf("final Tick: %v", err)
	}
	if more {
		t.Error("Tick reported more work after the script finished")
	}
	if !r.Done() {
		t.Error("Done = false after the script finished")
	}
}

func TestLoadScript(t *testing.T) {
	content := `title = "Carbonyl demo"
summary = "Round trip."
molfile = '''
` + carbonylMol + `'''

[[step]]
move = "bond-to-atom"
atoms = [0, 1]
caption = "Collapse"
`
	path := filepath.Join(t.TempDir(), "carbonyl-demo.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	sc, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if sc.Name != "carbonyl-demo" {
		t.Errorf("Name = %q, want file-derived %q", sc.Name, "carbonyl-demo")
	}
	if sc.Title != "Carbonyl demo" || len(sc.Steps) != 1 {
		t.Errorf("script = %+v", sc)
	}
	if sc.Steps[0].Move != "bond-to-atom" || len(sc.Steps[0].Atoms) != 2 {
		t.Errorf("step = %+v", sc.Steps[0])
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	script := `name = "one"
molfile = '''
` + bromineMol + `'''

[[step]]
move = "homolysis"
atoms = [0, 1]
`
	if err := os.WriteFile(filepath.Join(dir, "b.toml"), []byte(script), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := `name = "two"
molfile = '''
` + bromineMol + `'''

[[step]]
move = "homolysis"
atoms = [0, 1]
`
	if err := os.WriteFile(filepath.Join(dir, "a.toml"), []byte(second), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	scripts, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(scripts) != 2 || scripts[0].Name != "two" || scripts[1].Name != "one" {
		t.Errorf("LoadDir order wrong: %+v", scripts)
	}
}

func TestValidateErrors(t *testing.T) {
	base := Builtin()[3] // homolysis: single step on bromineMol

	tests := []struct {
		name   string
		mutate func(sc *Script)
	}{
		{"no steps", func(sc *Script) { sc.Steps = nil }},
		{"unknown move", func(sc *Script) { sc.Steps[0].Move = "retro-ene" }},
		{"wrong atom count", func(sc *Script) { sc.Steps[0].Atoms = []int{0} }},
		{"atom out of range", func(sc *Script) { sc.Steps[0].Atoms = []int{0, 7} }},
		{"bad molfile", func(sc *Script) { sc.Molfile = "garbage" }},
		{"missing name", func(sc *Script) { sc.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := base
			sc.Steps = append([]Step(nil), base.Steps...)
			tt.mutate(&sc)
			if err := sc.Validate(); !errors.Is(err, ErrBadScript) {
				t.Errorf("Validate: err = %v, want ErrBadScript", err)
			}
		})
	}
}

func TestRunnerRejectsFailingStep(t *testing.T) {
	sc := Script{
		Name:    "broken",
		Molfile: bromineMol,
		Steps: []Step{
			// Validates fine, but the first split leaves no bond for the
			// second one.
			{Move: "homolysis", Atoms: []int{0, 1}},
			{Move: "homolysis", Atoms: []int{0, 1}},
		},
	}
	r, err := NewRunner(sc, quiet())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	r.Step = 1

	for i := 0; i < 3; i++ {
		if _, err = r.Tick(); err != nil {
			break
		}
	}
	if !errors.Is(err, mech.ErrInvalidMove) {
		t.Errorf("second homolysis: err = %v, want ErrInvalidMove", err)
	}
}
