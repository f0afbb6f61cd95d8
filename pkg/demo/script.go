// Package demo loads and plays scripted teaching mechanisms: a starting
// molecule plus an ordered list of electron pushes, driven one animation
// tick at a time.
package demo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

// ErrBadScript is returned when a script cannot run: the molfile does not
// parse, a step names an unknown move, or an atom index falls outside the
// molecule.
var ErrBadScript = errors.New("bad demo script")

// Script is one scripted mechanism.
type Script struct {
	Name    string `toml:"name"`
	Title   string `toml:"title"`
	Summary string `toml:"summary"`

	// Molfile is the starting molecule as V2000 molfile text, usually a
	// TOML multi-line literal in script files.
	Molfile string `toml:"molfile"`

	// Steps are played in order; each waits for the previous one's
	// transitions to settle.
	Steps []Step `toml:"step"`
}

// Step is a single electron push.
type Step struct {
	// Move names the push, one of the mech move names:
	// "lone-pair-to-bond", "bond-to-atom", "bond-to-bond", "homolysis".
	Move string `toml:"move"`

	// Atoms are 0-based atom indices: two endpoints, or the three path
	// atoms of a bond-to-bond shift.
	Atoms []int `toml:"atoms"`

	// Caption is shown while the step animates.
	Caption string `toml:"caption"`
}

// LoadScript reads and validates a TOML script file. A script without a
// name is named after its file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	var sc Script
	if err := toml.Unmarshal(data, &sc); err != nil {
		return Script{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := sc.Validate(); err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// LoadDir loads every .toml script in a directory, in file-name order.
func LoadDir(dir string) ([]Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read script dir: %w", err)
	}
	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		sc, err := LoadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, sc)
	}
	return scripts, nil
}

// Validate checks that the script can run: the molfile parses, every
// step names a known move with the right atom count, and all indices stay
// inside the molecule.
func (sc Script) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("%w: missing name", ErrBadScript)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrBadScript, sc.Name)
	}
	m, err := mol.ParseMolfile(sc.Molfile)
	if err != nil {
		return fmt.Errorf("%w: %s: molfile: %v", ErrBadScript, sc.Name, err)
	}
	for i, st := range sc.Steps {
		kind, ok := mech.ParseMoveKind(st.Move)
		if !ok {
			return fmt.Errorf("%w: %s: step %d: unknown move %q", ErrBadScript, sc.Name, i+1, st.Move)
		}
		want := 2
		if kind == mech.MoveBondToBond {
			want = 3
		}
		if len(st.Atoms) != want {
			return fmt.Errorf("%w: %s: step %d: %s takes %d atoms, got %d",
				ErrBadScript, sc.Name, i+1, kind, want, len(st.Atoms))
		}
		for _, a := range st.Atoms {
			if a < 0 || a >= m.AtomCount() {
				return fmt.Errorf("%w: %s: step %d: atom %d out of range", ErrBadScript, sc.Name, i+1, a)
			}
		}
	}
	return nil
}
