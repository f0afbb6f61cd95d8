package demo

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

// DefaultStep is the progress added per tick. At around thirty frames per
// second a bond change settles in well under two seconds.
const DefaultStep = 0.02

// Runner plays a script against a live session, one tick at a time.
//
// The mechanism engine never schedules itself; the runner is the external
// clock. Whoever owns the frames (a TUI, a server ticker, a test) calls
// Tick once per frame.
type Runner struct {
	// Step is the progress added per tick. NewRunner sets DefaultStep;
	// tests and fast-forward playback can raise it.
	Step float64

	script Script
	logger *log.Logger
	m      *mol.Molecule
	sess   *mech.Session
	next   int
}

// NewRunner validates the script, parses its molecule, and builds the
// session. If logger is nil, log.Default() is used.
func NewRunner(sc Script, logger *log.Logger) (*Runner, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	m, err := mol.ParseMolfile(sc.Molfile)
	if err != nil {
		return nil, fmt.Errorf("parse molfile: %w", err)
	}
	sess, err := mech.NewSession(m)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Step:   DefaultStep,
		script: sc,
		logger: logger,
		m:      m,
		sess:   sess,
	}, nil
}

// Script returns the script being played.
func (r *Runner) Script() Script { return r.script }

// Molecule returns the live molecule the script mutates.
func (r *Runner) Molecule() *mol.Molecule { return r.m }

// Session returns the live mechanism session.
func (r *Runner) Session() *mech.Session { return r.sess }

// StepIndex returns how many steps have started.
func (r *Runner) StepIndex() int { return r.next }

// Caption returns the text for the current frame: the script summary
// before the first step, then the caption of the most recently started
// step.
func (r *Runner) Caption() string {
	if r.next == 0 {
		return r.script.Summary
	}
	return r.script.Steps[r.next-1].Caption
}

// Done reports whether every step has run and all transitions settled.
func (r *Runner) Done() bool {
	return r.next >= len(r.script.Steps) && len(r.sess.Transitions()) == 0
}

// Tick drives one frame. While transitions are in flight it advances them
// by Step; once the session is idle it starts the next scripted move
// instead. Returns false when the script is exhausted and everything has
// settled.
func (r *Runner) Tick() (bool, error) {
	if len(r.sess.Transitions()) == 0 {
		if r.next >= len(r.script.Steps) {
			return false, nil
		}
		st := r.script.Steps[r.next]
		kind, _ := mech.ParseMoveKind(st.Move)
		if err := mech.Apply(r.sess, kind, st.Atoms); err != nil {
			return false, fmt.Errorf("step %d (%s): %w", r.next+1, st.Move, err)
		}
		r.logger.Info("pushed electrons",
			"script", r.script.Name,
			"step", r.next+1,
			"move", st.Move,
			"atoms", st.Atoms)
		r.next++
		return true, nil
	}

	for _, c := range r.sess.Advance(r.Step) {
		if c.Err != nil {
			return false, fmt.Errorf("commit bond %d-%d: %w", c.A, c.B, c.Err)
		}
		r.logger.Debug("bond settled", "a", c.A, "b", c.B, "order", c.Order)
	}
	return true, nil
}
