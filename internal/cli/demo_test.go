package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/curlyarrow/curlyarrow/pkg/demo"
)

func TestResolveScriptBuiltin(t *testing.T) {
	sc, err := resolveScript("carbonyl", "")
	if err != nil {
		t.Fatalf("resolveScript(carbonyl) error: %v", err)
	}
	if sc.Name != "carbonyl" || len(sc.Steps) == 0 {
		t.Errorf("got script %q with %d steps, want builtin carbonyl", sc.Name, len(sc.Steps))
	}
}

func TestResolveScriptUnknown(t *testing.T) {
	_, err := resolveScript("retro-diels-alder", "")
	if err == nil {
		t.Fatal("expected error for unknown demonstration")
	}
	if !strings.Contains(err.Error(), "no demonstration") {
		t.Errorf("error = %v, want it to mention the missing demonstration", err)
	}
}

func TestResolveScriptFile(t *testing.T) {
	src := `name = "methanal-pi"
title = "Methanal pi break"
summary = "One push."
molfile = """
methanal
  test

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.2500    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0
M  END
"""

[[step]]
move = "bond-to-atom"
atoms = [0, 1]
caption = "The pi pair collapses onto oxygen."
`
	path := filepath.Join(t.TempDir(), "methanal.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	sc, err := resolveScript(path, "")
	if err != nil {
		t.Fatalf("resolveScript(%s) error: %v", path, err)
	}
	if sc.Name != "methanal-pi" || len(sc.Steps) != 1 {
		t.Errorf("got script %q with %d steps, want methanal-pi with 1", sc.Name, len(sc.Steps))
	}
}

func TestResolveScriptDir(t *testing.T) {
	src := `name = "methanal-pi"
title = "Methanal pi break"
summary = "One push."
molfile = """
methanal
  test

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.2500    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0
M  END
"""

[[step]]
move = "bond-to-atom"
atoms = [0, 1]
caption = "The pi pair collapses onto oxygen."
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "methanal.toml"), []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	sc, err := resolveScript("methanal-pi", dir)
	if err != nil {
		t.Fatalf("resolveScript(methanal-pi) error: %v", err)
	}
	if sc.Name != "methanal-pi" || len(sc.Steps) != 1 {
		t.Errorf("got script %q with %d steps, want methanal-pi with 1", sc.Name, len(sc.Steps))
	}

	var buf bytes.Buffer
	if err := listDemos(&buf, dir); err != nil {
		t.Fatalf("listDemos() error: %v", err)
	}
	if !strings.Contains(buf.String(), "methanal-pi") {
		t.Errorf("demo list missing directory script:\n%s", buf.String())
	}
}

func TestRunPlainDemo(t *testing.T) {
	sc, err := resolveScript("carbonyl", "")
	if err != nil {
		t.Fatalf("resolveScript: %v", err)
	}

	c := New(io.Discard, LogInfo)
	var buf bytes.Buffer
	if err := c.runPlainDemo(&buf, sc, 0.5); err != nil {
		t.Fatalf("runPlainDemo() error: %v", err)
	}

	out := buf.String()
	wants := []string{
		sc.Title,
		"1. " + sc.Steps[0].Caption,
		"2. " + sc.Steps[1].Caption,
		"mechanism complete",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("plain demo output missing %q:\n%s", want, out)
		}
	}
}

func TestListDemos(t *testing.T) {
	var buf bytes.Buffer
	if err := listDemos(&buf, ""); err != nil {
		t.Fatalf("listDemos() error: %v", err)
	}

	out := buf.String()
	for _, sc := range demo.Builtin() {
		if !strings.Contains(out, sc.Name) {
			t.Errorf("demo list missing builtin %q:\n%s", sc.Name, out)
		}
	}
}
