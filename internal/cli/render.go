package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/pkg/cache"
	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
	"github.com/curlyarrow/curlyarrow/pkg/render/structure"
)

// renderCommand creates the render command for drawing a structure.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "render [molecule.mol]",
		Short: "Render a molecule as SVG, PNG, or DOT",
		Long: `Render a molecule as SVG, PNG, or DOT.

The render command parses a V2000 molfile and draws the structure with
Graphviz: bond orders as parallel strokes, formal charges as label
suffixes, and molfile coordinates pinning the atom positions when the
file carries geometry.

Use --detailed to add lone-pair and radical counts to the atom labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], output, format, detailed, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to the input name with the format extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label atoms with lone-pair and radical counts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// runRender parses the molecule and writes the rendered structure.
func (c *CLI) runRender(ctx context.Context, input, output, format string, detailed, noCache bool) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	m, err := mol.ParseMolfile(string(src))
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	sess, err := mech.NewSession(m)
	if err != nil {
		return err
	}

	dot := structure.ToDOT(m, sess, structure.Options{Detailed: detailed})
	c.Logger.Debug("built DOT", "atoms", m.AtomCount(), "bonds", m.BondCount())

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg", "png":
		rc, err := openRenderCache(noCache)
		if err != nil {
			return err
		}
		defer rc.Close()

		// The format goes into the key because the same DOT renders to
		// different bytes per format.
		key := cache.Hash([]byte(format + "\n" + dot))
		if cached, hit, cerr := rc.Get(ctx, key); cerr == nil && hit {
			c.Logger.Debug("render cache hit", "key", key[:12])
			data = cached
			break
		}

		spinner := newSpinnerWithContext(ctx, "Rendering structure...")
		spinner.Start()
		if format == "svg" {
			data, err = structure.RenderSVG(dot)
		} else {
			data, err = structure.RenderPNG(dot)
		}
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return fmt.Errorf("render %s: %w", format, err)
		}
		spinner.Stop()

		if err := rc.Set(ctx, key, data, renderCacheTTL); err != nil {
			c.Logger.Debug("render cache write failed", "err", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want svg, png, or dot)", format)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s", input)
	printFile(output)
	return nil
}
