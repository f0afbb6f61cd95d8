// Package cli implements the curlyarrow command-line interface.
//
// This package provides commands for inspecting the electron accounting
// of a molecule, rendering structures, playing canned mechanism
// demonstrations in the terminal, serving the HTTP API, and managing
// saved snapshots. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - inspect: Show lone pairs, charges, and radicals for a molfile
//   - render: Generate SVG, PNG, or DOT structure drawings
//   - demo: Play a built-in or scripted mechanism demonstration
//   - serve: Run the HTTP API with a snapshot store backend
//   - snapshots: List, show, and delete saved session snapshots
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "curlyarrow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Curlyarrow animates electron-pushing mechanisms",
		Long:         `Curlyarrow is a teaching tool for organic reaction mechanisms: it tracks lone pairs, formal charges, and radicals over a molecular graph and plays curved-arrow electron pushes as timed bond transitions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
