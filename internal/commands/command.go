// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/output"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a restored session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// Layout selects what the view prints after a successful run.
	Layout() output.Layout

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, API origin).
	// a is the controller; for NeedsAuth commands the session is already
	// restored and the task list loaded.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int
}

// LiveCommand is implemented by commands whose frames are printed as they
// arrive instead of once after Run returns.
type LiveCommand interface {
	Command
	Live() bool
}
