package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/output"
)

func init() {
	Register(&ListCmd{})
	Register(&StatsCmd{})
}

// ListCmd implements the list command.
// Handles both `tasktrackr` (no args) and `tasktrackr list`.
// The list itself was loaded when the session was restored; the view
// prints it once Run succeeds.
type ListCmd struct {
	withStats bool
}

// SetStats enables the stats footer (for testing).
func (c *ListCmd) SetStats(on bool) {
	c.withStats = on
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return appName + " list [--stats]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) Layout() output.Layout {
	if c.withStats {
		return output.LayoutFull
	}
	return output.LayoutTable
}

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.withStats, "stats", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	return exitcode.Success
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string                   { return "stats" }
func (c *StatsCmd) Aliases() []string              { return nil }
func (c *StatsCmd) Synopsis() string               { return "Show task counters" }
func (c *StatsCmd) Usage() string                  { return appName + " stats" }
func (c *StatsCmd) NeedsAuth() bool                { return true }
func (c *StatsCmd) Layout() output.Layout          { return output.LayoutStats }
func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	return exitcode.Success
}
