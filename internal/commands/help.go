package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/output"
)

const appName = config.AppName

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
// It lists the commands of Registry, or of DefaultRegistry when nil.
type HelpCmd struct {
	Registry *Registry
}

func (c *HelpCmd) Name() string                   { return "help" }
func (c *HelpCmd) Aliases() []string              { return nil }
func (c *HelpCmd) Synopsis() string               { return "Print usage" }
func (c *HelpCmd) Usage() string                  { return appName + " help" }
func (c *HelpCmd) NeedsAuth() bool                { return false }
func (c *HelpCmd) Layout() output.Layout          { return output.LayoutNone }
func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	fmt.Fprintf(out, "Usage:\n  %s                 List tasks\n  %s <command> [common flags] [args]\n\nCommands:\n", appName, appName)
	for _, cmd := range reg.All() {
		synopsis := cmd.Synopsis()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			synopsis += " (also: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), synopsis)
		fmt.Fprintf(out, "  %-10s %s\n", "", cmd.Usage())
	}
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
A <ref> is a row number as printed by list, or a task id.
Statuses: todo, in-progress, done
Categories: study, work, practice, personal

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override API origin (also $TASKTRACKR_API)
  --local          Use the backend at http://localhost:3000/api
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
