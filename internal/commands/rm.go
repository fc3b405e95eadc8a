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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string                   { return "rm" }
func (c *RmCmd) Aliases() []string              { return []string{"delete"} }
func (c *RmCmd) Synopsis() string               { return "Delete tasks" }
func (c *RmCmd) Usage() string                  { return appName + " rm <ref...>" }
func (c *RmCmd) NeedsAuth() bool                { return true }
func (c *RmCmd) Layout() output.Layout          { return output.LayoutNone }
func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	tasks, code := resolveRefs(a, args, errOut)
	if code != exitcode.Success {
		return code
	}

	for _, task := range tasks {
		if err := a.DeleteTask(ctx, task.ID); err != nil {
			return Report(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
