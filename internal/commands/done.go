package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/output"
	"tasktrackr/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&StatusCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string                   { return "done" }
func (c *DoneCmd) Aliases() []string              { return nil }
func (c *DoneCmd) Synopsis() string               { return "Mark tasks done" }
func (c *DoneCmd) Usage() string                  { return appName + " done <ref...>" }
func (c *DoneCmd) NeedsAuth() bool                { return true }
func (c *DoneCmd) Layout() output.Layout          { return output.LayoutNone }
func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	tasks, code := resolveRefs(a, args, errOut)
	if code != exitcode.Success {
		return code
	}

	for _, task := range tasks {
		if err := a.MarkDone(ctx, task.ID); err != nil {
			return Report(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string                   { return "status" }
func (c *StatusCmd) Aliases() []string              { return []string{"mv"} }
func (c *StatusCmd) Synopsis() string               { return "Move a task to another status" }
func (c *StatusCmd) Usage() string                  { return appName + " status <ref> <todo|in-progress|done>" }
func (c *StatusCmd) NeedsAuth() bool                { return true }
func (c *StatusCmd) Layout() output.Layout          { return output.LayoutNone }
func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: status required")
		return exitcode.UserError
	}
	if len(args) > 2 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[2])
		return exitcode.UserError
	}

	status, err := parseStatus(args[1])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks, code := resolveRefs(a, args[:1], errOut)
	if code != exitcode.Success {
		return code
	}

	if err := a.UpdateTask(ctx, tasks[0].ID, service.StatusPatch(status)); err != nil {
		return Report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// resolveRefs parses args and resolves them against the loaded list.
// On failure it prints the error and returns a non-zero exit code.
func resolveRefs(a *app.App, args []string, errOut io.Writer) ([]service.Task, int) {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return nil, exitcode.UserError
	}

	tasks, err := findTasks(a.Current(), refs)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}
	return tasks, exitcode.Success
}
