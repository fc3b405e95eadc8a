package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/output"
	"tasktrackr/internal/service"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

const dueLayout = "2006-01-02"

// taskFlags are the optional fields accepted by add and create.
type taskFlags struct {
	description string
	category    string
	status      string
	due         string
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.description, "desc", "", "")
	fs.StringVar(&f.description, "d", "", "")
	fs.StringVar(&f.category, "category", "", "")
	fs.StringVar(&f.category, "c", "", "")
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.status, "s", "", "")
	fs.StringVar(&f.due, "due", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

// SetCategory sets the category (for testing).
func (c *AddCmd) SetCategory(category string) {
	c.flags.category = category
}

// SetDue sets the due date (for testing).
func (c *AddCmd) SetDue(due string) {
	c.flags.due = due
}

func (c *AddCmd) Name() string          { return "add" }
func (c *AddCmd) Aliases() []string     { return nil }
func (c *AddCmd) Synopsis() string      { return "Create a task" }
func (c *AddCmd) Usage() string         { return appName + " add " + addFlagsUsage + " <title...>" }
func (c *AddCmd) NeedsAuth() bool       { return true }
func (c *AddCmd) Layout() output.Layout { return output.LayoutNone }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, a, c.flags, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	flags taskFlags
}

func (c *CreateCmd) Name() string          { return "create" }
func (c *CreateCmd) Aliases() []string     { return nil }
func (c *CreateCmd) Synopsis() string      { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string         { return appName + " create " + addFlagsUsage + " <title...>" }
func (c *CreateCmd) NeedsAuth() bool       { return true }
func (c *CreateCmd) Layout() output.Layout { return output.LayoutNone }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, a, c.flags, args, out, errOut)
}

const addFlagsUsage = "[--desc <text>] [--category <category>] [--status <status>] [--due <YYYY-MM-DD>]"

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, a *app.App, f taskFlags, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	in := service.TaskInput{
		Title:       title,
		Description: strings.TrimSpace(f.description),
	}

	if f.category != "" {
		cat, err := parseCategory(f.category)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		in.Category = cat
	}
	if f.status != "" {
		st, err := parseStatus(f.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		in.Status = st
	}
	if f.due != "" {
		due, err := parseDue(f.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		in.DueDate = due
	}

	task, err := a.SubmitNewTask(ctx, in)
	if err != nil {
		return Report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}

func parseStatus(s string) (service.Status, error) {
	st := service.Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Known() {
		return "", fmt.Errorf("invalid status: %s (want todo, in-progress or done)", s)
	}
	return st, nil
}

func parseCategory(s string) (service.Category, error) {
	cat := service.Category(strings.ToLower(strings.TrimSpace(s)))
	if !cat.Known() {
		return "", fmt.Errorf("invalid category: %s (want study, work, practice or personal)", s)
	}
	return cat, nil
}

func parseDue(s string) (string, error) {
	d, err := time.Parse(dueLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return d.Format(dueLayout), nil
}
