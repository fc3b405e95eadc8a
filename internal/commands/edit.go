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
	"tasktrackr/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	set   bool
	value string
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.set = true
	o.value = s
	return nil
}

// EditCmd changes selected fields of one task. Only flags that were given
// end up in the request.
type EditCmd struct {
	title       optString
	description optString
	category    optString
	status      optString
	due         optString
}

func (c *EditCmd) Name() string          { return "edit" }
func (c *EditCmd) Aliases() []string     { return nil }
func (c *EditCmd) Synopsis() string      { return "Change task fields" }
func (c *EditCmd) Usage() string         { return appName + " edit [--title <t>] " + addFlagsUsage + " <ref>" }
func (c *EditCmd) NeedsAuth() bool       { return true }
func (c *EditCmd) Layout() output.Layout { return output.LayoutNone }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.category, "category", "")
	fs.Var(&c.category, "c", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	patch, err := c.patch()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if patch == (service.TaskPatch{}) {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	tasks, code := resolveRefs(a, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := a.UpdateTask(ctx, tasks[0].ID, patch); err != nil {
		return Report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch

	if c.title.set {
		title := strings.TrimSpace(c.title.value)
		if err := (service.TaskInput{Title: title}).Validate(); err != nil {
			return p, err
		}
		p.Title = &title
	}
	if c.description.set {
		desc := strings.TrimSpace(c.description.value)
		p.Description = &desc
	}
	if c.category.set {
		cat, err := parseCategory(c.category.value)
		if err != nil {
			return p, err
		}
		p.Category = &cat
	}
	if c.status.set {
		st, err := parseStatus(c.status.value)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if c.due.set {
		due := ""
		if strings.TrimSpace(c.due.value) != "" {
			var err error
			if due, err = parseDue(c.due.value); err != nil {
				return p, err
			}
		}
		p.DueDate = &due
	}
	return p, nil
}
