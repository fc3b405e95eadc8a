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
	Register(&ShowCmd{})
}

// ShowCmd prints one task in full.
type ShowCmd struct {
	format string
}

// SetFormat sets the output format (for testing).
func (c *ShowCmd) SetFormat(format string) {
	c.format = format
}

func (c *ShowCmd) Name() string          { return "show" }
func (c *ShowCmd) Aliases() []string     { return nil }
func (c *ShowCmd) Synopsis() string      { return "Show task details" }
func (c *ShowCmd) Usage() string         { return appName + " show [--format text|json|xml] <ref>" }
func (c *ShowCmd) NeedsAuth() bool       { return true }
func (c *ShowCmd) Layout() output.Layout { return output.LayoutNone }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", output.DetailText, "")
	fs.StringVar(&c.format, "f", output.DetailText, "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	switch c.format {
	case "", output.DetailText, output.DetailJSON, output.DetailXML:
	default:
		fmt.Fprintf(errOut, "error: unknown format: %s\n", c.format)
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

	if err := output.FormatDetail(out, tasks[0], c.format); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
