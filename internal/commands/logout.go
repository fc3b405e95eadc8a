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
	"tasktrackr/internal/session"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string                   { return "logout" }
func (c *LogoutCmd) Aliases() []string              { return nil }
func (c *LogoutCmd) Synopsis() string               { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string                  { return appName + " logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool                { return false }
func (c *LogoutCmd) Layout() output.Layout          { return output.LayoutNone }
func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if !a.HasStoredToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	a.Logout()

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// WhoamiCmd prints the signed-in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string                   { return "whoami" }
func (c *WhoamiCmd) Aliases() []string              { return nil }
func (c *WhoamiCmd) Synopsis() string               { return "Print the signed-in user" }
func (c *WhoamiCmd) Usage() string                  { return appName + " whoami" }
func (c *WhoamiCmd) NeedsAuth() bool                { return true }
func (c *WhoamiCmd) Layout() output.Layout          { return output.LayoutNone }
func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, session.Describe(a.Session().User))
	return exitcode.Success
}
