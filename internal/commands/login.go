package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/output"
	"tasktrackr/internal/session"
)

// EnvPassword supplies the password when --password is not given.
const EnvPassword = "TASKTRACKR_PASSWORD"

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string          { return "login" }
func (c *LoginCmd) Aliases() []string     { return nil }
func (c *LoginCmd) Synopsis() string      { return "Sign in" }
func (c *LoginCmd) Usage() string         { return appName + " login --email <email> [--password <password>]" }
func (c *LoginCmd) NeedsAuth() bool       { return false }
func (c *LoginCmd) Layout() output.Layout { return output.LayoutNone }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	creds := session.Credentials{Email: c.email, Password: passwordOrEnv(c.password)}
	if strings.TrimSpace(creds.Email) == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	if creds.Password == "" {
		fmt.Fprintf(errOut, "error: password required (--password or $%s)\n", EnvPassword)
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := a.SubmitLogin(ctx, creds); err != nil {
		return Report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", session.Describe(a.Session().User))
	}
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	email    string
	password string
}

func (c *RegisterCmd) Name() string          { return "register" }
func (c *RegisterCmd) Aliases() []string     { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string      { return "Create an account and sign in" }
func (c *RegisterCmd) NeedsAuth() bool       { return false }
func (c *RegisterCmd) Layout() output.Layout { return output.LayoutNone }

func (c *RegisterCmd) Usage() string {
	return appName + " register --name <name> --email <email> [--password <password>]"
}

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.name, "n", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	reg := session.Registration{
		Name:     strings.TrimSpace(c.name),
		Email:    c.email,
		Password: passwordOrEnv(c.password),
	}
	if reg.Name == "" {
		fmt.Fprintln(errOut, "error: name required")
		return exitcode.UserError
	}
	if strings.TrimSpace(reg.Email) == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	if reg.Password == "" {
		fmt.Fprintf(errOut, "error: password required (--password or $%s)\n", EnvPassword)
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := a.SubmitRegister(ctx, reg); err != nil {
		return Report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered %s\n", session.Describe(a.Session().User))
	}
	return exitcode.Success
}

func passwordOrEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvPassword)
}
