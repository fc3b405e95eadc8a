package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"tasktrackr/internal/app"
	"tasktrackr/internal/config"
	"tasktrackr/internal/exitcode"
	"tasktrackr/internal/output"
	"tasktrackr/internal/session"
)

// MinWatchInterval is the shortest reload interval the scheduler supports.
const MinWatchInterval = time.Second

func init() {
	Register(&WatchCmd{})
}

// WatchCmd reloads the task list on a schedule and prints every frame
// until interrupted or the session ends.
type WatchCmd struct {
	every     time.Duration
	withStats bool
}

// SetEvery sets the reload interval (for testing).
func (c *WatchCmd) SetEvery(d time.Duration) {
	c.every = d
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Reload the task list periodically" }
func (c *WatchCmd) Usage() string     { return appName + " watch [--every <duration>] [--stats]" }
func (c *WatchCmd) NeedsAuth() bool   { return true }
func (c *WatchCmd) Live() bool        { return true }

func (c *WatchCmd) Layout() output.Layout {
	if c.withStats {
		return output.LayoutFull
	}
	return output.LayoutTable
}

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.every, "every", 30*time.Second, "")
	fs.BoolVar(&c.withStats, "stats", false, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.every < MinWatchInterval {
		fmt.Fprintf(errOut, "error: invalid interval: %s (minimum %s)\n", c.every, MinWatchInterval)
		return exitcode.UserError
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := cron.New()
	_, err := sched.AddFunc("@every "+c.every.String(), func() {
		// Reload errors are reported by the view; only a lost session stops the watch.
		_ = a.RequestReload(ctx)
		if a.Session().State != session.Authenticated {
			cancel()
		}
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	sched.Start()
	<-ctx.Done()
	<-sched.Stop().Done()

	if a.Session().State != session.Authenticated {
		fmt.Fprintf(errOut, "error: session expired (run: %s login)\n", appName)
		return exitcode.AuthError
	}
	return exitcode.Success
}
