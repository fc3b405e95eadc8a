// Package main is the entry point for the tasktrackr CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasktrackr/internal/cli"
	"tasktrackr/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.NewApp)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
