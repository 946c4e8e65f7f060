package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"devstudio/internal/cli"
)

// main hands everything to cli.Run so the command line surface stays testable.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
