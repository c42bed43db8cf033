// Package main provides the entry point for the eventstudio CLI tool.
package main

import (
	"context"
	"os"

	"github.com/randalmurphal/eventstudio/cmd/eventstudio/app"
)

// Version information populated at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application := app.New(version, commit, date)

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
