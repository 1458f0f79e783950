// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/priorank/priorank-cli/cmd"
)

// main is the entry point for the priorank CLI.
func main() {
	// A signal-aware context lets Ctrl+C abort an in-flight ranking run
	// cleanly instead of killing the process mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
