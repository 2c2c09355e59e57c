// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dashvolt/grabbit-cli/cmd"
)

// main is the entry point for the grabbit CLI.
func main() {
	// A signal-aware context lets an in-flight acquisition terminate with a
	// Cancelled outcome instead of being killed mid-attempt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
