package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is set via ldflags during build
var version = "dev"

func main() {
	// Interrupts cancel the running command.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
