package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
)

// notifyContext returns a context cancelled on SIGINT/SIGTERM, so an
// interactive run stops cleanly after finishing its current tick.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// isTerminal reports whether f is attached to an interactive terminal,
// controlling whether the dashboard clears the screen between ticks.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd())
}
