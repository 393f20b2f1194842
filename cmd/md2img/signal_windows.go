//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext is canceled on interrupt, which starts a graceful
// shutdown of the server. Windows has no SIGTERM.
func notifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
