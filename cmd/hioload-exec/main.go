// File: cmd/hioload-exec/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// hioload-exec drives simulated sessions through a configurable executor.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
