// Command scimath factors integers, evaluates the Lambert W function and
// computes definite integrals at arbitrary precision.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "scimath:", err)
		os.Exit(1)
	}
}
