// Command tenantlog loads a tenants file and exercises the delegation sink:
// it validates the file, lists the resolved destinations, and emits demo
// records for every tenant concurrently through any of the supported
// logging front ends.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
