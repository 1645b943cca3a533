// colomap renders and explores colo tile maps from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/colo-planner-core/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.New().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
