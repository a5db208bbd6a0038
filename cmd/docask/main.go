// Command docask answers questions about local documents with a local
// Ollama model.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docask/internal/adapters/driving/cli"
	"github.com/custodia-labs/docask/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetBootstrap(bootstrap)
	err := cli.Execute(ctx)
	if cerr := cli.Shutdown(); cerr != nil {
		logger.Warn("Closing store: %v", cerr)
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}
