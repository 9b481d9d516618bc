// SPDX-License-Identifier: MIT

// Command ssetree evaluates SSE tree log-likelihoods from YAML problem files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/ssetree/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		format, _ := root.PersistentFlags().GetString("format")
		cli.WriteError(root.ErrOrStderr(), format, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
