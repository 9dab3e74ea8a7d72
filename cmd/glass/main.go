package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyvit/glass/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		out := &cli.OutputFormatter{Format: "text", Writer: os.Stderr}
		if f := cmd.Flag("format"); f != nil {
			out.Format = f.Value.String()
		}
		out.Error(err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
