package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukerupert/maidmanager/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(os.Stdin, os.Stdout, os.Stderr)
	err := cli.Root(app).Execute(ctx, os.Args[1:], os.Stderr)
	if cerr := app.Close(); cerr != nil {
		slog.Warn("close database", "error", cerr)
	}
	if err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", cli.UserMessage(err))
		os.Exit(1)
	}
}
