package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/ardnew/scenec/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)
	interrupted := ctx.Err() != nil

	stop()

	switch {
	case err == nil:
	case interrupted && errors.Is(err, context.Canceled):
		cli.Warn(os.Stderr, "interrupted")
		os.Exit(130)
	default:
		cli.Report(os.Stderr, err)
		os.Exit(1)
	}
}
