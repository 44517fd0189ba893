package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/MrEthical07/jwtgen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args, cli.Options{})
	stop()
	os.Exit(code)
}
