package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI

	parser, err := newParser(ctx, &cli)
	if err != nil {
		fmt.Fprintf(stderr, "lendingstats: %v\n", err)
		os.Exit(2)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(stderr, "lendingstats: %v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

func newParser(ctx context.Context, cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("lendingstats"),
		kong.Description("Lending analytics and concurrency benchmarks for a library network."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
}
