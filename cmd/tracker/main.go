package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/stock-tracker/tracker/internal/version"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tracker",
		Usage:   "Download daily stock prices, compute SMA and RSI, and save CSV files and interactive charts",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			runCommand(),
			tuiCommand(),
			providersCommand(),
			schemaCommand(),
			versionCommand(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
