package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/stock-tracker/tracker/internal/tui"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive form; flags and the config file prefill it",
		Flags:  settingsFlags(),
		Action: tuiAction,
	}
}

func tuiAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, tuiLogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.Config{
		Provider: r.source,
		Renderer: r.renderer,
		Logger:   log,
		Options:  r.options,
		Defaults: requestFrom(cfg),
	})
}
