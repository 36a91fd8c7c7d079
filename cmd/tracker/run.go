package main

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/stock-tracker/tracker/internal/pipeline"
)

const flagNoProgress = "no-progress"

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the pipeline once for the given symbols and dates",
		Flags: append(settingsFlags(), &cli.BoolFlag{
			Name:  flagNoProgress,
			Usage: "do not draw the progress bar",
		}),
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	errOut := cmd.Root().ErrWriter

	bar := newProgressBar(errOut, !cmd.Bool(flagNoProgress))

	options := r.options
	options.InfoOutput = out
	options.OnProgress = func(current, total float64, step string) {
		bar.ChangeMax64(int64(total))
		bar.Describe(step)
		_ = bar.Set64(int64(current))
	}
	options.OnStatus = func(progress, message string) {
		if progress != "" {
			log.Info(progress)
		}

		if message != "" {
			_ = bar.Finish()
			fmt.Fprintln(errOut, message)
		}
	}

	p, err := pipeline.New(r.source, r.renderer, log, options)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, requestFrom(cfg))
	_ = bar.Exit()

	for _, s := range report.Failed() {
		log.Warn("symbol failed", zap.String("symbol", s.Symbol), zap.Error(s.Err))
	}

	if err != nil {
		return fmt.Errorf("run %s finished with errors: %w", report.RunID, err)
	}

	return nil
}

func newProgressBar(w io.Writer, visible bool) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}
