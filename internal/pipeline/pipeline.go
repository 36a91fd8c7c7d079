// Package pipeline runs the per-symbol fetch, info report, indicator, persist and chart stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/stock-tracker/tracker/internal/chart"
	"github.com/stock-tracker/tracker/internal/indicator"
	"github.com/stock-tracker/tracker/internal/logger"
	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
	"github.com/stock-tracker/tracker/pkg/marketdata/provider"
	"github.com/stock-tracker/tracker/pkg/marketdata/writer"
)

// Status texts shown while a run is in flight and when it completes.
const (
	StatusFetching = "Fetching stock data..."
	StatusPlotting = "Plotting stock data and saving to output folder..."
	MessageDone    = "Stock data and interactive plots saved to the output folder."
)

// Artifact extensions, appended to "<symbol>_stock_data".
const (
	ExtCSV     = ".csv"
	ExtHTML    = ".html"
	ExtParquet = ".parquet"
)

// ArtifactPath returns the path of a symbol's output file.
func ArtifactPath(outputFolder, symbol, ext string) string {
	return filepath.Join(outputFolder, symbol+"_stock_data"+ext)
}

type Options struct {
	Timespan  provider.Timespan
	SMAPeriod int
	RSIPeriod int
	// Parquet also exports each series through DuckDB.
	Parquet bool
	// FailFast stops the run at the first symbol error.
	FailFast bool
	// InfoOutput receives the info report. Nil discards it.
	InfoOutput io.Writer
	OnProgress OnProgress
	OnStatus   OnStatus
}

// DefaultOptions writes the info report to stdout with daily bars and the default periods.
func DefaultOptions() Options {
	return Options{
		Timespan:   provider.TimespanOneDay,
		SMAPeriod:  indicator.DefaultSMAPeriod,
		RSIPeriod:  indicator.DefaultRSIPeriod,
		InfoOutput: os.Stdout,
	}
}

type Pipeline struct {
	source   provider.Provider
	renderer chart.Renderer
	computer *indicator.Computer
	options  Options
	logger   *logger.Logger
}

// New creates a pipeline reading from source. A nil log discards log output.
func New(source provider.Provider, renderer chart.Renderer, log *logger.Logger, options Options) (*Pipeline, error) {
	if options.Timespan == "" {
		options.Timespan = provider.TimespanOneDay
	}

	if err := options.Timespan.Validate(); err != nil {
		return nil, err
	}

	computer, err := indicator.NewComputer(options.SMAPeriod, options.RSIPeriod)
	if err != nil {
		return nil, err
	}

	if options.InfoOutput == nil {
		options.InfoOutput = io.Discard
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Pipeline{
		source:   source,
		renderer: renderer,
		computer: computer,
		options:  options,
		logger:   log.Named("pipeline"),
	}, nil
}

// Run processes every symbol of req in order. Per-symbol failures are recorded in the
// report and joined into the returned error; the run goes on unless FailFast is set.
// A rejected request, an unusable output folder or a cancelled ctx stop the run.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (RunReport, error) {
	r := &run{
		pipeline: p,
		report: RunReport{
			RunID:     uuid.NewString(),
			StartedAt: time.Now(),
		},
	}
	r.log = p.logger.With(zap.String("run_id", r.report.RunID), zap.String("provider", string(p.source.Name())))

	err := r.execute(ctx, req)
	r.report.FinishedAt = time.Now()

	if err == errAbort {
		p.status("", "")
		r.log.Error("run stopped after first failure", zap.Int("failed", len(r.report.Failed())))

		return r.report, r.errs
	}

	if err != nil {
		p.status("", "")
		r.log.Error("run aborted", zap.Error(err))

		return r.report, multierr.Append(r.errs, err)
	}

	r.report.Message = MessageDone
	p.status("", MessageDone)
	r.log.Info("run finished",
		zap.Int("written", len(r.report.Written())),
		zap.Int("skipped", len(r.report.Skipped())),
		zap.Int("failed", len(r.report.Failed())),
		zap.Duration("elapsed", r.report.FinishedAt.Sub(r.report.StartedAt)))

	return r.report, r.errs
}

func (p *Pipeline) status(progress, message string) {
	if p.options.OnStatus != nil {
		p.options.OnStatus(progress, message)
	}
}

// run is the state of a single Run call.
type run struct {
	pipeline *Pipeline
	req      parsedRequest
	report   RunReport
	series   []types.TimeSeries
	progress *progress
	errs     error
	log      *logger.Logger
}

// errAbort stops the stages after a fail-fast error. Run returns only run.errs for it
// and never reports the run as done.
var errAbort = errors.New(errors.ErrCodeRunCancelled, "run stopped after first failure")

func (r *run) execute(ctx context.Context, req RunRequest) error {
	p := r.pipeline

	parsed, err := req.parse()
	if err != nil {
		return err
	}

	r.req = parsed

	if err := os.MkdirAll(parsed.OutputFolder, 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeOutputDirFailed, err, "failed to create output folder %s", parsed.OutputFolder)
	}

	r.report.Symbols = make([]SymbolReport, len(parsed.Symbols))
	r.series = make([]types.TimeSeries, len(parsed.Symbols))
	r.progress = newProgress(p.options.OnProgress, len(parsed.Symbols))

	for i, symbol := range parsed.Symbols {
		r.report.Symbols[i] = SymbolReport{Symbol: symbol}
	}

	r.log.Info("run started",
		zap.Strings("symbols", parsed.Symbols),
		zap.String("start", parsed.StartDate.Format(types.DateLayout)),
		zap.String("end", parsed.EndDate.Format(types.DateLayout)),
		zap.String("output", parsed.OutputFolder))

	p.status(StatusFetching, "")

	if err := r.fetchAll(ctx); err != nil {
		return err
	}

	if err := r.reportInfo(ctx); err != nil {
		return err
	}

	if err := r.persistAll(ctx); err != nil {
		return err
	}

	p.status(StatusPlotting, "")

	if err := r.renderAll(ctx); err != nil {
		return err
	}

	r.progress.done("Done")

	return nil
}

func (r *run) fetchAll(ctx context.Context) error {
	for i, symbol := range r.req.Symbols {
		if err := checkContext(ctx); err != nil {
			return err
		}

		r.progress.step(fmt.Sprintf("Fetching %s", symbol))

		result := r.pipeline.source.Fetch(ctx, symbol, r.req.StartDate, r.req.EndDate, r.pipeline.options.Timespan)
		r.report.Symbols[i].Fetch = result.Status

		switch result.Status {
		case types.LookupFound:
			r.series[i] = result.Value
			r.log.Debug("fetched", zap.String("symbol", symbol), zap.Int("records", result.Value.Len()))
		case types.LookupNotFound:
			r.series[i] = types.NewTimeSeries(symbol, nil)
			r.log.Info("no data for symbol", zap.String("symbol", symbol), zap.NamedError("reason", result.Err))
		case types.LookupError:
			r.series[i] = types.NewTimeSeries(symbol, nil)
			if err := r.fail(i, result.Err); err != nil {
				return err
			}
		}
	}

	return nil
}

// reportInfo writes one block per symbol and a trailing blank line.
func (r *run) reportInfo(ctx context.Context) error {
	out := r.pipeline.options.InfoOutput

	for i, symbol := range r.req.Symbols {
		if err := checkContext(ctx); err != nil {
			return err
		}

		r.progress.step(fmt.Sprintf("Looking up %s", symbol))

		info := normalizeInfo(symbol, r.pipeline.source.Info(ctx, symbol))
		r.report.Symbols[i].Info = info

		if info.IsError() {
			r.log.Warn("ticker info unavailable", zap.String("symbol", symbol), zap.Error(info.Err))
		}

		if err := writeInfo(out, symbol, info); err != nil {
			r.log.Warn("failed to write info report", zap.Error(err))
		}
	}

	if _, err := fmt.Fprintln(out); err != nil {
		r.log.Warn("failed to write info report", zap.Error(err))
	}

	return nil
}

// writable reports whether symbol i gets output files.
func (r *run) writable(i int) bool {
	s := r.report.Symbols[i]

	return s.Err == nil && !s.Skipped()
}

func (r *run) persistAll(ctx context.Context) error {
	for i, symbol := range r.req.Symbols {
		if err := checkContext(ctx); err != nil {
			return err
		}

		if !r.writable(i) {
			r.progress.skip()

			continue
		}

		r.progress.step(fmt.Sprintf("Saving %s", symbol))

		if err := r.pipeline.computer.Apply(&r.series[i]); err != nil {
			if err := r.fail(i, err); err != nil {
				return err
			}

			continue
		}

		latest, err := r.pipeline.computer.Latest(r.series[i])
		if err != nil {
			if err := r.fail(i, err); err != nil {
				return err
			}

			continue
		}

		r.report.Symbols[i].Latest = latest
		r.logLatest(symbol, latest)

		csvPath := ArtifactPath(r.req.OutputFolder, symbol, ExtCSV)
		if _, err := writer.WriteSeries(writer.NewCSVWriter(csvPath), r.series[i]); err != nil {
			if err := r.fail(i, err); err != nil {
				return err
			}

			continue
		}

		r.report.Symbols[i].CSVPath = csvPath
		r.report.Symbols[i].Records = r.series[i].Len()
		r.log.Info("saved csv", zap.String("symbol", symbol), zap.Int("records", r.series[i].Len()), zap.String("path", csvPath))

		if !r.pipeline.options.Parquet {
			continue
		}

		parquetPath := ArtifactPath(r.req.OutputFolder, symbol, ExtParquet)
		if _, err := writer.WriteSeries(writer.NewDuckDBWriter(parquetPath), r.series[i]); err != nil {
			if err := r.fail(i, err); err != nil {
				return err
			}

			continue
		}

		r.report.Symbols[i].ParquetPath = parquetPath
		r.log.Info("saved parquet", zap.String("symbol", symbol), zap.String("path", parquetPath))
	}

	return nil
}

func (r *run) logLatest(symbol string, latest []indicator.Reading) {
	fields := make([]zap.Field, 0, len(latest)+1)
	fields = append(fields, zap.String("symbol", symbol))

	for _, reading := range latest {
		fields = append(fields, zap.Float64(string(reading.Indicator), reading.Value))
	}

	r.log.Info("latest indicators", fields...)
}

func (r *run) renderAll(ctx context.Context) error {
	for i, symbol := range r.req.Symbols {
		if err := checkContext(ctx); err != nil {
			return err
		}

		if !r.writable(i) || r.report.Symbols[i].CSVPath == "" {
			r.progress.skip()

			continue
		}

		r.progress.step(fmt.Sprintf("Plotting %s", symbol))

		htmlPath := ArtifactPath(r.req.OutputFolder, symbol, ExtHTML)
		if err := chart.RenderFile(r.pipeline.renderer, htmlPath, r.series[i]); err != nil {
			if err := r.fail(i, err); err != nil {
				return err
			}

			continue
		}

		r.report.Symbols[i].HTMLPath = htmlPath
		r.log.Info("saved chart", zap.String("symbol", symbol), zap.String("path", htmlPath))
	}

	return nil
}

// fail records err for symbol i. It returns errAbort when the run must stop.
func (r *run) fail(i int, err error) error {
	symbol := r.report.Symbols[i].Symbol

	r.report.Symbols[i].Err = err
	r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", symbol, err))
	r.log.Error("symbol failed", zap.String("symbol", symbol), zap.Error(err))

	if r.pipeline.options.FailFast {
		return errAbort
	}

	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeRunCancelled, "run cancelled", err)
	}

	return nil
}
