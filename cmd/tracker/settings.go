package main

import (
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/stock-tracker/tracker/internal/chart"
	"github.com/stock-tracker/tracker/internal/config"
	"github.com/stock-tracker/tracker/internal/logger"
	"github.com/stock-tracker/tracker/internal/pipeline"
	"github.com/stock-tracker/tracker/pkg/errors"
	"github.com/stock-tracker/tracker/pkg/marketdata"
	"github.com/stock-tracker/tracker/pkg/marketdata/provider"
)

// Flag names shared by run and tui.
const (
	flagConfig       = "config"
	flagEnvFile      = "env-file"
	flagProvider     = "provider"
	flagInterval     = "interval"
	flagSymbols      = "symbols"
	flagStart        = "start"
	flagEnd          = "end"
	flagOutput       = "output"
	flagParquet      = "parquet"
	flagFailFast     = "fail-fast"
	flagSMAPeriod    = "sma-period"
	flagRSIPeriod    = "rsi-period"
	flagDebug        = "debug"
	flagLogFile      = "log-file"
	flagPolygonKey   = "polygon-api-key"
	flagAlpacaKey    = "alpaca-api-key"
	flagAlpacaSecret = "alpaca-api-secret"
	flagYahooURL     = "yahoo-base-url"
	flagChartScript  = "chart-script"
)

// tuiLogFile keeps log lines off the terminal while the form is drawn.
const tuiLogFile = "tracker.log"

func settingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "YAML config `FILE` (see `tracker schema`)",
		},
		&cli.StringFlag{
			Name:  flagEnvFile,
			Usage: "dotenv `FILE` with provider keys, ignored when missing",
			Value: config.DefaultEnvFile,
		},
		&cli.StringFlag{
			Name:    flagProvider,
			Aliases: []string{"p"},
			Usage:   "market data provider (" + strings.Join(marketdata.GetSupportedProviders(), ", ") + ")",
		},
		&cli.StringFlag{
			Name:    flagInterval,
			Aliases: []string{"i"},
			Usage:   "bar interval (1d, 1w, 1M)",
		},
		&cli.StringFlag{
			Name:    flagSymbols,
			Aliases: []string{"s"},
			Usage:   "comma separated stock `SYMBOLS`, e.g. AAPL,MSFT",
		},
		&cli.StringFlag{
			Name:  flagStart,
			Usage: "start date in `YYYY-MM-DD` format",
		},
		&cli.StringFlag{
			Name:  flagEnd,
			Usage: "exclusive end date in `YYYY-MM-DD` format",
		},
		&cli.StringFlag{
			Name:    flagOutput,
			Aliases: []string{"o"},
			Usage:   "output `DIR` for the CSV and HTML files",
		},
		&cli.BoolFlag{
			Name:  flagParquet,
			Usage: "also export <symbol>_stock_data.parquet",
		},
		&cli.BoolFlag{
			Name:  flagFailFast,
			Usage: "stop at the first symbol that fails",
		},
		&cli.IntFlag{
			Name:  flagSMAPeriod,
			Usage: "SMA window",
		},
		&cli.IntFlag{
			Name:  flagRSIPeriod,
			Usage: "RSI period",
		},
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "debug logging with the console encoder",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "write logs to `FILE`",
		},
		&cli.StringFlag{
			Name:    flagPolygonKey,
			Usage:   "Polygon.io API key",
			Sources: cli.EnvVars(config.EnvPolygonApiKey),
		},
		&cli.StringFlag{
			Name:    flagAlpacaKey,
			Usage:   "Alpaca API key",
			Sources: cli.EnvVars(config.EnvAlpacaApiKey),
		},
		&cli.StringFlag{
			Name:    flagAlpacaSecret,
			Usage:   "Alpaca API secret",
			Sources: cli.EnvVars(config.EnvAlpacaApiSecret),
		},
		&cli.StringFlag{
			Name:  flagYahooURL,
			Usage: "Yahoo Finance base `URL`",
		},
		&cli.StringFlag{
			Name:  flagChartScript,
			Usage: "inline this echarts.min.js `FILE` instead of the embedded copy",
		},
	}
}

// loadConfig reads the config file and .env, then applies the flags that were set.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String(flagConfig), cmd.String(flagEnvFile))
	if err != nil {
		return config.Config{}, err
	}

	setString := func(name string, field *string) {
		if cmd.IsSet(name) {
			*field = cmd.String(name)
		}
	}

	setBool := func(name string, field *bool) {
		if cmd.IsSet(name) {
			*field = cmd.Bool(name)
		}
	}

	setInt := func(name string, field *int) {
		if cmd.IsSet(name) {
			*field = int(cmd.Int(name))
		}
	}

	setString(flagProvider, &cfg.Provider)
	setString(flagInterval, &cfg.Interval)
	setString(flagStart, &cfg.StartDate)
	setString(flagEnd, &cfg.EndDate)
	setString(flagOutput, &cfg.OutputFolder)
	setString(flagLogFile, &cfg.Log.File)
	setString(flagPolygonKey, &cfg.Credentials.PolygonApiKey)
	setString(flagAlpacaKey, &cfg.Credentials.AlpacaApiKey)
	setString(flagAlpacaSecret, &cfg.Credentials.AlpacaApiSecret)
	setString(flagYahooURL, &cfg.Credentials.YahooBaseURL)
	setString(flagChartScript, &cfg.ChartScript)
	setBool(flagParquet, &cfg.Parquet)
	setBool(flagFailFast, &cfg.FailFast)
	setBool(flagDebug, &cfg.Log.Debug)
	setInt(flagSMAPeriod, &cfg.Indicators.SMAPeriod)
	setInt(flagRSIPeriod, &cfg.Indicators.RSIPeriod)

	if cmd.IsSet(flagSymbols) {
		cfg.Symbols = pipeline.ParseSymbols(cmd.String(flagSymbols))
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// newLogger logs to cfg.Log.File, or to fallback when no file is configured.
func newLogger(cfg config.Config, fallback string) (*logger.Logger, error) {
	output := cfg.Log.File
	if output == "" {
		output = fallback
	}

	return logger.NewLoggerWithConfig(logger.Config{Debug: cfg.Log.Debug, OutputPath: output})
}

// runner holds what a pipeline needs, built from the resolved config.
type runner struct {
	source   provider.Provider
	renderer chart.Renderer
	options  pipeline.Options
}

func newRunner(cfg config.Config) (runner, error) {
	client, err := marketdata.NewClient(cfg.ClientConfig())
	if err != nil {
		return runner{}, err
	}

	options := pipeline.DefaultOptions()
	options.Timespan = provider.Timespan(cfg.Interval)
	options.SMAPeriod = cfg.Indicators.SMAPeriod
	options.RSIPeriod = cfg.Indicators.RSIPeriod
	options.Parquet = cfg.Parquet
	options.FailFast = cfg.FailFast

	chartOptions := chart.DefaultOptions().WithPeriods(cfg.Indicators.SMAPeriod, cfg.Indicators.RSIPeriod)

	if cfg.ChartScript != "" {
		script, err := os.ReadFile(cfg.ChartScript)
		if err != nil {
			return runner{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read chart script %s", cfg.ChartScript)
		}

		chartOptions = chartOptions.WithScript(script)
	}

	return runner{
		source:   client,
		renderer: chart.NewRenderer(chartOptions),
		options:  options,
	}, nil
}

func requestFrom(cfg config.Config) pipeline.RunRequest {
	return pipeline.RunRequest{
		Symbols:      strings.Join(cfg.Symbols, ","),
		StartDate:    cfg.StartDate,
		EndDate:      cfg.EndDate,
		OutputFolder: cfg.OutputFolder,
	}
}
