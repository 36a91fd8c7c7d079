// Package config loads tracker settings from an optional YAML file, a .env file and the environment.
//
// Precedence, lowest first: Default, the YAML file, environment variables (for credentials),
// then command line flags applied by the caller.
package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/stock-tracker/tracker/internal/indicator"
	"github.com/stock-tracker/tracker/internal/version"
	"github.com/stock-tracker/tracker/pkg/errors"
	"github.com/stock-tracker/tracker/pkg/marketdata"
	"github.com/stock-tracker/tracker/pkg/marketdata/provider"
)

// Environment variables read for provider credentials.
const (
	EnvPolygonApiKey   = "POLYGON_API_KEY"
	EnvAlpacaApiKey    = "ALPACA_API_KEY"
	EnvAlpacaApiSecret = "ALPACA_API_SECRET"
)

// DefaultEnvFile is loaded when present in the working directory.
const DefaultEnvFile = ".env"

type Config struct {
	Version      string            `yaml:"version" json:"version,omitempty" jsonschema:"title=Version,description=Tracker version the file was written for (e.g. 0.3)"`
	Provider     string            `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=yahoo,enum=polygon,enum=alpaca,enum=binance,default=yahoo" validate:"required,oneof=yahoo polygon alpaca binance"`
	Interval     string            `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar interval,enum=1d,enum=1w,enum=1M,default=1d" validate:"required,oneof=1d 1w 1M"`
	Symbols      []string          `yaml:"symbols" json:"symbols,omitempty" jsonschema:"title=Symbols,description=Ticker symbols to process (e.g. AAPL)"`
	StartDate    string            `yaml:"start_date" json:"start_date,omitempty" jsonschema:"title=Start Date,description=First trading date (YYYY-MM-DD),format=date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string            `yaml:"end_date" json:"end_date,omitempty" jsonschema:"title=End Date,description=Exclusive end date (YYYY-MM-DD),format=date" validate:"omitempty,datetime=2006-01-02"`
	OutputFolder string            `yaml:"output_folder" json:"output_folder,omitempty" jsonschema:"title=Output Folder,description=Directory for the CSV and HTML files"`
	Parquet      bool              `yaml:"parquet" json:"parquet,omitempty" jsonschema:"title=Parquet,description=Also export each series as Parquet"`
	FailFast     bool              `yaml:"fail_fast" json:"fail_fast,omitempty" jsonschema:"title=Fail Fast,description=Abort the run on the first symbol error"`
	ChartScript  string            `yaml:"chart_script" json:"chart_script,omitempty" jsonschema:"title=Chart Script,description=Local echarts.min.js inlined into the HTML instead of the embedded copy"`
	Indicators   IndicatorConfig   `yaml:"indicators" json:"indicators" jsonschema:"title=Indicators"`
	Credentials  CredentialsConfig `yaml:"credentials" json:"credentials,omitempty" jsonschema:"title=Credentials,description=Provider keys; environment variables take precedence"`
	Log          LogConfig         `yaml:"log" json:"log,omitempty" jsonschema:"title=Logging"`
}

type IndicatorConfig struct {
	SMAPeriod int `yaml:"sma_period" json:"sma_period" jsonschema:"title=SMA Period,minimum=1,default=20" validate:"min=1"`
	RSIPeriod int `yaml:"rsi_period" json:"rsi_period" jsonschema:"title=RSI Period,minimum=1,default=14" validate:"min=1"`
}

type CredentialsConfig struct {
	PolygonApiKey   string `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" jsonschema:"title=Polygon API Key"`
	AlpacaApiKey    string `yaml:"alpaca_api_key" json:"alpaca_api_key,omitempty" jsonschema:"title=Alpaca API Key"`
	AlpacaApiSecret string `yaml:"alpaca_api_secret" json:"alpaca_api_secret,omitempty" jsonschema:"title=Alpaca API Secret"`
	YahooBaseURL    string `yaml:"yahoo_base_url" json:"yahoo_base_url,omitempty" jsonschema:"title=Yahoo Base URL,format=uri" validate:"omitempty,url"`
}

type LogConfig struct {
	Debug bool   `yaml:"debug" json:"debug,omitempty" jsonschema:"title=Debug,description=Development console logging at debug level"`
	File  string `yaml:"file" json:"file,omitempty" jsonschema:"title=Log File,description=Log destination; the TUI defaults to tracker.log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Provider: string(provider.ProviderYahoo),
		Interval: string(provider.TimespanOneDay),
		Indicators: IndicatorConfig{
			SMAPeriod: indicator.DefaultSMAPeriod,
			RSIPeriod: indicator.DefaultRSIPeriod,
		},
	}
}

// Load reads path on top of Default, then fills credentials from envFile and the environment.
// An empty path skips the YAML file; a missing envFile is ignored.
func Load(path string, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
		}

		if err := version.CheckConfigCompatibility(version.GetVersion(), cfg.Version); err != nil {
			return Config{}, err
		}
	}

	if err := LoadEnv(&cfg, envFile); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadEnv loads envFile into the process environment (without overriding set variables)
// and copies the provider keys into cfg.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", envFile)
			}
		}
	}

	overrideFromEnv(&cfg.Credentials.PolygonApiKey, EnvPolygonApiKey)
	overrideFromEnv(&cfg.Credentials.AlpacaApiKey, EnvAlpacaApiKey)
	overrideFromEnv(&cfg.Credentials.AlpacaApiSecret, EnvAlpacaApiSecret)

	return nil
}

func overrideFromEnv(field *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*field = value
	}
}

// Validate checks field formats and that the selected provider has its credentials.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := validator.New().Struct(c.ClientConfig()); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "missing credentials for provider %s", c.Provider)
	}

	return nil
}

// ClientConfig maps the provider settings to the market data client configuration.
func (c Config) ClientConfig() marketdata.ClientConfig {
	return marketdata.ClientConfig{
		ProviderType:    marketdata.ProviderType(c.Provider),
		PolygonApiKey:   c.Credentials.PolygonApiKey,
		AlpacaApiKey:    c.Credentials.AlpacaApiKey,
		AlpacaApiSecret: c.Credentials.AlpacaApiSecret,
		YahooBaseURL:    c.Credentials.YahooBaseURL,
	}
}

// GenerateSchema generates a JSON schema for Config.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	//nolint:exhaustruct // empty struct is intentional for schema generation
	schema := reflector.Reflect(&Config{})
	schema.Title = "tracker-config"
	schema.Description = "Configuration file for the stock tracker"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates the indented JSON schema for Config.
func GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
