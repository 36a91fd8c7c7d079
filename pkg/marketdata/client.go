package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
	"github.com/stock-tracker/tracker/pkg/marketdata/provider"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderYahoo   = provider.ProviderYahoo
	ProviderPolygon = provider.ProviderPolygon
	ProviderAlpaca  = provider.ProviderAlpaca
	ProviderBinance = provider.ProviderBinance
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType    ProviderType `validate:"required,oneof=yahoo polygon alpaca binance"`
	PolygonApiKey   string       `validate:"required_if=ProviderType polygon"`
	AlpacaApiKey    string       `validate:"required_if=ProviderType alpaca"`
	AlpacaApiSecret string       `validate:"required_if=ProviderType alpaca"`
	YahooBaseURL    string       `validate:"omitempty,url"`
}

// DownloadParams holds the parameters for a market data download request.
// EndDate is exclusive; an EndDate not after StartDate yields an empty series.
type DownloadParams struct {
	Symbol    string            `validate:"required"`
	StartDate time.Time         `validate:"required"`
	EndDate   time.Time         `validate:"required"`
	Timespan  provider.Timespan `validate:"required"`
}

// Client validates requests before handing them to the configured provider.
// It satisfies provider.Provider so the pipeline can use it directly.
type Client struct {
	provider provider.Provider
	validate *validator.Validate
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, provider.Credentials{
		PolygonApiKey:   config.PolygonApiKey,
		AlpacaApiKey:    config.AlpacaApiKey,
		AlpacaApiSecret: config.AlpacaApiSecret,
		YahooBaseURL:    config.YahooBaseURL,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidProvider, err, "failed to create %s client", config.ProviderType)
	}

	return NewClientWithProvider(marketProvider), nil
}

// NewClientWithProvider wraps an existing provider.
func NewClientWithProvider(p provider.Provider) *Client {
	return &Client{
		provider: p,
		validate: validator.New(),
	}
}

func (c *Client) Name() provider.ProviderType {
	return c.provider.Name()
}

// Download fetches the series described by params.
func (c *Client) Download(ctx context.Context, params DownloadParams) types.LookupResult[types.TimeSeries] {
	if err := c.validate.Struct(params); err != nil {
		return types.Failed[types.TimeSeries](errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err))
	}

	if err := params.Timespan.Validate(); err != nil {
		return types.Failed[types.TimeSeries](err)
	}

	return c.provider.Fetch(ctx, params.Symbol, params.StartDate, params.EndDate, params.Timespan)
}

// Fetch is Download with positional arguments.
func (c *Client) Fetch(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timespan provider.Timespan) types.LookupResult[types.TimeSeries] {
	return c.Download(ctx, DownloadParams{
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
		Timespan:  timespan,
	})
}

func (c *Client) Info(ctx context.Context, symbol string) types.LookupResult[types.TickerInfo] {
	if symbol == "" {
		return types.Failed[types.TickerInfo](errors.New(errors.ErrCodeMissingParameter, "symbol is required"))
	}

	return c.provider.Info(ctx, symbol)
}
