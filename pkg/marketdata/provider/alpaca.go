package provider

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// AlpacaAPIClient is the subset of the alpaca trading and market data clients used by AlpacaClient.
type AlpacaAPIClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetAsset(symbol string) (*alpaca.Asset, error)
}

type alpacaRESTClient struct {
	trading    *alpaca.Client
	marketData *marketdata.Client
}

func (a *alpacaRESTClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	return a.marketData.GetBars(symbol, req)
}

func (a *alpacaRESTClient) GetAsset(symbol string) (*alpaca.Asset, error) {
	return a.trading.GetAsset(symbol)
}

type AlpacaClient struct {
	apiClient AlpacaAPIClient
	location  *time.Location
}

func NewAlpacaClient(apiKey string, apiSecret string) (Provider, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "alpaca api key and secret are required")
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	api := &alpacaRESTClient{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		marketData: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}

	return NewAlpacaClientWithAPI(api), nil
}

func NewAlpacaClientWithAPI(apiClient AlpacaAPIClient) *AlpacaClient {
	return &AlpacaClient{
		apiClient: apiClient,
		location:  newYorkLocation(),
	}
}

func (c *AlpacaClient) Name() ProviderType {
	return ProviderAlpaca
}

// Fetch downloads split and dividend adjusted bars. The alpaca client pages internally
// but does not accept a context, so cancellation is only checked before the request.
func (c *AlpacaClient) Fetch(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timespan Timespan) types.LookupResult[types.TimeSeries] {
	if !startDate.Before(endDate) {
		return types.Found(types.NewTimeSeries(symbol, nil))
	}

	if err := ctx.Err(); err != nil {
		return fetchFailed[types.TimeSeries](symbol, err)
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	bars, err := c.apiClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  timespan.AlpacaTimeFrame(),
		Adjustment: marketdata.All,
		Start:      startDate,
		End:        endDate.Add(-time.Second),
	})
	if err != nil {
		if isAlpacaNotFound(err) {
			return symbolNotFound[types.TimeSeries](symbol, "unknown symbol")
		}

		return fetchFailed[types.TimeSeries](symbol, err)
	}

	records := make([]types.MarketData, 0, len(bars))

	for _, bar := range bars {
		barTime := types.TradingDate(bar.Timestamp, c.location)
		if !barTime.Before(endDate) {
			continue
		}

		records = append(records, types.MarketData{
			Symbol: symbol,
			Time:   barTime,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
		})
	}

	return types.Found(types.NewTimeSeries(symbol, records))
}

// Info looks the symbol up in the asset list. Alpaca does not classify assets by industry.
func (c *AlpacaClient) Info(ctx context.Context, symbol string) types.LookupResult[types.TickerInfo] {
	if err := ctx.Err(); err != nil {
		return infoFailed(symbol, err)
	}

	asset, err := c.apiClient.GetAsset(symbol)
	if err != nil {
		if isAlpacaNotFound(err) {
			return symbolNotFound[types.TickerInfo](symbol, "asset not found")
		}

		return infoFailed(symbol, err)
	}

	if asset == nil || asset.Name == "" {
		return symbolNotFound[types.TickerInfo](symbol, "asset has no name")
	}

	return types.Found(types.TickerInfo{
		Symbol:   symbol,
		Name:     asset.Name,
		Industry: "",
	})
}

func isAlpacaNotFound(err error) bool {
	var apiErr *alpaca.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}
