package provider

import (
	"context"
	"time"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderAlpaca  ProviderType = "alpaca"
	ProviderBinance ProviderType = "binance"
)

type Provider interface {
	// Name returns the provider type.
	Name() ProviderType
	// Fetch downloads the bars for symbol from startDate (inclusive) to endDate (exclusive).
	// An unknown symbol is reported as NotFound; an empty date range is Found with no bars.
	// example:
	// Fetch(ctx, "AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), TimespanOneDay)
	Fetch(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timespan Timespan) types.LookupResult[types.TimeSeries]
	// Info looks up the display name and industry of symbol.
	// A symbol without a name is reported as NotFound.
	Info(ctx context.Context, symbol string) types.LookupResult[types.TickerInfo]
}

// Credentials holds the keys of the providers that require authentication.
type Credentials struct {
	PolygonApiKey   string
	AlpacaApiKey    string
	AlpacaApiSecret string
	// YahooBaseURL overrides the Yahoo Finance host, mostly for tests.
	YahooBaseURL string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, credentials Credentials) (Provider, error) {
	switch providerType {
	case ProviderYahoo:
		return NewYahooClient(credentials.YahooBaseURL)
	case ProviderPolygon:
		return NewPolygonClient(credentials.PolygonApiKey)
	case ProviderAlpaca:
		return NewAlpacaClient(credentials.AlpacaApiKey, credentials.AlpacaApiSecret)
	case ProviderBinance:
		return NewBinanceClient()
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// newYorkLocation is the exchange time zone for US equity providers.
// Falls back to UTC when the zone database is unavailable.
func newYorkLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}

	return loc
}

// fetchFailed wraps err as a market data error for symbol.
func fetchFailed[T any](symbol string, err error) types.LookupResult[T] {
	return types.Failed[T](errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", symbol))
}

// infoFailed wraps err as a ticker info error for symbol.
func infoFailed(symbol string, err error) types.LookupResult[types.TickerInfo] {
	return types.Failed[types.TickerInfo](errors.Wrapf(errors.ErrCodeTickerInfoFailed, err, "failed to look up %s", symbol))
}

// symbolNotFound is the NotFound result for symbol with the provider's reason.
func symbolNotFound[T any](symbol string, reason string) types.LookupResult[T] {
	return types.NotFound[T](errors.Newf(errors.ErrCodeSymbolNotFound, "%s: %s", symbol, reason))
}
