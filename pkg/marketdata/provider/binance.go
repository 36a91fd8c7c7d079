package provider

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

const (
	// binanceKlinesLimit is the page size requested from the klines endpoint.
	binanceKlinesLimit = 1000
	// binanceInvalidSymbolCode is returned by Binance for unknown trading pairs.
	binanceInvalidSymbolCode = -1121
)

// BinanceKlinesService mirrors the builder returned by binance.Client.NewKlinesService.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
	// ExchangeSymbol returns the exchange info of a single trading pair.
	ExchangeSymbol(ctx context.Context, symbol string) (*binance.Symbol, error)
}

type binanceRESTClient struct {
	client *binance.Client
}

func (b *binanceRESTClient) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesService{service: b.client.NewKlinesService()}
}

func (b *binanceRESTClient) ExchangeSymbol(ctx context.Context, symbol string) (*binance.Symbol, error) {
	info, err := b.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, err
	}

	for i := range info.Symbols {
		if info.Symbols[i].Symbol == symbol {
			return &info.Symbols[i], nil
		}
	}

	return nil, nil
}

type binanceKlinesService struct {
	service *binance.KlinesService
}

func (s *binanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesService) Limit(limit int) BinanceKlinesService {
	s.service.Limit(limit)

	return s
}

func (s *binanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
}

// NewBinanceClient creates a client for the public Binance market data endpoints.
// No credentials are needed for klines or exchange info.
func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceRESTClient{client: binance.NewClient("", "")}), nil
}

func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: apiClient}
}

func (c *BinanceClient) Name() ProviderType {
	return ProviderBinance
}

// Fetch pages through the klines endpoint until the range is exhausted.
func (c *BinanceClient) Fetch(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timespan Timespan) types.LookupResult[types.TimeSeries] {
	if !startDate.Before(endDate) {
		return types.Found(types.NewTimeSeries(symbol, nil))
	}

	endTimeMillis := endDate.UnixMilli() - 1
	currentStartTime := startDate.UnixMilli()

	var records []types.MarketData

	for currentStartTime <= endTimeMillis {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(symbol).
			Interval(timespan.BinanceInterval()).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Limit(binanceKlinesLimit).
			Do(ctx)
		if err != nil {
			if isBinanceInvalidSymbol(err) {
				return symbolNotFound[types.TimeSeries](symbol, "invalid symbol")
			}

			return fetchFailed[types.TimeSeries](symbol, err)
		}

		page, err := convertKlines(symbol, klines)
		if err != nil {
			return types.Failed[types.TimeSeries](err)
		}

		records = append(records, page...)

		if len(klines) < binanceKlinesLimit {
			break
		}

		// next page starts right after the last close to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
	}

	return types.Found(types.NewTimeSeries(symbol, records))
}

// Info reports the pair as "<BASE>/<QUOTE>". Binance has no industry classification.
func (c *BinanceClient) Info(ctx context.Context, symbol string) types.LookupResult[types.TickerInfo] {
	info, err := c.apiClient.ExchangeSymbol(ctx, symbol)
	if err != nil {
		if isBinanceInvalidSymbol(err) {
			return symbolNotFound[types.TickerInfo](symbol, "invalid symbol")
		}

		return infoFailed(symbol, err)
	}

	if info == nil || info.BaseAsset == "" {
		return symbolNotFound[types.TickerInfo](symbol, "symbol is not listed")
	}

	return types.Found(types.TickerInfo{
		Symbol:   symbol,
		Name:     info.BaseAsset + "/" + info.QuoteAsset,
		Industry: "",
	})
}

// convertKlines converts Binance klines to bars keyed by their UTC open date.
func convertKlines(symbol string, klines []*binance.Kline) ([]types.MarketData, error) {
	records := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, symbol)
			}

			values[i] = v
		}

		records = append(records, types.MarketData{
			Symbol: symbol,
			Time:   types.TradingDate(time.UnixMilli(k.OpenTime), time.UTC),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return records, nil
}

func isBinanceInvalidSymbol(err error) bool {
	var apiErr *common.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == binanceInvalidSymbolCode
	}

	return false
}
