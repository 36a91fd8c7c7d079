package provider

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// polygonAggsLimit is the largest page the aggregates endpoint accepts.
const polygonAggsLimit = 50000

// PolygonAggsIterator abstracts the aggregates iterator returned by the polygon client.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
	GetTickerDetails(ctx context.Context, params *models.GetTickerDetailsParams, options ...models.RequestOption) (*models.GetTickerDetailsResponse, error)
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (p *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return p.client.ListAggs(ctx, params, options...)
}

func (p *polygonRESTClient) GetTickerDetails(ctx context.Context, params *models.GetTickerDetailsParams, options ...models.RequestOption) (*models.GetTickerDetailsResponse, error) {
	return p.client.GetTickerDetails(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	location  *time.Location
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient on top of an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		location:  newYorkLocation(),
	}
}

func (c *PolygonClient) Name() ProviderType {
	return ProviderPolygon
}

func (c *PolygonClient) Fetch(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timespan Timespan) types.LookupResult[types.TimeSeries] {
	if !startDate.Before(endDate) {
		return types.Found(types.NewTimeSeries(symbol, nil))
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   timespan.PolygonTimespan(),
		From:       models.Millis(startDate),
		To:         models.Millis(endDate.Add(-time.Millisecond)),
	}.WithAdjusted(true).WithLimit(polygonAggsLimit)

	iter := c.apiClient.ListAggs(ctx, params)

	var records []types.MarketData

	for iter.Next() {
		agg := iter.Item()

		barTime := types.TradingDate(time.Time(agg.Timestamp), c.location)
		if !barTime.Before(endDate) {
			continue
		}

		records = append(records, types.MarketData{
			Symbol: symbol,
			Time:   barTime,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		if isPolygonNotFound(err) {
			return symbolNotFound[types.TimeSeries](symbol, "unknown ticker")
		}

		return fetchFailed[types.TimeSeries](symbol, err)
	}

	return types.Found(types.NewTimeSeries(symbol, records))
}

func (c *PolygonClient) Info(ctx context.Context, symbol string) types.LookupResult[types.TickerInfo] {
	//nolint:exhaustruct // third-party struct with many optional fields
	res, err := c.apiClient.GetTickerDetails(ctx, &models.GetTickerDetailsParams{Ticker: symbol})
	if err != nil {
		if isPolygonNotFound(err) {
			return symbolNotFound[types.TickerInfo](symbol, "unknown ticker")
		}

		return infoFailed(symbol, err)
	}

	if res == nil || res.Results.Name == "" {
		return symbolNotFound[types.TickerInfo](symbol, "ticker has no name")
	}

	return types.Found(types.TickerInfo{
		Symbol:   symbol,
		Name:     res.Results.Name,
		Industry: res.Results.SICDescription,
	})
}

func isPolygonNotFound(err error) bool {
	var apiErr *models.ErrorResponse
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}
