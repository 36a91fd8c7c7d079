package provider

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

const (
	// DefaultYahooBaseURL is the public Yahoo Finance query host.
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	// defaultYahooCookieURL hands out the session cookie the crumb is bound to.
	defaultYahooCookieURL = "https://fc.yahoo.com"
	yahooChartPath        = "/v8/finance/chart/{symbol}"
	yahooCrumbPath        = "/v1/test/getcrumb"
	yahooSummaryPath      = "/v10/finance/quoteSummary/{symbol}"
	yahooSummaryModules   = "assetProfile,price"
	yahooTimeout          = 30 * time.Second
	yahooNotFoundCode     = "Not Found"
)

// yahooChartResponse is the envelope of the chart endpoint, for both success and error bodies.
type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ShortName            string `json:"shortName"`
		LongName             string `json:"longName"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

// yahooSummaryResponse is the envelope of the quoteSummary endpoint.
type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []yahooSummaryResult `json:"result"`
		Error  *yahooChartError     `json:"error"`
	} `json:"quoteSummary"`
}

type yahooSummaryResult struct {
	AssetProfile struct {
		Industry string `json:"industry"`
		Sector   string `json:"sector"`
	} `json:"assetProfile"`
	Price struct {
		ShortName string `json:"shortName"`
		LongName  string `json:"longName"`
	} `json:"price"`
}

func (r *yahooSummaryResult) name() string {
	if r.Price.ShortName != "" {
		return r.Price.ShortName
	}

	return r.Price.LongName
}

// yahooQuote holds the OHLCV columns. Holidays and halted sessions come back as null.
type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// YahooClient reads bars from the Yahoo Finance chart API and ticker profiles from quoteSummary.
// It needs no credentials and is the default provider.
type YahooClient struct {
	client    *resty.Client
	cookieURL string

	mu    sync.Mutex
	crumb string
}

// NewYahooClient creates a client for baseURL, or DefaultYahooBaseURL when empty.
// A custom baseURL also serves the session cookie.
func NewYahooClient(baseURL string) (Provider, error) {
	cookieURL := defaultYahooCookieURL
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	} else {
		cookieURL = strings.TrimSuffix(baseURL, "/") + "/"
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create yahoo cookie jar", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(yahooTimeout).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json")

	return &YahooClient{client: client, cookieURL: cookieURL}, nil
}

func (c *YahooClient) Name() ProviderType {
	return ProviderYahoo
}

func (c *YahooClient) Fetch(ctx context.Context, symbol string, startDate time.Time, endDate time.Time, timespan Timespan) types.LookupResult[types.TimeSeries] {
	if !startDate.Before(endDate) {
		return types.Found(types.NewTimeSeries(symbol, nil))
	}

	result, status, err := c.chart(ctx, symbol, map[string]string{
		"period1":        strconv.FormatInt(startDate.Unix(), 10),
		"period2":        strconv.FormatInt(endDate.Unix(), 10),
		"interval":       timespan.YahooInterval(),
		"includePrePost": "false",
		"events":         "div,splits",
	})

	switch status {
	case types.LookupNotFound:
		return types.NotFound[types.TimeSeries](err)
	case types.LookupError:
		return types.Failed[types.TimeSeries](err)
	case types.LookupFound:
	}

	return types.Found(types.NewTimeSeries(symbol, result.records(symbol, endDate)))
}

// Info reads the name and industry from quoteSummary. When the crumb or the summary
// is unavailable it falls back to the chart metadata, which carries no industry.
func (c *YahooClient) Info(ctx context.Context, symbol string) types.LookupResult[types.TickerInfo] {
	profile, status, err := c.summary(ctx, symbol)

	industry := ""

	switch status {
	case types.LookupNotFound:
		return types.NotFound[types.TickerInfo](err)
	case types.LookupFound:
		if name := profile.name(); name != "" {
			return types.Found(types.TickerInfo{
				Symbol:   symbol,
				Name:     name,
				Industry: profile.AssetProfile.Industry,
			})
		}

		industry = profile.AssetProfile.Industry
	case types.LookupError:
	}

	return c.chartInfo(ctx, symbol, industry)
}

func (c *YahooClient) chartInfo(ctx context.Context, symbol, industry string) types.LookupResult[types.TickerInfo] {
	result, status, err := c.chart(ctx, symbol, map[string]string{
		"range":    "1d",
		"interval": "1d",
	})

	switch status {
	case types.LookupNotFound:
		return types.NotFound[types.TickerInfo](err)
	case types.LookupError:
		return types.Failed[types.TickerInfo](errors.Wrapf(errors.ErrCodeTickerInfoFailed, err, "failed to look up %s", symbol))
	case types.LookupFound:
	}

	name := result.Meta.ShortName
	if name == "" {
		name = result.Meta.LongName
	}

	if name == "" {
		return symbolNotFound[types.TickerInfo](symbol, "ticker has no name")
	}

	return types.Found(types.TickerInfo{
		Symbol:   symbol,
		Name:     name,
		Industry: industry,
	})
}

// summary calls quoteSummary for the asset profile and price modules.
func (c *YahooClient) summary(ctx context.Context, symbol string) (*yahooSummaryResult, types.LookupStatus, error) {
	crumb, err := c.session(ctx)
	if err != nil {
		return nil, types.LookupError, err
	}

	var (
		body    yahooSummaryResponse
		errBody yahooSummaryResponse
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"modules": yahooSummaryModules,
			"crumb":   crumb,
		}).
		SetResult(&body).
		SetError(&errBody).
		Get(yahooSummaryPath)
	if err != nil {
		return nil, types.LookupError, errors.Wrapf(errors.ErrCodeTickerInfoFailed, err, "yahoo summary request for %s failed", symbol)
	}

	if resp.IsError() {
		apiErr := errBody.QuoteSummary.Error
		if resp.StatusCode() == http.StatusNotFound || (apiErr != nil && apiErr.Code == yahooNotFoundCode) {
			reason := "quote not found"
			if apiErr != nil && apiErr.Description != "" {
				reason = apiErr.Description
			}

			return nil, types.LookupNotFound, errors.Newf(errors.ErrCodeSymbolNotFound, "%s: %s", symbol, reason)
		}

		if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
			c.resetSession()
		}

		return nil, types.LookupError, errors.Newf(errors.ErrCodeTickerInfoFailed, "yahoo summary returned status %d for %s", resp.StatusCode(), symbol)
	}

	if apiErr := body.QuoteSummary.Error; apiErr != nil {
		if apiErr.Code == yahooNotFoundCode {
			return nil, types.LookupNotFound, errors.Newf(errors.ErrCodeSymbolNotFound, "%s: %s", symbol, apiErr.Description)
		}

		return nil, types.LookupError, errors.Newf(errors.ErrCodeTickerInfoFailed, "yahoo summary error for %s: %s", symbol, apiErr.Description)
	}

	if len(body.QuoteSummary.Result) == 0 {
		return nil, types.LookupError, errors.Newf(errors.ErrCodeTickerInfoFailed, "%s: empty summary result", symbol)
	}

	return &body.QuoteSummary.Result[0], types.LookupFound, nil
}

// session returns the crumb quoteSummary requires, opening a cookie session on first use.
func (c *YahooClient) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The cookie host answers with an error status but still sets the cookie.
	if _, err := c.client.R().SetContext(ctx).Get(c.cookieURL); err != nil {
		return "", errors.Wrap(errors.ErrCodeTickerInfoFailed, "failed to open yahoo session", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get(yahooCrumbPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTickerInfoFailed, "failed to fetch yahoo crumb", err)
	}

	crumb := strings.TrimSpace(resp.String())
	if resp.IsError() || crumb == "" {
		return "", errors.Newf(errors.ErrCodeTickerInfoFailed, "yahoo crumb unavailable (status %d)", resp.StatusCode())
	}

	c.crumb = crumb

	return crumb, nil
}

func (c *YahooClient) resetSession() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// chart calls the chart endpoint and classifies the outcome.
func (c *YahooClient) chart(ctx context.Context, symbol string, query map[string]string) (*yahooChartResult, types.LookupStatus, error) {
	var (
		body    yahooChartResponse
		errBody yahooChartResponse
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(query).
		SetResult(&body).
		SetError(&errBody).
		Get(yahooChartPath)
	if err != nil {
		return nil, types.LookupError, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "yahoo request for %s failed", symbol)
	}

	if resp.IsError() {
		apiErr := errBody.Chart.Error
		if resp.StatusCode() == http.StatusNotFound || (apiErr != nil && apiErr.Code == yahooNotFoundCode) {
			reason := "no data found, symbol may be delisted"
			if apiErr != nil && apiErr.Description != "" {
				reason = apiErr.Description
			}

			return nil, types.LookupNotFound, errors.Newf(errors.ErrCodeSymbolNotFound, "%s: %s", symbol, reason)
		}

		return nil, types.LookupError, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo returned status %d for %s", resp.StatusCode(), symbol)
	}

	if apiErr := body.Chart.Error; apiErr != nil {
		if apiErr.Code == yahooNotFoundCode {
			return nil, types.LookupNotFound, errors.Newf(errors.ErrCodeSymbolNotFound, "%s: %s", symbol, apiErr.Description)
		}

		return nil, types.LookupError, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo api error for %s: %s", symbol, apiErr.Description)
	}

	if len(body.Chart.Result) == 0 {
		return nil, types.LookupNotFound, errors.Newf(errors.ErrCodeSymbolNotFound, "%s: empty chart result", symbol)
	}

	return &body.Chart.Result[0], types.LookupFound, nil
}

// records converts the chart columns to bars before endDate, skipping null closes.
func (r *yahooChartResult) records(symbol string, endDate time.Time) []types.MarketData {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}

	loc := time.UTC
	if r.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(r.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	quote := r.Indicators.Quote[0]
	records := make([]types.MarketData, 0, len(r.Timestamp))

	for i, ts := range r.Timestamp {
		closePrice := valueAt(quote.Close, i)
		if closePrice == nil {
			continue
		}

		barTime := types.TradingDate(time.Unix(ts, 0), loc)
		if !barTime.Before(endDate) {
			continue
		}

		records = append(records, types.MarketData{
			Symbol: symbol,
			Time:   barTime,
			Open:   derefOr(valueAt(quote.Open, i), *closePrice),
			High:   derefOr(valueAt(quote.High, i), *closePrice),
			Low:    derefOr(valueAt(quote.Low, i), *closePrice),
			Close:  *closePrice,
			Volume: derefOr(valueAt(quote.Volume, i), 0),
		})
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Time.Before(records[j].Time) })

	return records
}

func valueAt(column []*float64, i int) *float64 {
	if i >= len(column) {
		return nil
	}

	return column[i]
}

func derefOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}

	return *v
}
