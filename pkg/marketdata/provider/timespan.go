package provider

import (
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// Timespan is the bar interval requested from a provider.
type Timespan string

const (
	TimespanOneDay   Timespan = "1d"
	TimespanOneWeek  Timespan = "1w"
	TimespanOneMonth Timespan = "1M"
)

// SupportedTimespans lists the intervals every provider can serve.
func SupportedTimespans() []Timespan {
	return []Timespan{TimespanOneDay, TimespanOneWeek, TimespanOneMonth}
}

// Validate returns an error for intervals not in SupportedTimespans.
func (t Timespan) Validate() error {
	switch t {
	case TimespanOneDay, TimespanOneWeek, TimespanOneMonth:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval %q (expected 1d, 1w or 1M)", string(t))
	}
}

func (t Timespan) PolygonTimespan() models.Timespan {
	switch t {
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// BinanceInterval uses the same notation as the timespan itself.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func (t Timespan) BinanceInterval() string {
	switch t {
	case TimespanOneWeek, TimespanOneMonth:
		return string(t)
	default:
		return string(TimespanOneDay)
	}
}

func (t Timespan) AlpacaTimeFrame() marketdata.TimeFrame {
	switch t {
	case TimespanOneWeek:
		return marketdata.NewTimeFrame(1, marketdata.Week)
	case TimespanOneMonth:
		return marketdata.NewTimeFrame(1, marketdata.Month)
	default:
		return marketdata.OneDay
	}
}

func (t Timespan) YahooInterval() string {
	switch t {
	case TimespanOneWeek:
		return "1wk"
	case TimespanOneMonth:
		return "1mo"
	default:
		return "1d"
	}
}
