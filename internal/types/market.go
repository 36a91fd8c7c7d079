package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// DateLayout is the layout used for trading dates in requests, CSV files and charts.
const DateLayout = "2006-01-02"

// MarketData is a single daily OHLCV bar for one symbol.
type MarketData struct {
	Symbol string
	// Time is the trading date at midnight UTC.
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TimeSeries is the ordered set of bars fetched for a symbol, with the derived
// indicator columns appended after the fetch.
type TimeSeries struct {
	Symbol  string
	Records []MarketData
	// SMA and RSI have the same length as Records once computed.
	// A None entry means the indicator is not defined for that bar yet.
	SMA []optional.Option[float64]
	RSI []optional.Option[float64]
}

// NewTimeSeries creates a series for symbol with no derived columns.
func NewTimeSeries(symbol string, records []MarketData) TimeSeries {
	if records == nil {
		records = []MarketData{}
	}

	return TimeSeries{
		Symbol:  symbol,
		Records: records,
		SMA:     nil,
		RSI:     nil,
	}
}

// Len returns the number of bars in the series.
func (ts TimeSeries) Len() int {
	return len(ts.Records)
}

// IsEmpty reports whether the series has no bars.
func (ts TimeSeries) IsEmpty() bool {
	return len(ts.Records) == 0
}

// Closes returns the close column.
func (ts TimeSeries) Closes() []float64 {
	closes := make([]float64, len(ts.Records))
	for i, r := range ts.Records {
		closes[i] = r.Close
	}

	return closes
}

// Dates returns the trading dates formatted with DateLayout.
func (ts TimeSeries) Dates() []string {
	dates := make([]string, len(ts.Records))
	for i, r := range ts.Records {
		dates[i] = r.Time.Format(DateLayout)
	}

	return dates
}

// TradingDate truncates t to its calendar date in loc and returns that date at midnight UTC.
// A nil loc means UTC.
func TradingDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	local := t.In(loc)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
