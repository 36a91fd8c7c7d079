package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/stock-tracker/tracker/internal/types"
)

// Indicator is a technical indicator computed over a close-price column.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters, the lookback period first.
	Config(params ...any) error
	// Lookback is the number of leading bars for which the indicator has no value.
	Lookback() int
	// Series computes the indicator for every close. The result has the same length
	// as closes, with None for bars inside the lookback.
	Series(closes []float64) []optional.Option[float64]
	// RawValue returns the indicator value at the last close.
	// Expected parameters: closes ([]float64).
	RawValue(params ...any) (float64, error)
}

// parsePeriod accepts an int or a whole float64 period, as decoded from flags or YAML.
func parsePeriod(param any) (int, bool) {
	switch p := param.(type) {
	case int:
		return p, true
	case int64:
		return int(p), true
	case float64:
		return int(p), true
	default:
		return 0, false
	}
}

func closesParam(params []any) ([]float64, bool) {
	if len(params) < 1 {
		return nil, false
	}

	closes, ok := params[0].([]float64)

	return closes, ok
}

func noneSeries(n int) []optional.Option[float64] {
	out := make([]optional.Option[float64], n)
	for i := range out {
		out[i] = optional.None[float64]()
	}

	return out
}

// lastValue returns the last defined value of a computed series.
func lastValue(series []optional.Option[float64]) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}

	last := series[len(series)-1]
	if last.IsNone() {
		return 0, false
	}

	return last.Unwrap(), true
}
