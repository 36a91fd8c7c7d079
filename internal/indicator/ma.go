package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// MA is the simple moving average of the trailing period closes.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects 1 parameter: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := parsePeriod(params[0])
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "invalid type for period parameter, expected int or float")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// Lookback is period-1: the first average needs period closes.
func (m *MA) Lookback() int {
	return m.period - 1
}

// Series keeps a running sum over the window.
func (m *MA) Series(closes []float64) []optional.Option[float64] {
	out := noneSeries(len(closes))

	sum := 0.0

	for i, c := range closes {
		sum += c
		if i >= m.period {
			sum -= closes[i-m.period]
		}

		if i >= m.period-1 {
			out[i] = optional.Some(sum / float64(m.period))
		}
	}

	return out
}

// RawValue returns the average of the last period closes.
func (m *MA) RawValue(params ...any) (float64, error) {
	closes, ok := closesParam(params)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "RawValue requires 1 parameter: closes ([]float64)")
	}

	if len(closes) < m.period {
		return 0, errors.NewInsufficientDataErrorf(m.period, len(closes), "",
			"insufficient data for MA(%d): need %d closes, got %d", m.period, m.period, len(closes))
	}

	return calculateSimpleMovingAverage(closes[len(closes)-m.period:]), nil
}

func calculateSimpleMovingAverage(closes []float64) float64 {
	sum := 0.0
	for _, c := range closes {
		sum += c
	}

	return sum / float64(len(closes))
}
