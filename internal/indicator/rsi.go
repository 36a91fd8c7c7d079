package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// RSI represents the Relative Strength Index indicator with Wilder smoothing.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, ok := parsePeriod(params[0])
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	r.period = period

	return nil
}

// Lookback is period: the first value needs period price changes, i.e. period+1 closes.
func (r *RSI) Lookback() int {
	return r.period
}

// Series computes the RSI for every close.
func (r *RSI) Series(closes []float64) []optional.Option[float64] {
	out := noneSeries(len(closes))
	if len(closes) <= r.period {
		return out
	}

	// First average over the first period changes
	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= r.period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}

	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)
	out[r.period] = optional.Some(relativeStrengthIndex(avgGain, avgLoss))

	// Subsequent averages using Wilder's smoothing method
	for i := r.period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(r.period-1) + gain) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + loss) / float64(r.period)
		out[i] = optional.Some(relativeStrengthIndex(avgGain, avgLoss))
	}

	return out
}

// RawValue returns the RSI at the last close.
func (r *RSI) RawValue(params ...any) (float64, error) {
	closes, ok := closesParam(params)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "RawValue requires 1 parameter: closes ([]float64)")
	}

	value, ok := lastValue(r.Series(closes))
	if !ok {
		return 0, errors.NewInsufficientDataErrorf(r.period+1, len(closes), "",
			"insufficient data for RSI(%d): need %d closes, got %d", r.period, r.period+1, len(closes))
	}

	return value, nil
}

func splitChange(change float64) (gain float64, loss float64) {
	if change > 0 {
		return change, 0
	}

	return 0, -change
}

func relativeStrengthIndex(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // Flat series
		}

		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
