package indicator

import (
	"fmt"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

const (
	DefaultSMAPeriod = 20
	DefaultRSIPeriod = 14
)

// Computer appends the SMA and RSI columns to a TimeSeries.
// It holds no per-symbol state, so one Computer serves a whole run.
type Computer struct {
	registry IndicatorRegistry
}

// NewComputer registers an MA and an RSI with the given periods.
func NewComputer(smaPeriod, rsiPeriod int) (*Computer, error) {
	registry := NewIndicatorRegistry()

	ma := NewMA()
	if err := ma.Config(smaPeriod); err != nil {
		return nil, fmt.Errorf("failed to configure MA: %w", err)
	}

	rsi := NewRSI()
	if err := rsi.Config(rsiPeriod); err != nil {
		return nil, fmt.Errorf("failed to configure RSI: %w", err)
	}

	for _, ind := range []Indicator{ma, rsi} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return &Computer{registry: registry}, nil
}

// Reading is an indicator value at the last close of a series.
type Reading struct {
	Indicator types.IndicatorType
	Value     float64
}

// Latest returns the value of every registered indicator at the last close, in name order.
// Indicators still inside their lookback are left out.
func (c *Computer) Latest(ts types.TimeSeries) ([]Reading, error) {
	closes := ts.Closes()
	names := c.registry.ListIndicators()
	readings := make([]Reading, 0, len(names))

	for _, name := range names {
		ind, err := c.registry.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		value, err := ind.RawValue(closes)
		if errors.IsInsufficientDataError(err) {
			continue
		}

		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to read latest %s for %s", name, ts.Symbol)
		}

		readings = append(readings, Reading{Indicator: name, Value: value})
	}

	return readings, nil
}

// Apply sets ts.SMA and ts.RSI from the close column, replacing any previous values.
func (c *Computer) Apply(ts *types.TimeSeries) error {
	ma, err := c.registry.GetIndicator(types.IndicatorTypeMA)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "moving average unavailable", err)
	}

	rsi, err := c.registry.GetIndicator(types.IndicatorTypeRSI)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "rsi unavailable", err)
	}

	closes := ts.Closes()
	ts.SMA = ma.Series(closes)
	ts.RSI = rsi.Series(closes)

	return nil
}
