package indicator

import (
	"testing"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/mocks"
	"github.com/stock-tracker/tracker/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// wilderCloses is the classic 20-bar example series for a 14 period RSI.
var wilderCloses = []float64{
	44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
	45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
}

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestNewRSI() {
	rsi := NewRSI()
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())

	rsiImpl := rsi.(*RSI)
	suite.Equal(14, rsiImpl.period)
	suite.Equal(14, rsi.Lookback())
}

func (suite *RSITestSuite) TestConfig() {
	rsi := NewRSI()
	rsiImpl := rsi.(*RSI)

	suite.NoError(rsi.Config(21))
	suite.Equal(21, rsiImpl.period)

	err := rsi.Config()
	suite.Error(err)
	suite.Contains(err.Error(), "expects at least 1 parameter")

	err = rsi.Config("invalid")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid type for period")

	err = rsi.Config(-5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *RSITestSuite) TestWilderReference() {
	rsi := NewRSI()
	series := rsi.Series(wilderCloses)

	expected := []float64{
		70.46413502109705, 66.24961855355505, 66.48094183471265,
		69.34685316290866, 66.29471265892624, 57.91502067008556,
	}

	for i := 0; i < 14; i++ {
		suite.True(series[i].IsNone(), "index %d", i)
	}

	for i, want := range expected {
		suite.InDelta(want, series[14+i].Unwrap(), 1e-9, "index %d", 14+i)
	}
}

func (suite *RSITestSuite) TestDefinedCount() {
	rsi := NewRSI()

	for _, length := range []int{0, 1, 14, 15, 16, 100} {
		closes := mocks.NewDataGenerator(int64(length)).Closes(length)
		suite.Equal(max(0, length-14), definedCount(rsi.Series(closes)), "length %d", length)
	}
}

func (suite *RSITestSuite) TestBounds() {
	rsi := NewRSI()
	closes := mocks.NewDataGenerator(7).Closes(250)

	for _, v := range rsi.Series(closes) {
		if v.IsSome() {
			suite.GreaterOrEqual(v.Unwrap(), 0.0)
			suite.LessOrEqual(v.Unwrap(), 100.0)
		}
	}
}

func (suite *RSITestSuite) TestMonotonicAndFlatSeries() {
	rsi := NewRSI()

	up := make([]float64, 20)
	flat := make([]float64, 20)

	for i := range up {
		up[i] = float64(100 + i)
		flat[i] = 100
	}

	value, err := rsi.RawValue(up)
	suite.NoError(err)
	suite.Equal(100.0, value)

	value, err = rsi.RawValue(flat)
	suite.NoError(err)
	suite.Equal(50.0, value)
}

func (suite *RSITestSuite) TestRawValueErrors() {
	rsi := NewRSI()

	_, err := rsi.RawValue()
	suite.Error(err)
	suite.Contains(err.Error(), "requires 1 parameter")

	_, err = rsi.RawValue(wilderCloses[:14])
	suite.True(errors.IsInsufficientDataError(err))

	value, err := rsi.RawValue(wilderCloses[:15])
	suite.NoError(err)
	suite.InDelta(70.46413502109705, value, 1e-9)
}
