package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestIndicatorTypeConstants() {
	suite.Equal(IndicatorType("rsi"), IndicatorTypeRSI)
	suite.Equal(IndicatorType("ma"), IndicatorTypeMA)
}

func (suite *IndicatorTestSuite) TestIndustryOrDefault() {
	suite.Equal("Consumer Electronics", TickerInfo{Industry: "Consumer Electronics"}.IndustryOrDefault())
	suite.Equal(IndustryNotAvailable, TickerInfo{}.IndustryOrDefault())
}
