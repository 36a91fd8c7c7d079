package indicator

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type IndicatorHelpersTestSuite struct {
	suite.Suite
}

func TestIndicatorHelpersSuite(t *testing.T) {
	suite.Run(t, new(IndicatorHelpersTestSuite))
}

func (suite *IndicatorHelpersTestSuite) TestParsePeriod() {
	p, ok := parsePeriod(20)
	suite.True(ok)
	suite.Equal(20, p)

	p, ok = parsePeriod(int64(14))
	suite.True(ok)
	suite.Equal(14, p)

	p, ok = parsePeriod(9.0)
	suite.True(ok)
	suite.Equal(9, p)

	_, ok = parsePeriod("20")
	suite.False(ok)
}

func (suite *IndicatorHelpersTestSuite) TestLastValue() {
	_, ok := lastValue(nil)
	suite.False(ok)

	_, ok = lastValue([]optional.Option[float64]{optional.Some(1.0), optional.None[float64]()})
	suite.False(ok)

	v, ok := lastValue([]optional.Option[float64]{optional.None[float64](), optional.Some(2.5)})
	suite.True(ok)
	suite.Equal(2.5, v)
}

// definedCount counts the bars with a value.
func definedCount(series []optional.Option[float64]) int {
	n := 0

	for _, v := range series {
		if v.IsSome() {
			n++
		}
	}

	return n
}
