package provider

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/stock-tracker/tracker/pkg/errors"
)

type ProviderFactoryTestSuite struct {
	suite.Suite
}

func TestProviderFactorySuite(t *testing.T) {
	suite.Run(t, new(ProviderFactoryTestSuite))
}

func (suite *ProviderFactoryTestSuite) TestNewMarketDataProvider() {
	creds := Credentials{PolygonApiKey: "pk", AlpacaApiKey: "ak", AlpacaApiSecret: "as"}

	for _, providerType := range []ProviderType{ProviderYahoo, ProviderPolygon, ProviderAlpaca, ProviderBinance} {
		p, err := NewMarketDataProvider(providerType, creds)
		suite.Require().NoError(err, providerType)
		suite.Equal(providerType, p.Name())
	}
}

func (suite *ProviderFactoryTestSuite) TestMissingCredentials() {
	_, err := NewMarketDataProvider(ProviderPolygon, Credentials{})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	_, err = NewMarketDataProvider(ProviderAlpaca, Credentials{AlpacaApiKey: "ak"})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *ProviderFactoryTestSuite) TestUnknownProvider() {
	_, err := NewMarketDataProvider("bloomberg", Credentials{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
