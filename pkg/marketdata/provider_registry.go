package marketdata

import (
	"sort"

	"github.com/stock-tracker/tracker/pkg/errors"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	Description  string   `json:"description"`
	RequiresAuth bool     `json:"requiresAuth"`
	EnvVars      []string `json:"envVars,omitempty"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderYahoo: {
		Name:         string(ProviderYahoo),
		DisplayName:  "Yahoo Finance",
		Description:  "Daily, weekly and monthly bars for listed equities, ETFs and indices from the public chart API",
		RequiresAuth: false,
	},
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market aggregates with SIC industry classification",
		RequiresAuth: true,
		EnvVars:      []string{"POLYGON_API_KEY"},
	},
	ProviderAlpaca: {
		Name:         string(ProviderAlpaca),
		DisplayName:  "Alpaca",
		Description:  "Adjusted US equity bars and asset names from the Alpaca market data API",
		RequiresAuth: true,
		EnvVars:      []string{"ALPACA_API_KEY", "ALPACA_API_SECRET"},
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with klines for spot trading pairs",
		RequiresAuth: false,
	},
}

// GetSupportedProviders returns all supported provider names in alphabetical order.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetAllProviderInfo returns the metadata of every provider, ordered by name.
func GetAllProviderInfo() []ProviderInfo {
	names := GetSupportedProviders()
	infos := make([]ProviderInfo, 0, len(names))

	for _, name := range names {
		infos = append(infos, providerRegistry[ProviderType(name)])
	}

	return infos
}
