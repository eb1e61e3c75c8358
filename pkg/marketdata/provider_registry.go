package marketdata

import (
	"fmt"
	"sort"

	"github.com/rxtech-lab/argo-frvp/pkg/schema"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with historical OHLCV aggregates",
		RequiresAuth: true,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange klines for spot trading pairs",
		RequiresAuth: false,
	},
	ProviderDuckDB: {
		Name:         string(ProviderDuckDB),
		DisplayName:  "DuckDB file",
		Description:  "Local parquet or csv bar files queried through DuckDB",
		RequiresAuth: false,
	},
	ProviderJSON: {
		Name:         string(ProviderJSON),
		DisplayName:  "JSON file",
		Description:  "Local JSON bar files in the Financial Modeling Prep layout",
		RequiresAuth: false,
	},
}

// GetSupportedProviders returns a sorted list of all supported provider names.
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
		return ProviderInfo{}, fmt.Errorf("unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema of ProviderConfig.
func GetProviderConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return schema.ToJSONSchema(ProviderConfig{})
}
