package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderDuckDB  ProviderType = "duckdb"
	ProviderJSON    ProviderType = "json"
)

type OnFetchProgress = func(current float64, total float64, message string)

// Query is a fully resolved bar request. Start and End are inclusive.
type Query struct {
	Symbol   string
	Interval types.Interval
	Start    time.Time
	End      time.Time
}

type Provider interface {
	// Fetch returns the bars of one symbol between Start and End in
	// ascending time order. The context can be used to cancel the request.
	// example:
	// Fetch(ctx, Query{Symbol: "AAPL", Interval: types.Interval1d, Start: start, End: end})
	Fetch(ctx context.Context, query Query) ([]types.Bar, error)
	// Type returns the provider type
	Type() ProviderType
}

// Options carries the settings a provider may need. Unused fields are ignored.
type Options struct {
	PolygonApiKey  string
	BinanceBaseURL string
	DataPath       string
	OnProgress     OnFetchProgress
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, opts Options) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient(opts.BinanceBaseURL)
	case ProviderPolygon:
		return NewPolygonClient(opts.PolygonApiKey, opts.OnProgress)
	case ProviderDuckDB:
		return NewDuckDBSource(opts.DataPath)
	case ProviderJSON:
		return NewJSONFileSource(opts.DataPath)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}

func noProgress(float64, float64, string) {}
