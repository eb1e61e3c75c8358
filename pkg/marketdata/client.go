package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-frvp/internal/logger"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
	ProviderDuckDB  = provider.ProviderDuckDB
	ProviderJSON    = provider.ProviderJSON
)

// ProviderConfig holds the configuration for the bar source.
type ProviderConfig struct {
	Provider       ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=polygon,enum=binance,enum=duckdb,enum=json" validate:"required,oneof=polygon binance duckdb json"`
	PolygonApiKey  string       `yaml:"polygon_api_key" json:"polygonApiKey,omitempty" jsonschema:"title=API Key,description=Polygon.io API key for authentication" validate:"required_if=Provider polygon"`
	BinanceBaseURL string       `yaml:"binance_base_url" json:"binanceBaseUrl,omitempty" jsonschema:"title=Binance Base URL,description=Override of the Binance REST endpoint" validate:"omitempty,url"`
	DataPath       string       `yaml:"data_path" json:"dataPath,omitempty" jsonschema:"title=Data Path,description=Bar file (parquet or csv for duckdb and JSON for json)" validate:"required_if=Provider duckdb,required_if=Provider json"`
}

// Validate validates the ProviderConfig fields.
func (c ProviderConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProvider, "invalid provider config", err)
	}

	return nil
}

// ParseProviderConfig parses JSON into a ProviderConfig.
func ParseProviderConfig(jsonConfig string) (*ProviderConfig, error) {
	var config ProviderConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Client is the bar source over one market data provider.
type Client struct {
	provider provider.Provider
	logger   *logger.Logger
	now      func() time.Time
}

var _ BarSource = (*Client)(nil)

// NewBarSource creates a bar source for the configured provider.
func NewBarSource(config ProviderConfig, log *logger.Logger, onProgress provider.OnFetchProgress) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p, err := provider.NewMarketDataProvider(config.Provider, provider.Options{
		PolygonApiKey:  config.PolygonApiKey,
		BinanceBaseURL: config.BinanceBaseURL,
		DataPath:       config.DataPath,
		OnProgress:     onProgress,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "failed to create provider", err)
	}

	return NewClient(p, log), nil
}

// NewClient wraps an existing provider.
func NewClient(p provider.Provider, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		provider: p,
		logger:   log.Named("marketdata"),
		now:      time.Now,
	}
}

// Fetch validates req, resolves its time window and returns the provider's
// bars as a validated series. Provider and validation failures are wrapped
// as fetch failures with the cause kept.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (*types.BarSeries, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, end, err := req.Bounds(c.now())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetching bars",
		zap.String("provider", string(c.provider.Type())),
		zap.String("symbol", req.Symbol),
		zap.String("interval", string(req.Interval)),
		zap.Time("start", start),
		zap.Time("end", end))

	bars, err := c.provider.Fetch(ctx, provider.Query{
		Symbol:   req.Symbol,
		Interval: req.Interval,
		Start:    start,
		End:      end,
	})
	if err != nil {
		c.logger.Warn("Fetch failed", zap.String("symbol", req.Symbol), zap.Error(err))

		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "fetch %s from %s", req.Symbol, c.provider.Type())
	}

	series, err := types.NewBarSeries(req.Symbol, req.Interval, bars)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "invalid bars for %s", req.Symbol)
	}

	c.logger.Debug("Fetched bars", zap.String("symbol", req.Symbol), zap.Int("count", series.Len()))

	return series, nil
}
