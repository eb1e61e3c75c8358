package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// binancePageSize is the default number of klines Binance returns per request.
const binancePageSize = 500

// BinanceKlinesService abstracts the klines request builder for testing.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the Binance REST client for testing.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
}

// NewBinanceClient creates a client for the public Binance market data API.
// An empty baseURL keeps the library default.
func NewBinanceClient(baseURL string) (Provider, error) {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return NewBinanceClientWithAPI(&binanceClientWrapper{client: client}), nil
}

// NewBinanceClientWithAPI creates a client over an existing API implementation.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: apiClient}
}

func (c *BinanceClient) Type() ProviderType {
	return ProviderBinance
}

// Fetch downloads the historical klines for the given symbol and date range from Binance.
// It pages forward from the close time of the last kline until a short page is returned.
func (c *BinanceClient) Fetch(ctx context.Context, query Query) ([]types.Bar, error) {
	interval, err := binanceInterval(query.Interval)
	if err != nil {
		return nil, fmt.Errorf("failed to convert interval to Binance interval: %w", err)
	}

	// Binance API uses milliseconds for timestamps
	currentStartTime := query.Start.UnixMilli()
	endTimeMillis := query.End.UnixMilli()
	bars := make([]types.Bar, 0)

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(query.Symbol).
			Interval(interval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch klines from Binance: %w", err)
		}

		page, err := convertKlines(klines)
		if err != nil {
			return nil, err
		}

		bars = append(bars, page...)

		if len(klines) < binancePageSize {
			break
		}

		// Use the close time of the last kline + 1ms to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	return bars, nil
}

// convertKlines converts Binance kline data to bars. Prices arrive as decimal strings.
func convertKlines(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse kline at %d: %w", k.OpenTime, err)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(), // Using OpenTime as the timestamp for the bar
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
