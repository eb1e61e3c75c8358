package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"

	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// PolygonAggsIterator is the subset of the Polygon aggregate iterator the client reads.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the Polygon REST client for testing.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient  PolygonAPIClient
	onProgress OnFetchProgress
	// progress receives the terminal progress bar; nil disables it.
	progress io.Writer
}

// NewPolygonClient creates a Polygon client. Without an onProgress callback
// a progress bar is drawn on stderr, keeping stdout free for results.
func NewPolygonClient(apiKey string, onProgress OnFetchProgress) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	client := NewPolygonClientWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)})

	if onProgress != nil {
		client.onProgress = onProgress
	} else {
		client.progress = os.Stderr
	}

	return client, nil
}

// NewPolygonClientWithAPI creates a client over an existing API implementation.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient:  apiClient,
		onProgress: noProgress,
	}
}

func (c *PolygonClient) Type() ProviderType {
	return ProviderPolygon
}

// Fetch pages through the Polygon aggregates of query.Symbol. Polygon
// returns aggregates in ascending order.
func (c *PolygonClient) Fetch(ctx context.Context, query Query) ([]types.Bar, error) {
	multiplier, timespan, err := polygonTimespan(query.Interval)
	if err != nil {
		return nil, err
	}

	totalDays := int(query.End.Sub(query.Start).Hours()/24) + 1

	var bar *progressbar.ProgressBar
	if c.progress != nil {
		bar = progressbar.NewOptions(totalDays,
			progressbar.OptionSetWriter(c.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Fetching %s", query.Symbol)),
			progressbar.OptionShowCount())
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     query.Symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(query.Start),
		To:         models.Millis(query.End),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)
	bars := make([]types.Bar, 0)

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		agg := iter.Item()
		current := time.Time(agg.Timestamp)

		bars = append(bars, types.Bar{
			Time:   current,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})

		daysElapsed := int(current.Sub(query.Start).Hours() / 24)
		c.onProgress(float64(daysElapsed), float64(totalDays), fmt.Sprintf("Fetching %s", query.Symbol))

		if bar != nil && len(bars)%1000 == 0 {
			_ = bar.Set(daysElapsed)
		}
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("error iterating polygon aggregates: %w", iter.Err())
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return bars, nil
}
