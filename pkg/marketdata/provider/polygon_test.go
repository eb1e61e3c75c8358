package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator PolygonAggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonClientTestSuite struct {
	suite.Suite
	query Query
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.query = Query{
		Symbol:   "SPY",
		Interval: types.Interval1d,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_ValidApiKey() {
	client, err := NewPolygonClient("test-api-key", nil)
	suite.NoError(err)
	suite.NotNil(client)
	suite.Equal(ProviderPolygon, client.Type())

	polygonClient, ok := client.(*PolygonClient)
	suite.True(ok)
	suite.NotNil(polygonClient.apiClient)
	suite.Equal(os.Stderr, polygonClient.progress, "bar goes to stderr")
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_CallbackDisablesBar() {
	client, err := NewPolygonClient("test-api-key", func(_, _ float64, _ string) {})
	suite.Require().NoError(err)
	suite.Nil(client.(*PolygonClient).progress)
}

func (suite *PolygonClientTestSuite) TestFetchKeepsStdoutClean() {
	day := suite.query.Start
	aggs := make([]models.Agg, 6)
	for i := range aggs {
		aggs[i] = models.Agg{Open: 100, High: 101, Low: 99, Close: 100, Volume: 10, Timestamp: models.Millis(day.AddDate(0, 0, i))}
	}

	var progress bytes.Buffer

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: aggs}})
	client.progress = &progress

	reader, writer, err := os.Pipe()
	suite.Require().NoError(err)

	stdout := os.Stdout
	os.Stdout = writer

	bars, fetchErr := client.Fetch(context.Background(), suite.query)

	os.Stdout = stdout
	suite.Require().NoError(writer.Close())

	captured, err := io.ReadAll(reader)
	suite.Require().NoError(err)
	suite.Require().NoError(reader.Close())

	suite.Require().NoError(fetchErr)
	suite.Len(bars, 6)
	suite.Empty(captured, "stdout must stay clean for json and yaml output")
	suite.Contains(progress.String(), "Fetching SPY")
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_EmptyApiKey() {
	client, err := NewPolygonClient("", nil)
	suite.Error(err)
	suite.Nil(client)
	suite.Contains(err.Error(), "apiKey is required")
}

func (suite *PolygonClientTestSuite) TestFetch() {
	day := suite.query.Start
	iterator := &mockPolygonIterator{aggs: []models.Agg{
		{Open: 100, High: 105, Low: 99, Close: 104, Volume: 1000, Timestamp: models.Millis(day)},
		{Open: 104, High: 106, Low: 101, Close: 102, Volume: 800, Timestamp: models.Millis(day.AddDate(0, 0, 1))},
	}}
	api := &mockPolygonAPIClient{iterator: iterator}

	var progressCalls int

	client := NewPolygonClientWithAPI(api)
	client.onProgress = func(_, _ float64, _ string) { progressCalls++ }

	bars, err := client.Fetch(context.Background(), suite.query)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.Equal(104.0, bars[0].Close)
	suite.Equal(800.0, bars[1].Volume)
	suite.True(bars[1].Time.Equal(day.AddDate(0, 0, 1)))
	suite.Equal(2, progressCalls)

	suite.Require().NotNil(api.params)
	suite.Equal("SPY", api.params.Ticker)
	suite.Equal(1, api.params.Multiplier)
	suite.Equal(models.Day, api.params.Timespan)
}

func (suite *PolygonClientTestSuite) TestFetchIteratorError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("rate limited")}}

	_, err := NewPolygonClientWithAPI(api).Fetch(context.Background(), suite.query)
	suite.Error(err)
	suite.Contains(err.Error(), "rate limited")
}

func (suite *PolygonClientTestSuite) TestFetchCanceled() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{{Close: 1}}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPolygonClientWithAPI(api).Fetch(ctx, suite.query)
	suite.ErrorIs(err, context.Canceled)
}

func (suite *PolygonClientTestSuite) TestPolygonTimespan() {
	tests := []struct {
		interval   types.Interval
		multiplier int
		timespan   models.Timespan
	}{
		{types.Interval1m, 1, models.Minute},
		{types.Interval2m, 2, models.Minute},
		{types.Interval5m, 5, models.Minute},
		{types.Interval30m, 30, models.Minute},
		{types.Interval1h, 1, models.Hour},
		{types.Interval1d, 1, models.Day},
		{types.Interval1wk, 1, models.Week},
	}

	for _, tc := range tests {
		suite.Run(string(tc.interval), func() {
			multiplier, timespan, err := polygonTimespan(tc.interval)
			suite.NoError(err)
			suite.Equal(tc.multiplier, multiplier)
			suite.Equal(tc.timespan, timespan)
		})
	}

	_, _, err := polygonTimespan(types.Interval("3d"))
	suite.Error(err)
}
