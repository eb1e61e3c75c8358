package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/stretchr/testify/suite"
)

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	callCount     int
	klinesPerCall [][]*binance.Kline
	errorsPerCall []error
	starts        []int64
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &mockBinanceKlinesService{client: m}
}

type mockBinanceKlinesService struct {
	client   *mockBinanceAPIClient
	symbol   string
	interval string
	start    int64
	end      int64
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.symbol = symbol

	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.interval = interval

	return m
}

func (m *mockBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	m.start = startTime

	return m
}

func (m *mockBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	m.end = endTime

	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	idx := m.client.callCount
	m.client.callCount++
	m.client.starts = append(m.client.starts, m.start)

	var err error
	if idx < len(m.client.errorsPerCall) {
		err = m.client.errorsPerCall[idx]
	}

	if idx < len(m.client.klinesPerCall) {
		return m.client.klinesPerCall[idx], err
	}

	return nil, err
}

// klinePage builds count consecutive one minute klines starting at start.
func klinePage(start time.Time, count int) []*binance.Kline {
	page := make([]*binance.Kline, count)

	for i := range page {
		openTime := start.Add(time.Duration(i) * time.Minute)
		page[i] = &binance.Kline{
			OpenTime:  openTime.UnixMilli(),
			CloseTime: openTime.Add(time.Minute).UnixMilli() - 1,
			Open:      "100.0",
			High:      "101.5",
			Low:       "99.5",
			Close:     strconv.Itoa(100 + i%2),
			Volume:    "12.5",
		}
	}

	return page
}

type BinanceClientTestSuite struct {
	suite.Suite
	query Query
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) SetupTest() {
	suite.query = Query{
		Symbol:   "BTCUSDT",
		Interval: types.Interval1m,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient("")
	suite.NoError(err)
	suite.Equal(ProviderBinance, client.Type())

	binanceClient, ok := client.(*BinanceClient)
	suite.True(ok)
	suite.NotNil(binanceClient.apiClient)
}

func (suite *BinanceClientTestSuite) TestFetchSinglePage() {
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{klinePage(suite.query.Start, 3)}}

	bars, err := NewBinanceClientWithAPI(api).Fetch(context.Background(), suite.query)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal(1, api.callCount)
	suite.Equal(101.0, bars[1].Close)
	suite.Equal(12.5, bars[2].Volume)
	suite.True(bars[0].Time.Equal(suite.query.Start))
}

func (suite *BinanceClientTestSuite) TestFetchPagination() {
	first := klinePage(suite.query.Start, binancePageSize)
	second := klinePage(suite.query.Start.Add(binancePageSize*time.Minute), 10)
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{first, second}}

	bars, err := NewBinanceClientWithAPI(api).Fetch(context.Background(), suite.query)
	suite.Require().NoError(err)
	suite.Len(bars, binancePageSize+10)
	suite.Equal(2, api.callCount)
	suite.Equal(first[len(first)-1].CloseTime+1, api.starts[1])
}

func (suite *BinanceClientTestSuite) TestFetchAPIError() {
	api := &mockBinanceAPIClient{errorsPerCall: []error{errors.New("boom")}}

	_, err := NewBinanceClientWithAPI(api).Fetch(context.Background(), suite.query)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to fetch klines from Binance")
}

func (suite *BinanceClientTestSuite) TestFetchUnsupportedInterval() {
	query := suite.query
	query.Interval = types.Interval2m

	_, err := NewBinanceClientWithAPI(&mockBinanceAPIClient{}).Fetch(context.Background(), query)
	suite.Error(err)
	suite.Contains(err.Error(), "unsupported interval for Binance")
}

func (suite *BinanceClientTestSuite) TestConvertKlinesWithInvalidNumbers() {
	page := klinePage(suite.query.Start, 1)
	page[0].High = "not-a-number"

	_, err := convertKlines(page)
	suite.Error(err)
}

func (suite *BinanceClientTestSuite) TestFetchFromFakeServer() {
	var gotSymbol, gotInterval string

	router := mux.NewRouter()
	router.HandleFunc("/api/v3/klines", func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		gotInterval = r.URL.Query().Get("interval")

		start := suite.query.Start.UnixMilli()
		rows := [][]any{
			{start, "100.0", "102.0", "99.0", "101.0", "5.0", start + 59999, "505.0", 10, "2.0", "202.0", "0"},
			{start + 60000, "101.0", "103.0", "100.0", "102.0", "6.0", start + 119999, "612.0", 12, "3.0", "306.0", "0"},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	}).Methods(http.MethodGet)

	server := httptest.NewServer(router)
	defer server.Close()

	client, err := NewBinanceClient(server.URL)
	suite.Require().NoError(err)

	bars, err := client.Fetch(context.Background(), suite.query)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.Equal("BTCUSDT", gotSymbol)
	suite.Equal("1m", gotInterval)
	suite.Equal(102.0, bars[1].Close)
	suite.Equal(6.0, bars[1].Volume)
}
