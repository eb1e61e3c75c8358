package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/argo-frvp/internal/analysis"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/version"
	"github.com/rxtech-lab/argo-frvp/mocks"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"
)

type ServerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockBarSource
	server *Server
	series *types.BarSeries
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockBarSource(suite.ctrl)
	suite.server = NewServer(analysis.NewAnalyzer(suite.source, nil), analysis.DefaultConfig(), nil)

	config := mocks.DefaultConfig()
	config.Symbol = "AAPL"
	config.Count = 250

	series, err := mocks.NewDataGenerator(7).GenerateSeries(config)
	suite.Require().NoError(err)
	suite.series = series
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ServerTestSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func (suite *ServerTestSuite) TestAnalysis() {
	suite.source.EXPECT().
		Fetch(gomock.Any(), marketdata.FetchRequest{
			Symbol:   "AAPL",
			Interval: types.Interval1d,
			Range:    marketdata.Range6MO,
		}).
		Return(suite.series, nil)

	rec := suite.get("/analysis/aapl?interval=1d&range=6mo&display=macd,rsi")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("application/json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	suite.Equal("AAPL", gjson.Get(body, "symbol").String())
	suite.Equal("1d", gjson.Get(body, "interval").String())
	suite.Equal(int64(250), gjson.Get(body, "bars.#").Int())
	suite.Equal(int64(250), gjson.Get(body, "actions.#").Int())
	suite.Equal(int64(4), gjson.Get(body, "indicators.#").Int())
	suite.Equal(int64(4), gjson.Get(body, "summary.snapshots.#").Int())
	suite.True(gjson.Get(body, "profile.poc").Exists())
	suite.NotEmpty(gjson.Get(body, "run_id").String())

	suite.Equal(1.0, testutil.ToFloat64(suite.server.Metrics().RunsTotal.WithLabelValues("ok")))
	suite.Equal(250.0, testutil.ToFloat64(suite.server.Metrics().BarsAnalyzed))
}

func (suite *ServerTestSuite) TestAnalysisWithStartEnd() {
	suite.source.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req marketdata.FetchRequest) (*types.BarSeries, error) {
			suite.Require().True(req.Start.IsSome())
			suite.Require().True(req.End.IsSome())
			suite.True(req.Start.Unwrap().Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			suite.True(req.End.Unwrap().Equal(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)))

			return suite.series, nil
		})

	rec := suite.get("/analysis/AAPL?start=2024-01-01&end=2024-09-01T12:00:00Z")
	suite.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (suite *ServerTestSuite) TestAnalysisErrors() {
	tests := []struct {
		name   string
		path   string
		fetch  func()
		status int
		code   string
	}{
		{
			name:   "unsupported interval",
			path:   "/analysis/AAPL?interval=3m",
			status: http.StatusBadRequest,
			code:   "unsupported_interval",
		},
		{
			name:   "unknown range",
			path:   "/analysis/AAPL?range=2w",
			status: http.StatusBadRequest,
			code:   "invalid_range",
		},
		{
			name:   "bad start",
			path:   "/analysis/AAPL?start=yesterday",
			status: http.StatusBadRequest,
			code:   "invalid_parameter",
		},
		{
			name:   "unknown indicator",
			path:   "/analysis/AAPL?display=vwap",
			status: http.StatusBadRequest,
			code:   "invalid_parameter",
		},
		{
			name: "empty series",
			path: "/analysis/AAPL",
			fetch: func() {
				empty, err := types.NewBarSeries("AAPL", types.Interval1d, nil)
				suite.Require().NoError(err)
				suite.source.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(empty, nil)
			},
			status: http.StatusNotFound,
			code:   "empty_series",
		},
		{
			name: "fetch failed",
			path: "/analysis/AAPL",
			fetch: func() {
				suite.source.EXPECT().Fetch(gomock.Any(), gomock.Any()).
					Return(nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "fetch AAPL", fmt.Errorf("boom")))
			},
			status: http.StatusBadGateway,
			code:   "fetch_failed",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			if tc.fetch != nil {
				tc.fetch()
			}

			rec := suite.get(tc.path)
			suite.Equal(tc.status, rec.Code, rec.Body.String())
			suite.Equal(tc.code, gjson.Get(rec.Body.String(), "code").String())
			suite.NotEmpty(gjson.Get(rec.Body.String(), "error").String())
		})
	}

	suite.Equal(6.0, testutil.ToFloat64(suite.server.Metrics().RunsTotal.WithLabelValues("error")))
}

func (suite *ServerTestSuite) TestHealth() {
	rec := suite.get("/healthz")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("ok", gjson.Get(rec.Body.String(), "status").String())
	suite.Equal(version.GetVersion(), gjson.Get(rec.Body.String(), "version").String())
}

func (suite *ServerTestSuite) TestMetricsEndpoint() {
	suite.source.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(suite.series, nil)
	suite.Require().Equal(http.StatusOK, suite.get("/analysis/AAPL").Code)

	rec := suite.get("/metrics")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `frvp_analysis_runs_total{status="ok"} 1`)
	suite.Contains(rec.Body.String(), "frvp_analysis_duration_seconds_count 1")
	suite.Contains(rec.Body.String(), `frvp_trade_actions_total{action="hold"}`)
}

func (suite *ServerTestSuite) TestStartStop() {
	suite.Require().NoError(suite.server.Start("127.0.0.1:0"))
	suite.NotEmpty(suite.server.Address())

	resp, err := http.Get("http://" + suite.server.Address() + "/healthz")
	suite.Require().NoError(err)

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	suite.Require().NoError(resp.Body.Close())

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("ok", gjson.GetBytes(body, "status").String())
	suite.NoError(suite.server.Stop())
}

func (suite *ServerTestSuite) TestStopWithoutStart() {
	suite.NoError(suite.server.Stop())
	suite.Empty(suite.server.Address())
}

func (suite *ServerTestSuite) TestParseDisplay() {
	d, err := ParseDisplay("MACD, rsi,bb")
	suite.Require().NoError(err)
	suite.Equal(analysis.Display{MACD: true, RSI: true, Bollinger: true}, d)

	d, err = ParseDisplay("all")
	suite.Require().NoError(err)
	suite.Equal(analysis.All(), d)

	d, err = ParseDisplay("none")
	suite.Require().NoError(err)
	suite.Equal(analysis.Display{}, d)
}

func (suite *ServerTestSuite) TestStatusFor() {
	suite.Equal(http.StatusBadRequest, StatusFor(errors.New(errors.ErrCodeInvalidConfiguration, "x")))
	suite.Equal(http.StatusNotFound, StatusFor(errors.New(errors.ErrCodeEmptySeries, "x")))
	suite.Equal(http.StatusBadGateway, StatusFor(errors.New(errors.ErrCodeMarketDataFetchFailed, "x")))
	suite.Equal(http.StatusServiceUnavailable, StatusFor(errors.New(errors.ErrCodeCanceled, "x")))
	suite.Equal(http.StatusInternalServerError, StatusFor(fmt.Errorf("plain")))
}
