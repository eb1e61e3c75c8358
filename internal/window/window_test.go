package window

import (
	"testing"

	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type WindowTestSuite struct {
	suite.Suite
}

func TestWindowSuite(t *testing.T) {
	suite.Run(t, new(WindowTestSuite))
}

func (suite *WindowTestSuite) TestBarsFor() {
	tests := []struct {
		name     string
		days     int
		interval types.Interval
		want     int
	}{
		{"50 days daily", 50, types.Interval1d, 50},
		{"50 days hourly", 50, types.Interval1h, 1200},
		{"14 days weekly", 14, types.Interval1wk, 2},
		{"1 day 30 minute", 1, types.Interval30m, 48},
		{"1 day 1 minute", 1, types.Interval1m, 1440},
		{"2 days 5 minute", 2, types.Interval5m, 576},
		{"3 days 2 minute", 3, types.Interval2m, 2160},
		{"weekly floors to one", 3, types.Interval1wk, 1},
		{"weekly floor", 20, types.Interval1wk, 2},
		{"zero days clamps to one", 0, types.Interval1d, 1},
		{"negative days clamps to one", -5, types.Interval1h, 1},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got, err := BarsFor(tc.days, tc.interval)
			suite.NoError(err)
			suite.Equal(tc.want, got)
		})
	}
}

func (suite *WindowTestSuite) TestBarsForErrors() {
	_, err := BarsFor(14, types.Interval("90m"))
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedInterval))

	_, err = BarsFor(0, types.Interval("90m"))
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedInterval), "interval checked before days")
}

func (suite *WindowTestSuite) TestResolveDaily() {
	w, err := Resolve(DefaultParams(), types.Interval1d)
	suite.Require().NoError(err)
	suite.Equal(Windows{
		Interval:   types.Interval1d,
		MAShort:    50,
		MALong:     200,
		Bollinger:  20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		RSI:        14,
		ADX:        14,
		OBVMean:    DefaultOBVMean,
	}, w)
}

func (suite *WindowTestSuite) TestResolveHourlyScalesEveryWindow() {
	w, err := Resolve(DefaultParams(), types.Interval1h)
	suite.Require().NoError(err)
	suite.Equal(1200, w.MAShort)
	suite.Equal(4800, w.MALong)
	suite.Equal(288, w.MACDFast)
	suite.Equal(624, w.MACDSlow)
	suite.Equal(216, w.MACDSignal)
	suite.Equal(336, w.RSI)
	suite.Equal(DefaultOBVMean, w.OBVMean)
}

func (suite *WindowTestSuite) TestResolveErrors() {
	_, err := Resolve(DefaultParams(), types.Interval("1mo"))
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedInterval))

	params := DefaultParams()
	params.RSI = -1
	_, err = Resolve(params, types.Interval1d)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	suite.Contains(err.Error(), "rsi")

	params = DefaultParams()
	params.ADX = 0
	_, err = Resolve(params, types.Interval1wk)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	suite.Contains(err.Error(), "adx")
}

func (suite *WindowTestSuite) TestWithOBVMean() {
	w := Windows{OBVMean: DefaultOBVMean}
	suite.Equal(30, w.WithOBVMean(30).OBVMean)
	suite.Equal(DefaultOBVMean, w.WithOBVMean(0).OBVMean)
}
