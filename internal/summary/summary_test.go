package summary

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/signal"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/mocks"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/stretchr/testify/suite"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func values(name string, vs ...float64) types.IndicatorSeries {
	out := make([]optional.Option[float64], len(vs))
	for i, v := range vs {
		if math.IsNaN(v) {
			out[i] = optional.None[float64]()
		} else {
			out[i] = optional.Some(v)
		}
	}

	return types.IndicatorSeries{Name: name, Values: out}
}

type SummaryTestSuite struct {
	suite.Suite
	series *types.BarSeries
}

func TestSummarySuite(t *testing.T) {
	suite.Run(t, new(SummaryTestSuite))
}

func (suite *SummaryTestSuite) SetupTest() {
	s, err := types.NewBarSeries("TEST", types.Interval1d, mocks.BarsFromCloses(start, []float64{10, 11, 12, 13, 14}, nil))
	suite.Require().NoError(err)
	suite.series = s
}

func (suite *SummaryTestSuite) set(s ...types.IndicatorSeries) *indicator.Set {
	set := indicator.NewSet(suite.series.Len())
	suite.Require().NoError(set.Add(s...))

	return set
}

func (suite *SummaryTestSuite) TestCountsAndTimes() {
	actions := []types.TradeAction{
		types.Hold(),
		types.Buy(types.RuleRsi),
		types.Sell(),
		types.Buy(types.RuleRsi),
		types.Hold(),
	}

	s, err := Summarize(suite.series, suite.set(), actions, nil)
	suite.Require().NoError(err)

	suite.Equal(2, s.BuyCount)
	suite.Equal(1, s.SellCount)
	suite.Equal([]time.Time{start.AddDate(0, 0, 1), start.AddDate(0, 0, 3)}, s.BuyTimes)
	suite.Equal([]time.Time{start.AddDate(0, 0, 2)}, s.SellTimes)
	suite.Equal(map[string]int{"rsi": 2}, s.BuyRules)
	suite.Equal(map[string]int{"hold": 2, "buy": 2, "sell": 1}, s.Actions)
	suite.Empty(s.Snapshots)
}

func (suite *SummaryTestSuite) TestNoActions() {
	actions := make([]types.TradeAction, suite.series.Len())
	for i := range actions {
		actions[i] = types.Hold()
	}

	s, err := Summarize(suite.series, suite.set(), actions, nil)
	suite.Require().NoError(err)
	suite.Zero(s.BuyCount)
	suite.Zero(s.SellCount)
	suite.NotNil(s.BuyTimes)
	suite.Empty(s.BuyTimes)
}

func (suite *SummaryTestSuite) TestSnapshotsFollowRequestOrder() {
	set := suite.set(
		values(types.SeriesMAShort, math.NaN(), 1, 2, 3, 4),
		values(types.SeriesMALong, math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()),
	)

	s, err := Summarize(suite.series, set, make([]types.TradeAction, 5), []string{
		types.SeriesMALong, types.SeriesMAShort, "unknown",
	})
	suite.Require().NoError(err)
	suite.Require().Len(s.Snapshots, 3)

	suite.Equal(types.SeriesMALong, s.Snapshots[0].Name)
	suite.Nil(s.Snapshots[0].Value)

	suite.Equal(types.SeriesMAShort, s.Snapshots[1].Name)
	suite.Require().NotNil(s.Snapshots[1].Value)
	suite.Equal(4.0, *s.Snapshots[1].Value)

	suite.Nil(s.Snapshots[2].Value)
}

func (suite *SummaryTestSuite) TestActionLengthMismatch() {
	_, err := Summarize(suite.series, suite.set(), []types.TradeAction{types.Hold()}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *SummaryTestSuite) TestSetLengthMismatch() {
	_, err := Summarize(suite.series, indicator.NewSet(2), make([]types.TradeAction, 5), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}

func (suite *SummaryTestSuite) TestClassify() {
	nan := math.NaN()

	tests := []struct {
		name   string
		macd   []float64
		signal []float64
		want   Crossover
	}{
		{"bullish", []float64{0, 0, 0, 1, 3}, []float64{nan, 0, 0, 2, 2}, CrossoverBullish},
		{"bearish", []float64{0, 0, 0, 3, 1}, []float64{nan, 0, 0, 2, 2}, CrossoverBearish},
		{"touching is not a cross", []float64{0, 0, 0, 2, 2}, []float64{nan, 0, 0, 2, 2}, CrossoverNone},
		{"parallel", []float64{0, 0, 0, 3, 4}, []float64{nan, 0, 0, 2, 2}, CrossoverNone},
		{"previous bar undefined", []float64{0, 0, 0, 1, 3}, []float64{nan, 0, 0, nan, 2}, CrossoverInsufficientData},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			set := suite.set(values(types.SeriesMACD, tc.macd...), values(types.SeriesMACDSignal, tc.signal...))
			in, err := signal.NewInputs(suite.series, set)
			suite.Require().NoError(err)
			suite.Equal(tc.want, Classify(in, 4))
		})
	}
}

func (suite *SummaryTestSuite) TestClassifySingleBar() {
	one, err := types.NewBarSeries("ONE", types.Interval1d, mocks.BarsFromCloses(start, []float64{1}, nil))
	suite.Require().NoError(err)

	set := indicator.NewSet(1)
	suite.Require().NoError(set.Add(values(types.SeriesMACD, 0), values(types.SeriesMACDSignal, 0)))

	in, err := signal.NewInputs(one, set)
	suite.Require().NoError(err)
	suite.Equal(CrossoverInsufficientData, Classify(in, 0))
	suite.Equal("Insufficient data to analyze MACD crossover.", CrossoverInsufficientData.Message())
}

func (suite *SummaryTestSuite) TestMACDReading() {
	set := suite.set(
		values(types.SeriesMACD, 0, 0, 0, 3, 1),
		values(types.SeriesMACDSignal, math.NaN(), 0, 0, 2, 2),
	)

	s, err := Summarize(suite.series, set, make([]types.TradeAction, 5), nil)
	suite.Require().NoError(err)
	suite.Require().NotNil(s.MACD.MACD)
	suite.Require().NotNil(s.MACD.Signal)
	suite.Equal(1.0, *s.MACD.MACD)
	suite.Equal(2.0, *s.MACD.Signal)
	suite.Equal(CrossoverBearish, s.MACD.Crossover)
	suite.Equal("Bearish signal: MACD crossed below the signal line.", s.MACD.Message)
}
