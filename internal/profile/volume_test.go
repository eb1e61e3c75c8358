package profile

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/mocks"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/stretchr/testify/suite"
)

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

type VolumeProfileTestSuite struct {
	suite.Suite
}

func TestVolumeProfileSuite(t *testing.T) {
	suite.Run(t, new(VolumeProfileTestSuite))
}

func (suite *VolumeProfileTestSuite) series(closes, volumes []float64) *types.BarSeries {
	s, err := types.NewBarSeries("TEST", types.Interval1d, mocks.BarsFromCloses(testStart, closes, volumes))
	suite.Require().NoError(err)

	return s
}

func (suite *VolumeProfileTestSuite) TestEmptySeries() {
	empty, err := types.NewBarSeries("TEST", types.Interval1d, nil)
	suite.Require().NoError(err)

	_, err = Analyze(empty, DefaultOptions())
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))

	_, err = Analyze(nil, DefaultOptions())
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}

func (suite *VolumeProfileTestSuite) TestNoVolumeData() {
	_, err := Analyze(suite.series([]float64{10, 11, 12}, []float64{0, 0, 0}), DefaultOptions())
	suite.True(errors.HasCode(err, errors.ErrCodeNoVolumeData))
}

func (suite *VolumeProfileTestSuite) TestExactPriceAggregation() {
	s := suite.series(
		[]float64{10, 11, 10, 12, 11, 10},
		[]float64{100, 300, 150, 50, 100, 100},
	)

	result, err := Analyze(s, DefaultOptions())
	suite.Require().NoError(err)

	// 10 -> 350, 11 -> 400, 12 -> 50
	suite.Equal(11.0, result.PoC)
	suite.Equal([]Level{
		{Price: 10, Volume: 350, Bars: 3},
		{Price: 11, Volume: 400, Bars: 2},
		{Price: 12, Volume: 50, Bars: 1},
	}, result.Levels)
}

func (suite *VolumeProfileTestSuite) TestPoCTieIsFirstOccurrence() {
	s := suite.series([]float64{20, 15, 25, 18}, []float64{10, 500, 500, 30})

	first, err := Analyze(s, DefaultOptions())
	suite.Require().NoError(err)
	suite.Equal(15.0, first.PoC)

	for i := 0; i < 20; i++ {
		again, err := Analyze(s, DefaultOptions())
		suite.Require().NoError(err)
		suite.Equal(first, again)
	}
}

func (suite *VolumeProfileTestSuite) TestValueAreaUsesTopBarsByRawVolume() {
	// BarsFromCloses sets high = max(open, close)+0.5 and low = min(open, close)-0.5
	s := suite.series(
		[]float64{50, 60, 40, 55, 45},
		[]float64{10, 90, 80, 5, 70},
	)

	result, err := Analyze(s, Options{Mode: ModeExact, ValueAreaBars: 2})
	suite.Require().NoError(err)

	// top two by volume: bar 1 (open 50, close 60) and bar 2 (open 60, close 40)
	suite.Equal(60.5, result.VAH)
	suite.Equal(39.5, result.VAL)
}

func (suite *VolumeProfileTestSuite) TestValueAreaLargerThanSeries() {
	s := suite.series([]float64{50, 52}, []float64{10, 20})

	result, err := Analyze(s, DefaultOptions())
	suite.Require().NoError(err)
	suite.Equal(52.5, result.VAH)
	suite.Equal(49.5, result.VAL)
}

func (suite *VolumeProfileTestSuite) TestBucketedAggregation() {
	s := suite.series(
		[]float64{100.2, 100.9, 101.1, 101.4, 102.0},
		[]float64{10, 20, 5, 40, 1},
	)

	result, err := Analyze(s, Options{Mode: ModeBucketed, BucketWidth: 1, ValueAreaBars: 10})
	suite.Require().NoError(err)

	suite.Equal([]Level{
		{Price: 100, Volume: 30, Bars: 2},
		{Price: 101, Volume: 45, Bars: 2},
		{Price: 102, Volume: 1, Bars: 1},
	}, result.Levels)
	suite.Equal(101.0, result.PoC)

	exact, err := Analyze(s, DefaultOptions())
	suite.Require().NoError(err)
	suite.Equal(101.4, exact.PoC)
	suite.Len(exact.Levels, 5)
}

func (suite *VolumeProfileTestSuite) TestBucketEdges() {
	s := suite.series([]float64{0.3, 0.6, 0.9}, []float64{1, 1, 1})

	result, err := Analyze(s, Options{Mode: ModeBucketed, BucketWidth: 0.3})
	suite.Require().NoError(err)
	suite.Equal([]float64{0.3, 0.6, 0.9}, prices(result.Levels))
}

func (suite *VolumeProfileTestSuite) TestInvalidOptions() {
	s := suite.series([]float64{10}, []float64{1})

	tests := []Options{
		{Mode: ModeBucketed, BucketWidth: 0},
		{Mode: ModeBucketed, BucketWidth: -2},
		{Mode: "tpo"},
		{Mode: ModeExact, ValueAreaBars: -1},
	}

	for _, opts := range tests {
		_, err := Analyze(s, opts)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter), "%+v", opts)
	}
}

func prices(levels []Level) []float64 {
	out := make([]float64, len(levels))
	for i, level := range levels {
		out[i] = level.Price
	}

	return out
}
