package writer

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	frvperrors "github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
	series  *types.BarSeries
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, 3)

	for i := range bars {
		c := 100 + float64(i)
		bars[i] = types.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}

	s, err := types.NewBarSeries("AAPL", types.Interval1d, bars)
	suite.Require().NoError(err)
	suite.series = s
}

func (suite *DuckDBWriterTestSuite) set() *indicator.Set {
	set := indicator.NewSet(3)
	suite.Require().NoError(set.Add(types.IndicatorSeries{
		Name:   types.SeriesMAShort,
		Values: []optional.Option[float64]{optional.None[float64](), optional.Some(100.5), optional.Some(101.5)},
	}))

	return set
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath, nil)

	suite.NotNil(writer)
	suite.Equal(outputPath, writer.GetOutputPath())

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.True(ok)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"), nil)

	err := writer.Write(ChartRow{Symbol: "AAPL", Time: time.Now()})
	suite.Error(err)
	suite.Contains(err.Error(), "writer not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestWriteRejectsMisalignedValues() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "misaligned.parquet"), nil)
	suite.Require().NoError(writer.Initialize([]string{"rsi"}))

	defer writer.Close()

	err := writer.Write(ChartRow{Symbol: "AAPL", Time: time.Now()})
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestExportChart() {
	outputPath := filepath.Join(suite.tempDir, "chart.parquet")
	actions := []types.TradeAction{types.Hold(), types.Buy(types.RuleRsi), types.Sell()}

	path, err := ExportChart(NewDuckDBWriter(outputPath, nil), suite.series, suite.set(), []string{types.SeriesMAShort}, actions)
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT close, ma_short, action FROM read_parquet('%s') ORDER BY time`, outputPath))
	suite.Require().NoError(err)

	defer rows.Close()

	var (
		closes []float64
		ma     []float64
		labels []string
	)

	for rows.Next() {
		var (
			c      float64
			m      sql.NullFloat64
			action string
		)

		suite.Require().NoError(rows.Scan(&c, &m, &action))
		closes = append(closes, c)
		labels = append(labels, action)

		if m.Valid {
			ma = append(ma, m.Float64)
		} else {
			ma = append(ma, math.NaN())
		}
	}

	suite.Equal([]float64{100, 101, 102}, closes)
	suite.True(math.IsNaN(ma[0]))
	suite.Equal([]float64{100.5, 101.5}, ma[1:])
	suite.Equal([]string{"hold", "buy (RSI)", "sell"}, labels)
}

func (suite *DuckDBWriterTestSuite) TestExportChartErrors() {
	actions := []types.TradeAction{types.Hold(), types.Hold(), types.Hold()}
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "err.parquet"), nil)

	_, err := ExportChart(writer, suite.series, suite.set(), []string{types.SeriesRSI}, actions)
	suite.True(frvperrors.HasCode(err, frvperrors.ErrCodeIndicatorNotFound))

	_, err = ExportChart(writer, suite.series, suite.set(), nil, actions[:1])
	suite.True(frvperrors.HasCode(err, frvperrors.ErrCodeInvalidParameter))
}

// failingWriter fails on the configured step.
type failingWriter struct {
	MarketDataWriter
	writeErr error
	closed   bool
}

func (f *failingWriter) Initialize([]string) error { return nil }
func (f *failingWriter) Write(ChartRow) error      { return f.writeErr }
func (f *failingWriter) Close() error {
	f.closed = true

	return nil
}

func (suite *DuckDBWriterTestSuite) TestExportChartClosesOnWriteError() {
	w := &failingWriter{writeErr: errors.New("disk full")}
	actions := []types.TradeAction{types.Hold(), types.Hold(), types.Hold()}

	_, err := ExportChart(w, suite.series, suite.set(), nil, actions)
	suite.True(frvperrors.HasCode(err, frvperrors.ErrCodeMarketDataWriteFailed))
	suite.True(w.closed)
}
