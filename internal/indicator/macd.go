package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// MACDResult holds the three MACD lines, aligned with the input closes.
type MACDResult struct {
	MACD      []optional.Option[float64]
	Signal    []optional.Option[float64]
	Histogram []optional.Option[float64]
}

// CalculateMACD computes MACD = EMA(fast) - EMA(slow) and its signal line
// EMA(MACD, signal). MACD is defined on every bar. The signal line is
// computed over the whole series but reported undefined for the first
// slow-1 bars, so nothing can cross it before the slow window has filled.
func CalculateMACD(closes []float64, fast, slow, signal int) MACDResult {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := EMA(line, signal)

	result := MACDResult{
		MACD:      some(line),
		Signal:    none(len(closes)),
		Histogram: none(len(closes)),
	}

	for i := range closes {
		if i < slow-1 {
			continue
		}

		result.Signal[i] = optional.Some(signalLine[i])
		result.Histogram[i] = optional.Some(line[i] - signalLine[i])
	}

	return result
}

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct{}

func NewMACD() Indicator {
	return &MACD{}
}

func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

func (m *MACD) Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error) {
	w := ctx.Windows
	result := CalculateMACD(ctx.Series.Closes(), w.MACDFast, w.MACDSlow, w.MACDSignal)

	return []types.IndicatorSeries{
		{Name: types.SeriesMACD, Values: result.MACD},
		{Name: types.SeriesMACDSignal, Values: result.Signal},
		{Name: types.SeriesMACDHistogram, Values: result.Histogram},
	}, nil
}
