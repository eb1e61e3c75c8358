package indicator

import (
	"math"

	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// CalculateADX returns the Average Directional Index with Wilder smoothing.
// The first 2*window-1 bars are undefined; a series shorter than 2*window
// is undefined everywhere.
func CalculateADX(highs, lows, closes []float64, window int) []optional.Option[float64] {
	out := none(len(closes))

	lookback := 2*window - 1
	if window <= 0 || len(closes) <= lookback {
		return out
	}

	raw := talib.Adx(highs, lows, closes, window)

	for i := lookback; i < len(raw); i++ {
		v := raw[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		out[i] = optional.Some(math.Max(0, math.Min(100, v)))
	}

	return out
}

// ADX represents the Average Directional Index indicator.
type ADX struct{}

func NewADX() Indicator {
	return &ADX{}
}

func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

func (a *ADX) Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error) {
	s := ctx.Series

	return []types.IndicatorSeries{{
		Name:   types.SeriesADX,
		Values: CalculateADX(s.Highs(), s.Lows(), s.Closes(), ctx.Windows.ADX),
	}}, nil
}
