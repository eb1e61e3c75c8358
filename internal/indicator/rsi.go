package indicator

import (
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// NeutralRSI is reported where the average loss is zero or not yet defined.
const NeutralRSI = 50.0

// CalculateRSI computes the Relative Strength Index from the trailing
// window mean of gains and losses. Bar 0 has no price change, so the
// averages are defined from bar window on and earlier bars are neutral.
// Every entry is defined and lies in [0, 100].
func CalculateRSI(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	if window <= 0 {
		for i := range out {
			out[i] = NeutralRSI
		}

		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := range closes {
		out[i] = NeutralRSI
		if i < window {
			continue
		}

		// exact window sums keep lossSum at 0 when no bar in the window lost
		gainSum, lossSum := 0.0, 0.0
		for j := i - window + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}

		if lossSum == 0 {
			continue
		}

		rs := gainSum / lossSum
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

// RSI represents the Relative Strength Index indicator.
type RSI struct{}

func NewRSI() Indicator {
	return &RSI{}
}

func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

func (r *RSI) Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error) {
	values := CalculateRSI(ctx.Series.Closes(), ctx.Windows.RSI)

	return []types.IndicatorSeries{types.NewIndicatorSeries(types.SeriesRSI, values)}, nil
}
