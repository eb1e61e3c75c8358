package indicator

import (
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// CalculateOBV returns on-balance volume: a running sum starting at 0 that
// adds the bar volume on an up close and subtracts it on a down close.
func CalculateOBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))

	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}

	return out
}

// OBV represents the On-Balance Volume indicator together with its trailing
// mean, which the OBV rules compare against.
type OBV struct{}

func NewOBV() Indicator {
	return &OBV{}
}

func (o *OBV) Name() types.IndicatorType {
	return types.IndicatorTypeOBV
}

func (o *OBV) Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error) {
	obv := CalculateOBV(ctx.Series.Closes(), ctx.Series.Volumes())

	return []types.IndicatorSeries{
		types.NewIndicatorSeries(types.SeriesOBV, obv),
		{Name: types.SeriesOBVMean, Values: SMA(obv, ctx.Windows.OBVMean)},
	}, nil
}
