package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Bands holds upper, middle and lower Bollinger bands.
type Bands struct {
	Upper  []optional.Option[float64]
	Middle []optional.Option[float64]
	Lower  []optional.Option[float64]
}

// CalculateBollingerBands returns middle = SMA(window) and middle ± k times
// the rolling sample standard deviation (n-1 denominator). The bands are
// undefined wherever the standard deviation is, including everywhere when
// window < 2.
func CalculateBollingerBands(closes []float64, window int, k float64) Bands {
	bands := Bands{
		Upper:  none(len(closes)),
		Middle: SMA(closes, window),
		Lower:  none(len(closes)),
	}

	if window < 2 {
		return bands
	}

	for i := window - 1; i < len(closes); i++ {
		mean := bands.Middle[i].Unwrap()

		sumSq := 0.0
		for _, v := range closes[i-window+1 : i+1] {
			sumSq += (v - mean) * (v - mean)
		}

		std := math.Sqrt(sumSq / float64(window-1))
		bands.Upper[i] = optional.Some(mean + k*std)
		bands.Lower[i] = optional.Some(mean - k*std)
	}

	return bands
}

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with k = 2.
func NewBollingerBands() Indicator {
	return &BollingerBands{stdDev: 2.0}
}

func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config sets the band width multiplier. Expected parameters: stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: stdDev (float64)")
	}

	stdDev, ok := params[0].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.stdDev = stdDev

	return nil
}

func (bb *BollingerBands) Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error) {
	bands := CalculateBollingerBands(ctx.Series.Closes(), ctx.Windows.Bollinger, bb.stdDev)

	return []types.IndicatorSeries{
		{Name: types.SeriesBBUpper, Values: bands.Upper},
		{Name: types.SeriesBBMiddle, Values: bands.Middle},
		{Name: types.SeriesBBLower, Values: bands.Lower},
	}, nil
}
