package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/window"
)

// SMA returns the trailing arithmetic mean of values over window bars.
// The first window-1 entries are undefined.
func SMA(values []float64, window int) []optional.Option[float64] {
	out := none(len(values))
	if window <= 0 {
		return out
	}

	sum := 0.0

	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}

		if i >= window-1 {
			out[i] = optional.Some(sum / float64(window))
		}
	}

	return out
}

// MA is a simple moving average over one of the analysis windows.
type MA struct {
	name   types.IndicatorType
	window func(w window.Windows) int
}

// NewShortMA creates the short (50-day by default) moving average.
func NewShortMA() Indicator {
	return &MA{
		name:   types.IndicatorTypeMAShort,
		window: func(w window.Windows) int { return w.MAShort },
	}
}

// NewLongMA creates the long (200-day by default) moving average.
func NewLongMA() Indicator {
	return &MA{
		name:   types.IndicatorTypeMALong,
		window: func(w window.Windows) int { return w.MALong },
	}
}

func (m *MA) Name() types.IndicatorType {
	return m.name
}

func (m *MA) Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error) {
	return []types.IndicatorSeries{{
		Name:   string(m.name),
		Values: SMA(ctx.Series.Closes(), m.window(ctx.Windows)),
	}}, nil
}
