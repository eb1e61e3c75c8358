package profile

import (
	"math"

	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// MarketProfile counts how many bars closed at each price level. In the
// returned levels Volume holds that count. Levels are sorted by price.
func MarketProfile(series *types.BarSeries, opts Options) ([]Level, error) {
	if series == nil || series.IsEmpty() {
		return nil, errors.New(errors.ErrCodeEmptySeries, "market profile needs at least one bar")
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	levels := aggregate(series.Bars(), opts, func(types.Bar) float64 { return 1 })
	sortByPrice(levels)

	return levels, nil
}

// EntryLevels returns the prices, ascending, that stand out in both
// profiles: aggregated volume above mean+stddev of the volume profile and
// bar count above mean+stddev of the market profile. Standard deviations
// use the sample (n-1) form, so profiles with fewer than two levels yield
// no entries.
func EntryLevels(volume, market []Level) []float64 {
	heavy := outliers(volume)
	frequent := outliers(market)

	entries := make([]float64, 0)

	for _, level := range volume {
		if heavy[level.Price] && frequent[level.Price] {
			entries = append(entries, level.Price)
		}
	}

	return entries
}

func outliers(levels []Level) map[float64]bool {
	out := make(map[float64]bool)
	if len(levels) < 2 {
		return out
	}

	mean := 0.0
	for _, level := range levels {
		mean += level.Volume
	}

	mean /= float64(len(levels))

	variance := 0.0
	for _, level := range levels {
		variance += (level.Volume - mean) * (level.Volume - mean)
	}

	threshold := mean + math.Sqrt(variance/float64(len(levels)-1))

	for _, level := range levels {
		if level.Volume > threshold {
			out[level.Price] = true
		}
	}

	return out
}
