// Package profile aggregates traded volume by price. It finds the point of
// control and the value area of a bar series, and it also builds the
// market (time-at-price) profile and a simple trend outlook.
package profile

import (
	"math"
	"sort"

	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/shopspring/decimal"
)

// Mode selects how close prices are grouped into levels.
type Mode string

const (
	// ModeExact groups bars by their exact close price.
	ModeExact Mode = "exact"
	// ModeBucketed groups bars into price buckets of BucketWidth.
	ModeBucketed Mode = "bucketed"
)

const DefaultValueAreaBars = 10

type Options struct {
	Mode Mode
	// BucketWidth is the bucket size for ModeBucketed.
	BucketWidth float64
	// ValueAreaBars is the number of highest-volume bars that span the value area.
	ValueAreaBars int
}

func DefaultOptions() Options {
	return Options{Mode: ModeExact, ValueAreaBars: DefaultValueAreaBars}
}

func (o Options) validate() error {
	switch o.Mode {
	case ModeExact, "":
	case ModeBucketed:
		if o.BucketWidth <= 0 || math.IsNaN(o.BucketWidth) || math.IsInf(o.BucketWidth, 0) {
			return errors.Newf(errors.ErrCodeInvalidParameter, "bucket width must be positive, got %v", o.BucketWidth)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown profile mode %q", o.Mode)
	}

	if o.ValueAreaBars < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "value area bar count must not be negative, got %d", o.ValueAreaBars)
	}

	return nil
}

// Level is the volume traded at one price level.
type Level struct {
	Price  float64 `json:"price" yaml:"price"`
	Volume float64 `json:"volume" yaml:"volume"`
	Bars   int     `json:"bars" yaml:"bars"`
}

// Result is the volume profile of a series.
type Result struct {
	PoC float64 `json:"poc" yaml:"poc"`
	VAH float64 `json:"vah" yaml:"vah"`
	VAL float64 `json:"val" yaml:"val"`
	// Levels are sorted by ascending price.
	Levels []Level `json:"levels" yaml:"levels"`
}

// Analyze computes the point of control and the value area of series.
//
// The point of control is the price of the level with the most aggregated
// volume; a tie goes to the level seen first in series order. The value
// area spans max(high) and min(low) of the ValueAreaBars bars with the
// largest raw volume, ties ordered by series position.
func Analyze(series *types.BarSeries, opts Options) (Result, error) {
	if series == nil || series.IsEmpty() {
		return Result{}, errors.New(errors.ErrCodeEmptySeries, "volume profile needs at least one bar")
	}

	if err := opts.validate(); err != nil {
		return Result{}, err
	}

	bars := series.Bars()

	if !hasVolume(bars) {
		return Result{}, errors.Newf(errors.ErrCodeNoVolumeData, "%s has no traded volume in %d bars", series.Symbol(), len(bars))
	}

	levels := aggregate(bars, opts, func(b types.Bar) float64 { return b.Volume })

	poc := levels[0]
	for _, level := range levels[1:] {
		if level.Volume > poc.Volume {
			poc = level
		}
	}

	vah, val := valueArea(bars, valueAreaSize(opts))

	sortByPrice(levels)

	return Result{PoC: poc.Price, VAH: vah, VAL: val, Levels: levels}, nil
}

func valueAreaSize(opts Options) int {
	if opts.ValueAreaBars == 0 {
		return DefaultValueAreaBars
	}

	return opts.ValueAreaBars
}

func hasVolume(bars []types.Bar) bool {
	for _, bar := range bars {
		if bar.Volume > 0 {
			return true
		}
	}

	return false
}

func valueArea(bars []types.Bar, n int) (high, low float64) {
	order := make([]int, len(bars))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return bars[order[a]].Volume > bars[order[b]].Volume
	})

	if n > len(order) {
		n = len(order)
	}

	high, low = math.Inf(-1), math.Inf(1)
	for _, idx := range order[:n] {
		high = math.Max(high, bars[idx].High)
		low = math.Min(low, bars[idx].Low)
	}

	return high, low
}

// aggregate sums weight per level and returns the levels in first-seen order.
func aggregate(bars []types.Bar, opts Options, weight func(types.Bar) float64) []Level {
	index := make(map[string]int)
	levels := make([]Level, 0)

	for _, bar := range bars {
		key, price := levelKey(bar.Close, opts)

		i, ok := index[key]
		if !ok {
			i = len(levels)
			index[key] = i
			levels = append(levels, Level{Price: price})
		}

		levels[i].Volume += weight(bar)
		levels[i].Bars++
	}

	return levels
}

// levelKey maps a close to its level. Buckets are computed in decimal so a
// price sitting exactly on a bucket edge always lands in the same bucket.
func levelKey(closePrice float64, opts Options) (string, float64) {
	if opts.Mode != ModeBucketed {
		d := decimal.NewFromFloat(closePrice)

		return d.String(), closePrice
	}

	width := decimal.NewFromFloat(opts.BucketWidth)
	bucket := decimal.NewFromFloat(closePrice).Div(width).Floor().Mul(width)

	return bucket.String(), bucket.InexactFloat64()
}

func sortByPrice(levels []Level) {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
}
