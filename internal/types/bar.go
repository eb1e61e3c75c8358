package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Bar is one OHLCV sample for a fixed time interval.
type Bar struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// Validate checks a single bar: finite prices, non-negative volume and
// low <= min(open, close) <= max(open, close) <= high.
func (b Bar) Validate() error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar at %s has a non-finite value", b.Time.Format(time.RFC3339))
		}
	}

	if b.Volume < 0 {
		return errors.Newf(errors.ErrCodeInvalidBar, "bar at %s has negative volume %v", b.Time.Format(time.RFC3339), b.Volume)
	}

	if b.Low > math.Min(b.Open, b.Close) || math.Max(b.Open, b.Close) > b.High {
		return errors.Newf(errors.ErrCodeInvalidBar,
			"bar at %s violates low <= open/close <= high (o=%v h=%v l=%v c=%v)",
			b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close)
	}

	return nil
}

// BarSeries is an ordered, immutable sequence of bars for one symbol at one
// sampling interval. Accessors return copies.
type BarSeries struct {
	symbol   string
	interval Interval
	bars     []Bar
}

// NewBarSeries validates bars and builds a series. Timestamps must be
// strictly increasing. An empty series is valid; consumers decide whether
// they can work with it.
func NewBarSeries(symbol string, interval Interval, bars []Bar) (*BarSeries, error) {
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return nil, err
		}

		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeInvalidBar,
				"bar %d at %s is not after bar %d at %s",
				i, bar.Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339))
		}
	}

	owned := make([]Bar, len(bars))
	copy(owned, bars)

	return &BarSeries{symbol: symbol, interval: interval, bars: owned}, nil
}

func (s *BarSeries) Symbol() string {
	return s.symbol
}

func (s *BarSeries) Interval() Interval {
	return s.interval
}

func (s *BarSeries) Len() int {
	return len(s.bars)
}

func (s *BarSeries) IsEmpty() bool {
	return len(s.bars) == 0
}

// At returns bar i. It panics when i is out of range, like a slice index.
func (s *BarSeries) At(i int) Bar {
	return s.bars[i]
}

// Last returns the most recent bar. ok is false for an empty series.
func (s *BarSeries) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}

	return s.bars[len(s.bars)-1], true
}

// Bars returns a copy of the underlying bars.
func (s *BarSeries) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)

	return out
}

func (s *BarSeries) Closes() []float64 {
	return s.project(func(b Bar) float64 { return b.Close })
}

func (s *BarSeries) Highs() []float64 {
	return s.project(func(b Bar) float64 { return b.High })
}

func (s *BarSeries) Lows() []float64 {
	return s.project(func(b Bar) float64 { return b.Low })
}

func (s *BarSeries) Volumes() []float64 {
	return s.project(func(b Bar) float64 { return b.Volume })
}

func (s *BarSeries) Times() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, bar := range s.bars {
		out[i] = bar.Time
	}

	return out
}

func (s *BarSeries) project(field func(Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		out[i] = field(bar)
	}

	return out
}
