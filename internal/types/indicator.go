package types

import (
	"encoding/json"

	"github.com/moznion/go-optional"
)

type IndicatorType string

const (
	IndicatorTypeMAShort        IndicatorType = "ma_short"
	IndicatorTypeMALong         IndicatorType = "ma_long"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeOBV            IndicatorType = "obv"
	IndicatorTypeADX            IndicatorType = "adx"
)

// AllIndicatorTypes lists every indicator the engine computes, in display order.
func AllIndicatorTypes() []IndicatorType {
	return []IndicatorType{
		IndicatorTypeMAShort,
		IndicatorTypeMALong,
		IndicatorTypeBollingerBands,
		IndicatorTypeMACD,
		IndicatorTypeRSI,
		IndicatorTypeOBV,
		IndicatorTypeADX,
	}
}

// Names of the bar-aligned series produced by the indicators.
const (
	SeriesMAShort       = "ma_short"
	SeriesMALong        = "ma_long"
	SeriesBBUpper       = "bb_upper"
	SeriesBBMiddle      = "bb_middle"
	SeriesBBLower       = "bb_lower"
	SeriesMACD          = "macd"
	SeriesMACDSignal    = "macd_signal"
	SeriesMACDHistogram = "macd_histogram"
	SeriesRSI           = "rsi"
	SeriesOBV           = "obv"
	SeriesOBVMean       = "obv_mean"
	SeriesADX           = "adx"
)

// IndicatorSeries is a named sequence of optional values aligned with a bar
// series: Values[i] belongs to bar i and is None inside a lookback run-in.
type IndicatorSeries struct {
	Name   string
	Values []optional.Option[float64]
}

// NewIndicatorSeries wraps fully defined values.
func NewIndicatorSeries(name string, values []float64) IndicatorSeries {
	out := make([]optional.Option[float64], len(values))
	for i, v := range values {
		out[i] = optional.Some(v)
	}

	return IndicatorSeries{Name: name, Values: out}
}

func (s IndicatorSeries) Len() int {
	return len(s.Values)
}

// At returns the value at bar i. ok is false when i is out of range or the
// value is undefined.
func (s IndicatorSeries) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Values) || s.Values[i].IsNone() {
		return 0, false
	}

	return s.Values[i].Unwrap(), true
}

// Last returns the value at the final bar.
func (s IndicatorSeries) Last() (float64, bool) {
	return s.At(len(s.Values) - 1)
}

// Pointers returns the values with nil for undefined entries.
func (s IndicatorSeries) Pointers() []*float64 {
	out := make([]*float64, len(s.Values))
	for i := range s.Values {
		if v, ok := s.At(i); ok {
			out[i] = &v
		}
	}

	return out
}

func (s IndicatorSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string     `json:"name"`
		Values []*float64 `json:"values"`
	}{Name: s.Name, Values: s.Pointers()})
}

func (s IndicatorSeries) MarshalYAML() (any, error) {
	return struct {
		Name   string     `yaml:"name"`
		Values []*float64 `yaml:"values,flow"`
	}{Name: s.Name, Values: s.Pointers()}, nil
}
