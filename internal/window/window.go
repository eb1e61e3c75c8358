// Package window converts day-based lookback parameters into bar counts for
// a given sampling interval, so a "50-day" average covers the same span of
// time on daily, hourly and minute bars.
package window

import (
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

const minutesPerDay = 1440

// DefaultOBVMean is the trailing bar count of the OBV mean used by the OBV
// rules. It is a bar count, not a day count, and is never converted.
const DefaultOBVMean = 20

// BarsFor returns floor(days*1440/minutesPerBar), at least 1. Only the
// interval can fail; a non-positive day count also yields 1.
func BarsFor(days int, interval types.Interval) (int, error) {
	minutes, ok := interval.Minutes()
	if !ok {
		return 0, errors.Newf(errors.ErrCodeUnsupportedInterval, "unsupported interval %q", string(interval))
	}

	bars := days * minutesPerDay / minutes
	if bars < 1 {
		bars = 1
	}

	return bars, nil
}

// Params are the day-based indicator lookbacks of one analysis.
type Params struct {
	MAShort    int `yaml:"ma_short" json:"ma_short" jsonschema:"title=Short moving average (days),default=50" validate:"gt=0"`
	MALong     int `yaml:"ma_long" json:"ma_long" jsonschema:"title=Long moving average (days),default=200" validate:"gt=0"`
	Bollinger  int `yaml:"bollinger" json:"bollinger" jsonschema:"title=Bollinger window (days),default=20" validate:"gt=0"`
	MACDFast   int `yaml:"macd_fast" json:"macd_fast" jsonschema:"title=MACD fast EMA (days),default=12" validate:"gt=0"`
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow" jsonschema:"title=MACD slow EMA (days),default=26" validate:"gtfield=MACDFast"`
	MACDSignal int `yaml:"macd_signal" json:"macd_signal" jsonschema:"title=MACD signal EMA (days),default=9" validate:"gt=0"`
	RSI        int `yaml:"rsi" json:"rsi" jsonschema:"title=RSI window (days),default=14" validate:"gt=0"`
	ADX        int `yaml:"adx" json:"adx" jsonschema:"title=ADX window (days),default=14" validate:"gt=0"`
}

// DefaultParams returns the conventional lookbacks.
func DefaultParams() Params {
	return Params{
		MAShort:    50,
		MALong:     200,
		Bollinger:  20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		RSI:        14,
		ADX:        14,
	}
}

// Windows are bar-count lookbacks resolved for a single interval. Every
// indicator of one analysis reads its window from the same Windows value.
type Windows struct {
	Interval   types.Interval
	MAShort    int
	MALong     int
	Bollinger  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	RSI        int
	ADX        int
	OBVMean    int
}

// Resolve converts every day-based parameter with BarsFor. A parameter
// that is not a positive number of days fails with InvalidPeriod.
func Resolve(params Params, interval types.Interval) (Windows, error) {
	if err := interval.Validate(); err != nil {
		return Windows{}, err
	}

	w := Windows{Interval: interval, OBVMean: DefaultOBVMean}

	conversions := []struct {
		name string
		days int
		dst  *int
	}{
		{"ma_short", params.MAShort, &w.MAShort},
		{"ma_long", params.MALong, &w.MALong},
		{"bollinger", params.Bollinger, &w.Bollinger},
		{"macd_fast", params.MACDFast, &w.MACDFast},
		{"macd_slow", params.MACDSlow, &w.MACDSlow},
		{"macd_signal", params.MACDSignal, &w.MACDSignal},
		{"rsi", params.RSI, &w.RSI},
		{"adx", params.ADX, &w.ADX},
	}

	for _, c := range conversions {
		if c.days <= 0 {
			return Windows{}, errors.Newf(errors.ErrCodeInvalidPeriod,
				"resolve %s window: lookback must be a positive number of days, got %d", c.name, c.days)
		}

		bars, err := BarsFor(c.days, interval)
		if err != nil {
			return Windows{}, errors.Wrapf(errors.GetCode(err), err, "resolve %s window", c.name)
		}

		*c.dst = bars
	}

	return w, nil
}

// WithOBVMean overrides the OBV mean window.
func (w Windows) WithOBVMean(bars int) Windows {
	if bars > 0 {
		w.OBVMean = bars
	}

	return w
}
