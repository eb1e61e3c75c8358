package profile

import (
	"fmt"

	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

type Trend string

const (
	TrendUpward   Trend = "upward"
	TrendDownward Trend = "downward"
)

// OutlookOptions are bar counts, not day counts.
type OutlookOptions struct {
	ShortWindow int
	LongWindow  int
	RangeWindow int
}

func DefaultOutlookOptions() OutlookOptions {
	return OutlookOptions{ShortWindow: 10, LongWindow: 30, RangeWindow: 14}
}

// Outlook is a trend reading with range-based price targets.
type Outlook struct {
	Trend        Trend   `json:"trend" yaml:"trend"`
	CurrentPrice float64 `json:"current_price" yaml:"current_price"`
	// Range is max(close) - min(close) over the last RangeWindow bars.
	Range      float64 `json:"range" yaml:"range"`
	BuyTarget  float64 `json:"buy_target" yaml:"buy_target"`
	SellTarget float64 `json:"sell_target" yaml:"sell_target"`
	Message    string  `json:"message" yaml:"message"`
}

// AnalyzeOutlook compares the short and long closing averages at the last
// bar and places buy/sell targets one range below/above the last close.
func AnalyzeOutlook(series *types.BarSeries, opts OutlookOptions) (Outlook, error) {
	if series == nil || series.IsEmpty() {
		return Outlook{}, errors.New(errors.ErrCodeEmptySeries, "outlook needs at least one bar")
	}

	if opts.ShortWindow <= 0 || opts.LongWindow <= 0 || opts.RangeWindow <= 0 {
		return Outlook{}, errors.Newf(errors.ErrCodeInvalidPeriod, "outlook windows must be positive, got %+v", opts)
	}

	closes := series.Closes()
	need := max(opts.LongWindow, opts.ShortWindow, opts.RangeWindow)

	if len(closes) < need {
		return Outlook{}, errors.NewInsufficientDataErrorf(need, len(closes), series.Symbol(), "outlook for %s", series.Symbol())
	}

	last := len(closes) - 1
	short := indicator.SMA(closes, opts.ShortWindow)[last].Unwrap()
	long := indicator.SMA(closes, opts.LongWindow)[last].Unwrap()

	trend := TrendDownward
	if short > long {
		trend = TrendUpward
	}

	window := closes[len(closes)-opts.RangeWindow:]
	hi, lo := window[0], window[0]

	for _, c := range window[1:] {
		hi = max(hi, c)
		lo = min(lo, c)
	}

	price := closes[last]
	spread := hi - lo

	outlook := Outlook{
		Trend:        trend,
		CurrentPrice: price,
		Range:        spread,
		BuyTarget:    price - spread,
		SellTarget:   price + spread,
	}

	if trend == TrendUpward {
		outlook.Message = fmt.Sprintf(
			"You should consider buying the stock at $%.2f and aim to sell near $%.2f, aligning with the upward trend.",
			outlook.BuyTarget, outlook.SellTarget)
	} else {
		outlook.Message = fmt.Sprintf(
			"You should consider selling the stock at $%.2f and aim to rebuy near $%.2f, aligning with the downward trend.",
			outlook.SellTarget, outlook.BuyTarget)
	}

	return outlook, nil
}
