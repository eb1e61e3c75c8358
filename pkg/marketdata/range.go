package marketdata

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Range is a lookback period ending now.
type Range string

const (
	Range1D  Range = "1d"
	Range5D  Range = "5d"
	Range1MO Range = "1mo"
	Range3MO Range = "3mo"
	Range6MO Range = "6mo"
	RangeYTD Range = "ytd"
	Range1Y  Range = "1y"
	Range5Y  Range = "5y"
	RangeMax Range = "max"
)

// SupportedRanges returns the ranges in increasing length.
func SupportedRanges() []Range {
	return []Range{Range1D, Range5D, Range1MO, Range3MO, Range6MO, RangeYTD, Range1Y, Range5Y, RangeMax}
}

// ParseRange accepts a range name in any case.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if _, err := r.Start(time.Now()); err != nil {
		return "", err
	}

	return r, nil
}

// Start returns the first instant covered by r when the range ends at now.
// RangeMax starts at the Unix epoch.
func (r Range) Start(now time.Time) (time.Time, error) {
	switch r {
	case Range1D:
		return now.AddDate(0, 0, -1), nil
	case Range5D:
		return now.AddDate(0, 0, -5), nil
	case Range1MO:
		return now.AddDate(0, -1, 0), nil
	case Range3MO:
		return now.AddDate(0, -3, 0), nil
	case Range6MO:
		return now.AddDate(0, -6, 0), nil
	case RangeYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	case Range1Y:
		return now.AddDate(-1, 0, 0), nil
	case Range5Y:
		return now.AddDate(-5, 0, 0), nil
	case RangeMax:
		return time.Unix(0, 0).UTC(), nil
	default:
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidRange, "unsupported range %q", string(r))
	}
}
