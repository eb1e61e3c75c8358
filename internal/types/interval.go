package types

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Interval is the sampling interval of a bar series.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval2m  Interval = "2m"
	Interval5m  Interval = "5m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
)

var intervalMinutes = map[Interval]int{
	Interval1m:  1,
	Interval2m:  2,
	Interval5m:  5,
	Interval30m: 30,
	Interval1h:  60,
	Interval1d:  1440,
	Interval1wk: 10080,
}

// SupportedIntervals returns every interval in ascending order of bar length.
func SupportedIntervals() []Interval {
	return []Interval{Interval1m, Interval2m, Interval5m, Interval30m, Interval1h, Interval1d, Interval1wk}
}

// Minutes returns the number of minutes one bar spans. ok is false for an
// interval outside the supported set.
func (i Interval) Minutes() (minutes int, ok bool) {
	minutes, ok = intervalMinutes[i]

	return minutes, ok
}

// Duration returns the bar length, or zero for an unsupported interval.
func (i Interval) Duration() time.Duration {
	minutes, ok := i.Minutes()
	if !ok {
		return 0
	}

	return time.Duration(minutes) * time.Minute
}

// Validate returns an UnsupportedInterval error when i is not a known interval.
func (i Interval) Validate() error {
	if _, ok := i.Minutes(); !ok {
		return errors.Newf(errors.ErrCodeUnsupportedInterval, "unsupported interval %q", string(i))
	}

	return nil
}

func (i Interval) String() string {
	return string(i)
}

// ParseInterval normalizes s (case and surrounding spaces) and validates it.
func ParseInterval(s string) (Interval, error) {
	interval := Interval(strings.ToLower(strings.TrimSpace(s)))
	if err := interval.Validate(); err != nil {
		return "", err
	}

	return interval, nil
}
