package marketdata

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// BarSource delivers the bar series of one instrument. Implementations
// return the whole series or an error, never a partial series.
type BarSource interface {
	Fetch(ctx context.Context, req FetchRequest) (*types.BarSeries, error)
}

// FetchRequest selects bars either by a Range ending now or by an explicit
// Start and optional End. Start takes precedence over Range.
type FetchRequest struct {
	Symbol   string
	Interval types.Interval
	Range    Range
	Start    optional.Option[time.Time]
	End      optional.Option[time.Time]
}

// Validate checks the request without resolving its time bounds.
func (r FetchRequest) Validate() error {
	if r.Symbol == "" {
		return errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	if err := r.Interval.Validate(); err != nil {
		return err
	}

	if r.Start.IsNone() && r.Range == "" {
		return errors.New(errors.ErrCodeMissingParameter, "either range or start is required")
	}

	return nil
}

// Bounds resolves the inclusive time window of the request at now.
func (r FetchRequest) Bounds(now time.Time) (start, end time.Time, err error) {
	end = now
	if r.End.IsSome() {
		end = r.End.Unwrap()
	}

	if r.Start.IsSome() {
		start = r.Start.Unwrap()
	} else {
		start, err = r.Range.Start(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.Newf(errors.ErrCodeInvalidRange,
			"start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return start, end, nil
}
