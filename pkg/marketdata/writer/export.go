package writer

import (
	"fmt"

	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// ExportChart writes one row per bar of series with the named indicator
// columns and the action label, then finalizes w. w is always closed.
func ExportChart(w MarketDataWriter, series *types.BarSeries, set *indicator.Set, columns []string, actions []types.TradeAction) (outputPath string, err error) {
	if len(actions) != series.Len() {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "got %d actions for %d bars", len(actions), series.Len())
	}

	indicators := make([]types.IndicatorSeries, len(columns))

	for i, name := range columns {
		s, ok := set.Get(name)
		if !ok {
			return "", errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator series %s not computed", name)
		}

		indicators[i] = s
	}

	if err = w.Initialize(columns); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "error closing writer", cerr)
		}
	}()

	for i, bar := range series.Bars() {
		row := ChartRow{
			Time:   bar.Time,
			Symbol: series.Symbol(),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
			Values: make([]*float64, len(indicators)),
			Action: actions[i].Label(),
		}

		for j, s := range indicators {
			if v, ok := s.At(i); ok {
				row.Values[j] = &v
			}
		}

		if err = w.Write(row); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, fmt.Sprintf("failed to write bar %d", i), err)
		}
	}

	outputPath, err = w.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return outputPath, nil
}
