package provider

import (
	"fmt"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// polygonTimespan converts an interval to the Polygon aggregate multiplier and timespan.
func polygonTimespan(interval types.Interval) (int, models.Timespan, error) {
	switch interval {
	case types.Interval1m:
		return 1, models.Minute, nil
	case types.Interval2m:
		return 2, models.Minute, nil
	case types.Interval5m:
		return 5, models.Minute, nil
	case types.Interval30m:
		return 30, models.Minute, nil
	case types.Interval1h:
		return 1, models.Hour, nil
	case types.Interval1d:
		return 1, models.Day, nil
	case types.Interval1wk:
		return 1, models.Week, nil
	default:
		return 0, "", fmt.Errorf("unsupported interval for Polygon: %s", interval)
	}
}

// binanceInterval converts an interval to a Binance kline interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(interval types.Interval) (string, error) {
	switch interval {
	case types.Interval1m:
		return "1m", nil
	case types.Interval5m:
		return "5m", nil
	case types.Interval30m:
		return "30m", nil
	case types.Interval1h:
		return "1h", nil
	case types.Interval1d:
		return "1d", nil
	case types.Interval1wk:
		return "1w", nil
	default:
		return "", fmt.Errorf("unsupported interval for Binance: %s", interval)
	}
}
