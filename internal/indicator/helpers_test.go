package indicator

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/window"
	"github.com/rxtech-lab/argo-frvp/mocks"
)

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// floats turns optional values into pointers so expectations can use nil.
func floats(values []optional.Option[float64]) []*float64 {
	return types.IndicatorSeries{Values: values}.Pointers()
}

func ptr(v float64) *float64 {
	return &v
}

func generatedContext(count int, interval types.Interval) (IndicatorContext, error) {
	config := mocks.DefaultConfig()
	config.Count = count
	config.Interval = interval

	series, err := mocks.NewDataGenerator(42).GenerateSeries(config)
	if err != nil {
		return IndicatorContext{}, err
	}

	windows, err := window.Resolve(window.DefaultParams(), interval)
	if err != nil {
		return IndicatorContext{}, err
	}

	return IndicatorContext{Series: series, Windows: windows}, nil
}
