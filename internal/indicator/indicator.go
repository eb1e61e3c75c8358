package indicator

import (
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/window"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// IndicatorContext is the input every indicator computes from. Windows is
// resolved once per analysis so all indicators share one conversion.
type IndicatorContext struct {
	Series  *types.BarSeries
	Windows window.Windows
}

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Compute returns the bar-aligned series produced by the indicator
	Compute(ctx IndicatorContext) ([]types.IndicatorSeries, error)
}

// Set holds every computed series of one analysis, keyed by series name.
// All series have the length of the bar series they were computed from.
type Set struct {
	length int
	series map[string]types.IndicatorSeries
}

func NewSet(length int) *Set {
	return &Set{length: length, series: make(map[string]types.IndicatorSeries)}
}

// Add stores series, rejecting any whose length differs from the set.
func (s *Set) Add(series ...types.IndicatorSeries) error {
	for _, one := range series {
		if one.Len() != s.length {
			return errors.Newf(errors.ErrCodeIndicatorCalculation,
				"series %s has %d values, expected %d", one.Name, one.Len(), s.length)
		}

		s.series[one.Name] = one
	}

	return nil
}

func (s *Set) Len() int {
	return s.length
}

func (s *Set) Get(name string) (types.IndicatorSeries, bool) {
	one, ok := s.series[name]

	return one, ok
}

// Value returns series name at bar i. ok is false for a missing series or
// an undefined value.
func (s *Set) Value(name string, i int) (float64, bool) {
	one, ok := s.series[name]
	if !ok {
		return 0, false
	}

	return one.At(i)
}

// Names returns the stored series names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.series))
	for name := range s.series {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func some(values []float64) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))
	for i, v := range values {
		out[i] = optional.Some(v)
	}

	return out
}

func none(n int) []optional.Option[float64] {
	out := make([]optional.Option[float64], n)
	for i := range out {
		out[i] = optional.None[float64]()
	}

	return out
}
