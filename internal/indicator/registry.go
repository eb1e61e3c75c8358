package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// IndicatorRegistry manages all available indicators.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
	// ComputeAll runs every registered indicator against ctx.
	ComputeAll(ctx IndicatorContext) (*Set, error)
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates an empty registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding the full indicator set.
func NewDefaultRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()

	for _, indicator := range []Indicator{
		NewShortMA(),
		NewLongMA(),
		NewBollingerBands(),
		NewMACD(),
		NewRSI(),
		NewOBV(),
		NewADX(),
	} {
		// names are distinct, registration cannot fail
		_ = registry.RegisterIndicator(indicator)
	}

	return registry
}

// RegisterIndicator adds an indicator to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns the registered indicator names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}

func (r *IndicatorRegistryV1) ComputeAll(ctx IndicatorContext) (*Set, error) {
	if ctx.Series == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "indicator context has no bar series")
	}

	set := NewSet(ctx.Series.Len())

	for _, name := range r.ListIndicators() {
		indicator, err := r.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		series, err := indicator.Compute(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "compute %s", name)
		}

		if err := set.Add(series...); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// Compute runs the default indicator set over series.
func Compute(ctx IndicatorContext) (*Set, error) {
	return NewDefaultRegistry().ComputeAll(ctx)
}
