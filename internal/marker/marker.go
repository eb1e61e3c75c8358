package marker

import (
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Marker is a marker that can be used to mark a bar with the trade action taken on it
type Marker interface {
	// Mark a bar with an action. Hold and Wait leave no marker.
	Mark(index int, bar types.Bar, action types.TradeAction) error
	// GetMarkers returns all the markers in bar order
	GetMarkers() ([]types.Mark, error)
}

// ChartMarker keeps markers in memory for one analysis run.
type ChartMarker struct {
	mu     sync.Mutex
	symbol string
	marks  []types.Mark
}

func NewChartMarker(symbol string) *ChartMarker {
	return &ChartMarker{symbol: symbol, marks: make([]types.Mark, 0)}
}

func (m *ChartMarker) Mark(index int, bar types.Bar, action types.TradeAction) error {
	if index < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "negative bar index %d", index)
	}

	var mark types.Mark

	switch action.Kind {
	case types.ActionBuy:
		if action.Reason.IsNone() {
			return errors.New(errors.ErrCodeMissingParameter, "buy action without a reason")
		}

		rule := action.Reason.Unwrap()
		mark = types.Mark{
			Color:    types.MarkColorGreen,
			Shape:    types.MarkShapeTriangle,
			Title:    action.Label(),
			Category: rule.Key(),
			Signal: optional.Some(types.Signal{
				Time:   bar.Time,
				Type:   types.SignalTypeBuyLong,
				Rule:   rule,
				Reason: rule.String(),
				Symbol: m.symbol,
			}),
		}
	case types.ActionSell:
		mark = types.Mark{
			Color:    types.MarkColorRed,
			Shape:    types.MarkShapeTriangle,
			Title:    action.Label(),
			Category: string(types.ActionSell),
			Signal: optional.Some(types.Signal{
				Time:   bar.Time,
				Type:   types.SignalTypeSellLong,
				Symbol: m.symbol,
			}),
		}
	default:
		return nil
	}

	mark.BarIndex = index
	mark.Time = bar.Time
	mark.Price = bar.Close

	m.mu.Lock()
	defer m.mu.Unlock()

	m.marks = append(m.marks, mark)

	return nil
}

func (m *ChartMarker) GetMarkers() ([]types.Mark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Mark, len(m.marks))
	copy(out, m.marks)

	return out, nil
}

// MarkActions marks every Buy and Sell of actions on the matching bar of series.
func MarkActions(marker Marker, series *types.BarSeries, actions []types.TradeAction) ([]types.Mark, error) {
	if len(actions) != series.Len() {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"got %d actions for %d bars", len(actions), series.Len())
	}

	for i, action := range actions {
		if err := marker.Mark(i, series.At(i), action); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "mark bar %d", i)
		}
	}

	return marker.GetMarkers()
}
