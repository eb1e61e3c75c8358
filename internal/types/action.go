package types

import (
	"encoding/json"
	"fmt"

	"github.com/moznion/go-optional"
)

type ActionKind string

const (
	ActionHold ActionKind = "hold"
	// ActionWait is kept in the label set for parity with the buy/sell/hold
	// labels of the source scripts. The two-state simulator never emits it.
	ActionWait ActionKind = "wait"
	ActionBuy  ActionKind = "buy"
	ActionSell ActionKind = "sell"
)

// TradeAction is the simulator output for one bar.
type TradeAction struct {
	Kind   ActionKind
	Reason optional.Option[Rule]
}

func Hold() TradeAction {
	return TradeAction{Kind: ActionHold, Reason: optional.None[Rule]()}
}

func Wait() TradeAction {
	return TradeAction{Kind: ActionWait, Reason: optional.None[Rule]()}
}

func Buy(reason Rule) TradeAction {
	return TradeAction{Kind: ActionBuy, Reason: optional.Some(reason)}
}

func Sell() TradeAction {
	return TradeAction{Kind: ActionSell, Reason: optional.None[Rule]()}
}

func (a TradeAction) IsBuy() bool {
	return a.Kind == ActionBuy
}

func (a TradeAction) IsSell() bool {
	return a.Kind == ActionSell
}

// Label renders the action the way the chart legend shows it, e.g.
// "buy (MACD cross)".
func (a TradeAction) Label() string {
	if a.Kind == ActionBuy && a.Reason.IsSome() {
		return fmt.Sprintf("buy (%s)", a.Reason.Unwrap())
	}

	return string(a.Kind)
}

func (a TradeAction) String() string {
	return a.Label()
}

func (a TradeAction) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind   ActionKind `json:"kind"`
		Reason *Rule      `json:"reason,omitempty"`
	}{Kind: a.Kind}

	if a.Reason.IsSome() {
		reason := a.Reason.Unwrap()
		out.Reason = &reason
	}

	return json.Marshal(out)
}

func (a TradeAction) MarshalYAML() (any, error) {
	return a.Label(), nil
}
