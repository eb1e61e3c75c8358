// Package simulator replays signal flags through a single-position state
// machine and emits one trade action per bar.
package simulator

import (
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// State is the position state of the simulator.
type State int

const (
	// Flat holds no position. It is the initial state.
	Flat State = iota
	// InPosition holds exactly one open position.
	InPosition
)

func (s State) String() string {
	switch s {
	case Flat:
		return "flat"
	case InPosition:
		return "in_position"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// transition is the behaviour of one state on one bar.
type transition func(flags types.SignalFlags) (State, types.TradeAction)

var transitions = map[State]transition{
	Flat:       fromFlat,
	InPosition: fromInPosition,
}

// fromFlat opens a position on any entry signal, labeled with the entry
// rule of highest priority. Exit signals are ignored while flat.
func fromFlat(flags types.SignalFlags) (State, types.TradeAction) {
	if rule, ok := flags.FirstEntry(); ok {
		return InPosition, types.Buy(rule)
	}

	return Flat, types.Hold()
}

// fromInPosition closes the position on any exit signal. Entry signals are
// ignored while a position is open.
func fromInPosition(flags types.SignalFlags) (State, types.TradeAction) {
	if flags.Exit.Any() {
		return Flat, types.Sell()
	}

	return InPosition, types.Hold()
}

// Step applies one bar of flags to state.
func Step(state State, flags types.SignalFlags) (State, types.TradeAction) {
	next, ok := transitions[state]
	if !ok {
		return state, types.Hold()
	}

	return next(flags)
}
