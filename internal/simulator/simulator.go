package simulator

import (
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// Result is the action sequence of one run and the state it ended in. A
// position still open at the last bar stays open.
type Result struct {
	Actions    []types.TradeAction
	FinalState State
}

// Run starts Flat and steps through flags. An empty input yields an empty
// action sequence.
func Run(flags []types.SignalFlags) Result {
	state := Flat
	actions := make([]types.TradeAction, len(flags))

	for i, f := range flags {
		state, actions[i] = Step(state, f)
	}

	return Result{Actions: actions, FinalState: state}
}
