package signal

import (
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// Detect evaluates every rule on every bar. The result has one entry per bar.
func Detect(in Inputs, th Thresholds) []types.SignalFlags {
	flags := make([]types.SignalFlags, len(in.Closes))

	for i := range flags {
		flags[i] = DetectAt(in, i, th)
	}

	return flags
}

// DetectAt evaluates every rule on bar i.
func DetectAt(in Inputs, i int, th Thresholds) types.SignalFlags {
	var f types.SignalFlags

	for _, rule := range types.Rules() {
		if Evaluate(rule, in, i, Entry, th) {
			f.Entry = f.Entry.With(rule)
		}

		if Evaluate(rule, in, i, Exit, th) {
			f.Exit = f.Exit.With(rule)
		}
	}

	return f
}
