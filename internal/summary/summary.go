// Package summary condenses one analysis run into counts, timestamps and
// last-bar indicator readings.
package summary

import (
	"time"

	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/signal"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Crossover classifies the MACD/signal relationship over the last two bars.
type Crossover string

const (
	CrossoverBullish          Crossover = "bullish crossover"
	CrossoverBearish          Crossover = "bearish crossover"
	CrossoverNone             Crossover = "no crossover"
	CrossoverInsufficientData Crossover = "insufficient data"
)

// Message is the sentence shown next to the MACD reading.
func (c Crossover) Message() string {
	switch c {
	case CrossoverBullish:
		return "Bullish signal: MACD crossed above the signal line."
	case CrossoverBearish:
		return "Bearish signal: MACD crossed below the signal line."
	case CrossoverNone:
		return "No crossover: The MACD and signal line have not crossed."
	default:
		return "Insufficient data to analyze MACD crossover."
	}
}

// Snapshot is the value of one indicator series at the last bar. Value is
// nil when that bar is still inside the indicator's lookback.
type Snapshot struct {
	Name  string   `json:"name" yaml:"name"`
	Value *float64 `json:"value" yaml:"value"`
}

// MACDReading is the last-bar MACD snapshot with its classification.
type MACDReading struct {
	MACD      *float64  `json:"macd" yaml:"macd"`
	Signal    *float64  `json:"signal" yaml:"signal"`
	Crossover Crossover `json:"crossover" yaml:"crossover"`
	Message   string    `json:"message" yaml:"message"`
}

// Summary is the immutable digest handed to presentation sinks.
type Summary struct {
	BuyCount  int            `json:"buy_count" yaml:"buy_count"`
	SellCount int            `json:"sell_count" yaml:"sell_count"`
	BuyTimes  []time.Time    `json:"buy_times" yaml:"buy_times"`
	SellTimes []time.Time    `json:"sell_times" yaml:"sell_times"`
	BuyRules  map[string]int `json:"buy_rules" yaml:"buy_rules"`
	Snapshots []Snapshot     `json:"snapshots" yaml:"snapshots"`
	MACD      MACDReading    `json:"macd" yaml:"macd"`
	Actions   map[string]int `json:"actions" yaml:"actions"`
}

// Summarize aggregates actions (one per bar of series) and snapshots the
// requested series names in the order given. It never modifies its inputs.
func Summarize(series *types.BarSeries, set *indicator.Set, actions []types.TradeAction, requested []string) (Summary, error) {
	in, err := signal.NewInputs(series, set)
	if err != nil {
		return Summary{}, err
	}

	if len(actions) != series.Len() {
		return Summary{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"got %d actions for %d bars", len(actions), series.Len())
	}

	s := Summary{
		BuyTimes:  make([]time.Time, 0),
		SellTimes: make([]time.Time, 0),
		BuyRules:  make(map[string]int),
		Actions:   make(map[string]int),
		Snapshots: make([]Snapshot, 0, len(requested)),
	}

	for i, action := range actions {
		s.Actions[string(action.Kind)]++

		switch action.Kind {
		case types.ActionBuy:
			s.BuyCount++
			s.BuyTimes = append(s.BuyTimes, series.At(i).Time)

			if action.Reason.IsSome() {
				s.BuyRules[action.Reason.Unwrap().Key()]++
			}
		case types.ActionSell:
			s.SellCount++
			s.SellTimes = append(s.SellTimes, series.At(i).Time)
		}
	}

	last := series.Len() - 1

	for _, name := range requested {
		snap := Snapshot{Name: name}
		if v, ok := set.Value(name, last); ok {
			snap.Value = &v
		}

		s.Snapshots = append(s.Snapshots, snap)
	}

	s.MACD = readMACD(in, last)

	return s, nil
}

func readMACD(in signal.Inputs, last int) MACDReading {
	var reading MACDReading

	if v, ok := in.Indicators.Value(types.SeriesMACD, last); ok {
		reading.MACD = &v
	}

	if v, ok := in.Indicators.Value(types.SeriesMACDSignal, last); ok {
		reading.Signal = &v
	}

	reading.Crossover = Classify(in, last)
	reading.Message = reading.Crossover.Message()

	return reading
}

// Classify compares MACD and its signal line on bars last-1 and last, using
// the same crossing rule as the signal detector.
func Classify(in signal.Inputs, last int) Crossover {
	if last < 1 {
		return CrossoverInsufficientData
	}

	for _, i := range []int{last - 1, last} {
		_, okM := in.Indicators.Value(types.SeriesMACD, i)
		_, okS := in.Indicators.Value(types.SeriesMACDSignal, i)

		if !okM || !okS {
			return CrossoverInsufficientData
		}
	}

	th := signal.DefaultThresholds()

	switch {
	case signal.Evaluate(types.RuleMacdCross, in, last, signal.Entry, th):
		return CrossoverBullish
	case signal.Evaluate(types.RuleMacdCross, in, last, signal.Exit, th):
		return CrossoverBearish
	default:
		return CrossoverNone
	}
}
