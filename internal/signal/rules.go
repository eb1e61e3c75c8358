// Package signal evaluates the entry and exit rules on every bar of an
// indicator set.
package signal

import (
	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
)

// Side selects the entry or the exit form of a rule.
type Side int

const (
	Entry Side = iota
	Exit
)

// Thresholds are the oscillator levels the rules compare against.
type Thresholds struct {
	RSIOversold   float64 `yaml:"rsi_oversold" json:"rsi_oversold" jsonschema:"title=RSI oversold level,default=30" validate:"gte=0,lte=100"`
	RSIOverbought float64 `yaml:"rsi_overbought" json:"rsi_overbought" jsonschema:"title=RSI overbought level,default=70" validate:"gte=0,lte=100,gtfield=RSIOversold"`
	ADXTrend      float64 `yaml:"adx_trend" json:"adx_trend" jsonschema:"title=ADX trend strength level,default=25" validate:"gte=0,lte=100"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{RSIOversold: 30, RSIOverbought: 70, ADXTrend: 25}
}

// Inputs are the per-bar values the rules read.
type Inputs struct {
	Closes     []float64
	Indicators *indicator.Set
}

// NewInputs pairs a bar series with its indicator set.
func NewInputs(series *types.BarSeries, set *indicator.Set) (Inputs, error) {
	if series == nil || set == nil {
		return Inputs{}, errors.New(errors.ErrCodeMissingParameter, "signal inputs need a bar series and an indicator set")
	}

	if series.Len() != set.Len() {
		return Inputs{}, errors.Newf(errors.ErrCodeIndicatorCalculation,
			"indicator set has %d bars, series has %d", set.Len(), series.Len())
	}

	return Inputs{Closes: series.Closes(), Indicators: set}, nil
}

func (in Inputs) value(name string, i int) (float64, bool) {
	return in.Indicators.Value(name, i)
}

func (in Inputs) closeAt(i int) (float64, bool) {
	if i < 0 || i >= len(in.Closes) {
		return 0, false
	}

	return in.Closes[i], true
}

type evaluator func(in Inputs, i int, side Side, th Thresholds) bool

var evaluators = map[types.Rule]evaluator{
	types.RuleMacdCross: macdCross,
	types.RuleRsi:       rsiLevel,
	types.RuleBollinger: bollingerCross,
	types.RuleObv:       obvVersusMean,
	types.RuleAdx:       adxLevel,
}

// Evaluate reports whether rule fires on bar i. A rule whose inputs are
// undefined at i (or at i-1 for crossover rules) does not fire.
func Evaluate(rule types.Rule, in Inputs, i int, side Side, th Thresholds) bool {
	eval, ok := evaluators[rule]
	if !ok {
		return false
	}

	return eval(in, i, side, th)
}

// crossed reports a cross of a over b between bars i-1 and i: upward when
// a goes from <= b to > b, downward when it goes from >= b to < b.
func crossed(prevA, prevB, curA, curB float64, upward bool) bool {
	if upward {
		return prevA <= prevB && curA > curB
	}

	return prevA >= prevB && curA < curB
}

func macdCross(in Inputs, i int, side Side, _ Thresholds) bool {
	prevM, ok1 := in.value(types.SeriesMACD, i-1)
	prevS, ok2 := in.value(types.SeriesMACDSignal, i-1)
	curM, ok3 := in.value(types.SeriesMACD, i)
	curS, ok4 := in.value(types.SeriesMACDSignal, i)

	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}

	return crossed(prevM, prevS, curM, curS, side == Entry)
}

func rsiLevel(in Inputs, i int, side Side, th Thresholds) bool {
	rsi, ok := in.value(types.SeriesRSI, i)
	if !ok {
		return false
	}

	if side == Entry {
		return rsi < th.RSIOversold
	}

	return rsi > th.RSIOverbought
}

// bollingerCross fires when the close moves from strictly above the lower
// band to below it (entry), or from strictly below the upper band to above
// it (exit).
func bollingerCross(in Inputs, i int, side Side, _ Thresholds) bool {
	band := types.SeriesBBLower
	if side == Exit {
		band = types.SeriesBBUpper
	}

	prevC, ok1 := in.closeAt(i - 1)
	prevB, ok2 := in.value(band, i-1)
	curC, ok3 := in.closeAt(i)
	curB, ok4 := in.value(band, i)

	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}

	if side == Entry {
		return prevC > prevB && curC < curB
	}

	return prevC < prevB && curC > curB
}

func obvVersusMean(in Inputs, i int, side Side, _ Thresholds) bool {
	obv, ok1 := in.value(types.SeriesOBV, i)
	mean, ok2 := in.value(types.SeriesOBVMean, i)

	if !ok1 || !ok2 {
		return false
	}

	if side == Entry {
		return obv > mean
	}

	return obv < mean
}

func adxLevel(in Inputs, i int, side Side, th Thresholds) bool {
	adx, ok := in.value(types.SeriesADX, i)
	if !ok {
		return false
	}

	if side == Entry {
		return adx > th.ADXTrend
	}

	return adx < th.ADXTrend
}
