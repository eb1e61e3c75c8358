package types

import (
	"fmt"
	"time"
)

// Rule identifies one entry/exit rule of the signal detector.
type Rule int

const (
	RuleMacdCross Rule = iota
	RuleRsi
	RuleBollinger
	RuleObv
	RuleAdx
)

// Rules returns every rule in priority order. A Buy fired by several rules
// on the same bar is labeled with the first of them in this list.
func Rules() []Rule {
	return []Rule{RuleMacdCross, RuleRsi, RuleBollinger, RuleObv, RuleAdx}
}

// String returns the human readable rule name used in action labels.
func (r Rule) String() string {
	switch r {
	case RuleMacdCross:
		return "MACD cross"
	case RuleRsi:
		return "RSI"
	case RuleBollinger:
		return "Bollinger Bands"
	case RuleObv:
		return "OBV"
	case RuleAdx:
		return "ADX"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// Key returns the machine name used in JSON and config.
func (r Rule) Key() string {
	switch r {
	case RuleMacdCross:
		return "macd_cross"
	case RuleRsi:
		return "rsi"
	case RuleBollinger:
		return "bollinger"
	case RuleObv:
		return "obv"
	case RuleAdx:
		return "adx"
	default:
		return "unknown"
	}
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.Key()), nil
}

func (r *Rule) UnmarshalText(text []byte) error {
	for _, rule := range Rules() {
		if rule.Key() == string(text) {
			*r = rule

			return nil
		}
	}

	return fmt.Errorf("unknown rule %q", string(text))
}

// RuleSet is a set of rules that fired on one bar.
type RuleSet uint8

func (s RuleSet) With(r Rule) RuleSet {
	return s | 1<<uint(r)
}

func (s RuleSet) Has(r Rule) bool {
	return s&(1<<uint(r)) != 0
}

func (s RuleSet) Any() bool {
	return s != 0
}

// First returns the highest-priority rule in the set.
func (s RuleSet) First() (Rule, bool) {
	for _, r := range Rules() {
		if s.Has(r) {
			return r, true
		}
	}

	return 0, false
}

// Rules lists the members in priority order.
func (s RuleSet) Rules() []Rule {
	var out []Rule

	for _, r := range Rules() {
		if s.Has(r) {
			out = append(out, r)
		}
	}

	return out
}

// SignalFlags holds the entry and exit rules that fired on one bar.
type SignalFlags struct {
	Entry RuleSet
	Exit  RuleSet
}

// FirstEntry returns the entry rule used to label a Buy on this bar.
func (f SignalFlags) FirstEntry() (Rule, bool) {
	return f.Entry.First()
}

type SignalType string

const (
	// SignalTypeBuyLong opens the single long position
	SignalTypeBuyLong SignalType = "buy_long"
	// SignalTypeSellLong closes it
	SignalTypeSellLong SignalType = "sell_long"
)

// Signal describes why a position changed on a bar.
type Signal struct {
	Time   time.Time
	Type   SignalType
	Rule   Rule
	Reason string
	Symbol string
}
