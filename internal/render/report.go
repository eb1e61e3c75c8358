// Package render turns an analysis result into the text report shown in
// the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-frvp/internal/analysis"
	"github.com/rxtech-lab/argo-frvp/internal/summary"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

// Line is one "label: value" row of the report. A Line without a label is
// free text.
type Line struct {
	Label string
	Value string
}

func (l Line) String() string {
	if l.Label == "" {
		return l.Value
	}

	return l.Label + ": " + l.Value
}

// Section is a titled group of lines.
type Section struct {
	Title string
	Lines []Line
}

// Sections builds the report content of result. Indicator rows follow the
// display flags of cfg.
func Sections(result *analysis.Result, cfg analysis.Config) []Section {
	return []Section{
		priceSection(result),
		indicatorSection(result, cfg),
		signalSection(result),
		outlookSection(result),
	}
}

func priceSection(result *analysis.Result) Section {
	lines := []Line{{Label: "Most Recent Close Price", Value: currentPrice(result)}}

	if result.Profile == nil {
		lines = append(lines, Line{Label: "Volume Profile", Value: result.ProfileError})
	} else {
		lines = append(lines,
			Line{Label: "Point of Control (PoC)", Value: formatPrice(result.Profile.PoC)},
			Line{Label: "Value Area High (VAH)", Value: formatPrice(result.Profile.VAH)},
			Line{Label: "Value Area Low (VAL)", Value: formatPrice(result.Profile.VAL)},
		)
	}

	return Section{Title: fmt.Sprintf("%s (%s)", result.Symbol, result.Interval), Lines: lines}
}

func currentPrice(result *analysis.Result) string {
	if n := len(result.Bars); n > 1 {
		return FormatPriceWithDirection(result.CurrentPrice, result.Bars[n-2].Close)
	}

	return formatPrice(result.CurrentPrice)
}

func indicatorSection(result *analysis.Result, cfg analysis.Config) Section {
	lines := make([]Line, 0)

	for _, snap := range result.Summary.Snapshots {
		label, ok := snapshotLabel(snap.Name, cfg)
		if !ok {
			continue
		}

		lines = append(lines, Line{Label: label, Value: formatOptional(snap.Value)})
	}

	if cfg.Display.MACD {
		lines = append(lines, macdLines(result.Summary.MACD)...)
	}

	return Section{Title: "Indicators", Lines: lines}
}

// snapshotLabel names a displayed series. The MACD series are reported
// together by macdLines.
func snapshotLabel(name string, cfg analysis.Config) (string, bool) {
	switch name {
	case types.SeriesMAShort:
		return fmt.Sprintf("%d-day Moving Average", cfg.Windows.MAShort), true
	case types.SeriesMALong:
		return fmt.Sprintf("%d-day Moving Average", cfg.Windows.MALong), true
	case types.SeriesBBUpper:
		return "Upper Bollinger Band", true
	case types.SeriesBBMiddle:
		return "Middle Bollinger Band", true
	case types.SeriesBBLower:
		return "Lower Bollinger Band", true
	case types.SeriesRSI:
		return fmt.Sprintf("RSI (%d-day)", cfg.Windows.RSI), true
	case types.SeriesOBV:
		return "On-Balance Volume", true
	case types.SeriesOBVMean:
		return fmt.Sprintf("OBV Mean (%d bars)", cfg.OBVMean), true
	case types.SeriesADX:
		return fmt.Sprintf("ADX (%d-day)", cfg.Windows.ADX), true
	default:
		return "", false
	}
}

func macdLines(reading summary.MACDReading) []Line {
	if reading.MACD == nil || reading.Signal == nil {
		return []Line{{Label: "MACD", Value: "n/a"}, {Value: reading.Message}}
	}

	return []Line{
		{Value: fmt.Sprintf("MACD: %.2f, Signal Line: %.2f", *reading.MACD, *reading.Signal)},
		{Value: reading.Message},
	}
}

func signalSection(result *analysis.Result) Section {
	s := result.Summary

	lines := []Line{
		{Label: "Number of Buy Signals", Value: fmt.Sprintf("%d", s.BuyCount)},
		{Label: "Number of Sell Signals", Value: fmt.Sprintf("%d", s.SellCount)},
	}

	rules := make([]string, 0)

	for _, rule := range types.Rules() {
		if n := s.BuyRules[rule.Key()]; n > 0 {
			rules = append(rules, fmt.Sprintf("%s %d", rule, n))
		}
	}

	if len(rules) > 0 {
		lines = append(lines, Line{Label: "Buy Rules", Value: strings.Join(rules, ", ")})
	}

	lines = append(lines,
		Line{Label: "Buy Signals", Value: formatTimes(s.BuyTimes)},
		Line{Label: "Sell Signals", Value: formatTimes(s.SellTimes)},
		Line{Label: "Position", Value: result.FinalState.String()},
	)

	return Section{Title: "Signals", Lines: lines}
}

func outlookSection(result *analysis.Result) Section {
	entries := "none"

	if len(result.EntryLevels) > 0 {
		prices := make([]string, len(result.EntryLevels))
		for i, p := range result.EntryLevels {
			prices[i] = formatPrice(p)
		}

		entries = strings.Join(prices, ", ")
	}

	lines := []Line{{Label: "Potential Entry Points", Value: entries}}

	if result.Outlook != nil {
		lines = append(lines, Line{Value: result.Outlook.Message})
	}

	return Section{Title: "Outlook", Lines: lines}
}

// Text renders result without styling, one line per row.
func Text(result *analysis.Result, cfg analysis.Config) string {
	var b strings.Builder

	for _, section := range Sections(result, cfg) {
		for _, line := range section.Lines {
			b.WriteString(line.String())
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// Report writes the styled report to w. Colours are dropped when w is not
// a terminal.
func Report(w io.Writer, result *analysis.Result, cfg analysis.Config) error {
	st := newStyles(lipgloss.NewRenderer(w))

	blocks := make([]string, 0)

	for _, section := range Sections(result, cfg) {
		if len(section.Lines) == 0 {
			continue
		}

		rows := []string{st.title.Render(section.Title)}

		for _, line := range section.Lines {
			rows = append(rows, styleLine(st, line))
		}

		blocks = append(blocks, st.panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}

	blocks = append(blocks, st.help.Render(fmt.Sprintf("run %s at %s", result.RunID, result.GeneratedAt.Format(time.RFC3339))))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))

	return err
}

// ReportError writes a styled error message, e.g. for an empty series.
func ReportError(w io.Writer, err error) error {
	st := newStyles(lipgloss.NewRenderer(w))
	_, werr := fmt.Fprintln(w, st.err.Render(err.Error()))

	return werr
}

func styleLine(st styles, line Line) string {
	if line.Label == "" {
		return line.Value
	}

	value := line.Value

	switch line.Label {
	case "Buy Signals":
		value = st.buy.Render(value)
	case "Sell Signals":
		value = st.sell.Render(value)
	}

	return st.label.Render(line.Label+":") + " " + value
}

func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}

	return decimal.NewFromFloat(*v).Round(4).String()
}

func formatTimes(times []time.Time) string {
	if len(times) == 0 {
		return "none"
	}

	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Format(timeLayout)
	}

	return strings.Join(out, ", ")
}
