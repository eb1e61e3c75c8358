package provider

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/tidwall/gjson"
)

// dateLayouts are the timestamp formats accepted in bar files, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// JSONFileSource reads bars from a JSON file in the Financial Modeling Prep
// layout: either a top level array of bars or an object holding the array
// under "historical". Each bar has date, open, high, low, close, volume.
// An optional per-bar "symbol" field filters the rows.
type JSONFileSource struct {
	path string
}

func NewJSONFileSource(path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("data path is required")
	}

	return &JSONFileSource{path: path}, nil
}

func (s *JSONFileSource) Type() ProviderType {
	return ProviderJSON
}

// Fetch implements Provider.
func (s *JSONFileSource) Fetch(ctx context.Context, query Query) ([]types.Bar, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading bar file with path '%s': %w", s.path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("bar file '%s' is not valid JSON", s.path)
	}

	return ParseBars(gjson.ParseBytes(data), query)
}

// ParseBars extracts the bars of query from parsed JSON, sorted by time.
func ParseBars(doc gjson.Result, query Query) ([]types.Bar, error) {
	rows := doc
	if doc.IsObject() {
		rows = doc.Get("historical")
	}

	if !rows.IsArray() {
		return nil, fmt.Errorf("no bar array found")
	}

	bars := make([]types.Bar, 0)

	for idx, row := range rows.Array() {
		if symbol := row.Get("symbol"); symbol.Exists() && symbol.String() != query.Symbol {
			continue
		}

		ts, err := parseDate(row.Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("parsing date of bar %d: %w", idx, err)
		}

		if ts.Before(query.Start) || ts.After(query.End) {
			continue
		}

		bars = append(bars, types.Bar{
			Time:   ts,
			Open:   row.Get("open").Float(),
			High:   row.Get("high").Float(),
			Low:    row.Get("low").Float(),
			Close:  row.Get("close").Float(),
			Volume: row.Get("volume").Float(),
		})
	}

	// FMP lists the newest bar first
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	return bars, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
