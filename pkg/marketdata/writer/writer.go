package writer

import (
	"time"
)

// ChartRow is one bar of the chart export: the bar itself, the displayed
// indicator values (nil when undefined) and the trade action label.
type ChartRow struct {
	Time   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// Values is aligned with the indicator columns passed to Initialize.
	Values []*float64
	Action string
}

// MarketDataWriter defines the interface for writing chart data to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer with one extra DOUBLE column per indicator name.
	Initialize(indicatorColumns []string) error
	// Write persists a single chart row.
	Write(row ChartRow) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
