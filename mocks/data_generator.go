package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// DataGenerator generates realistic bars for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// Symbol is the instrument symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the timestamp of the first bar
	StartTime time.Time
	// Interval is the sampling interval of the series
	Interval types.Interval
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a year of daily bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       types.Interval1d,
		Count:          365,
		InitialPrice:   100.0,
		Volatility:     0.015,
		Trend:          0.0,
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates bars following a geometric Brownian motion. Every bar
// satisfies low <= open/close <= high.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime
	step := config.Interval.Duration()

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := g.rng.Float64() * config.Volatility * open * 0.5
		lowExtension := g.rng.Float64() * config.Volatility * open * 0.5

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.Bar{
			Time:   currentTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(closePrice, 4),
			Volume: roundToDecimals(volume, 2),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(step)
	}

	return bars
}

// GenerateSeries wraps Generate in a validated bar series.
func (g *DataGenerator) GenerateSeries(config GeneratorConfig) (*types.BarSeries, error) {
	return types.NewBarSeries(config.Symbol, config.Interval, g.Generate(config))
}

// LinearBars returns count daily bars whose close moves linearly from
// `from` to `to` with a constant volume. Open equals the previous close.
func LinearBars(start time.Time, count int, from, to, volume float64) []types.Bar {
	bars := make([]types.Bar, count)
	step := 0.0

	if count > 1 {
		step = (to - from) / float64(count-1)
	}

	prev := from

	for i := 0; i < count; i++ {
		closePrice := from + step*float64(i)
		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   prev,
			High:   math.Max(prev, closePrice) + 0.5,
			Low:    math.Min(prev, closePrice) - 0.5,
			Close:  closePrice,
			Volume: volume,
		}
		prev = closePrice
	}

	return bars
}

// BarsFromCloses builds daily bars from a close path and matching volumes.
// A nil volumes slice gives every bar a volume of 1000.
func BarsFromCloses(start time.Time, closes, volumes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}

		volume := 1000.0
		if volumes != nil {
			volume = volumes[i]
		}

		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   open,
			High:   math.Max(open, c) + 0.5,
			Low:    math.Min(open, c) - 0.5,
			Close:  c,
			Volume: volume,
		}
	}

	return bars
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
