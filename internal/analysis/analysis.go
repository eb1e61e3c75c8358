// Package analysis runs one complete pass over a bar series: indicators,
// signals, the trade simulation, the volume profile and the summary.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-frvp/internal/indicator"
	"github.com/rxtech-lab/argo-frvp/internal/logger"
	"github.com/rxtech-lab/argo-frvp/internal/marker"
	"github.com/rxtech-lab/argo-frvp/internal/profile"
	"github.com/rxtech-lab/argo-frvp/internal/signal"
	"github.com/rxtech-lab/argo-frvp/internal/simulator"
	"github.com/rxtech-lab/argo-frvp/internal/summary"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/window"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata"
	"go.uber.org/zap"
)

// Result is the record of one analysis run handed to presentation sinks.
type Result struct {
	RunID        string         `json:"run_id" yaml:"run_id"`
	Symbol       string         `json:"symbol" yaml:"symbol"`
	Interval     types.Interval `json:"interval" yaml:"interval"`
	GeneratedAt  time.Time      `json:"generated_at" yaml:"generated_at"`
	CurrentPrice float64        `json:"current_price" yaml:"current_price"`
	// Profile is nil when the series carries no volume; ProfileError then
	// holds the reason.
	Profile      *profile.Result `json:"profile" yaml:"profile"`
	ProfileError string          `json:"profile_error,omitempty" yaml:"profile_error,omitempty"`
	EntryLevels  []float64       `json:"entry_levels" yaml:"entry_levels"`
	// Outlook is nil when the series is too short for it.
	Outlook    *profile.Outlook        `json:"outlook" yaml:"outlook"`
	Summary    summary.Summary         `json:"summary" yaml:"summary"`
	Indicators []types.IndicatorSeries `json:"indicators" yaml:"indicators"`
	Bars       []types.Bar             `json:"bars" yaml:"bars"`
	Actions    []types.TradeAction     `json:"actions" yaml:"actions"`
	Marks      []types.Mark            `json:"marks" yaml:"marks"`
	FinalState simulator.State         `json:"final_state" yaml:"final_state"`

	// Set is the full indicator set, including series that are not displayed.
	Set *indicator.Set `json:"-" yaml:"-"`
}

// Analyzer fetches bars from a source and runs the pipeline over them.
// It holds no per-run state, so one Analyzer may serve concurrent runs.
type Analyzer struct {
	source marketdata.BarSource
	logger *logger.Logger
	now    func() time.Time
}

func NewAnalyzer(source marketdata.BarSource, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNop()
	}

	return &Analyzer{source: source, logger: log.Named("analysis"), now: time.Now}
}

// Run fetches the series for symbol and analyzes it. A cancelled context
// yields an error and no result.
func (a *Analyzer) Run(ctx context.Context, symbol string, cfg Config) (*Result, error) {
	if err := cfg.Interval.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a.logger.Debug("Fetching bars",
		zap.String("symbol", symbol),
		zap.String("interval", string(cfg.Interval)),
		zap.String("range", string(cfg.Range)),
	)

	series, err := a.source.Fetch(fetchCtx, cfg.FetchRequest(symbol))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.ErrCodeCanceled, "analysis cancelled", ctxErr)
		}

		return nil, err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, "analysis cancelled", ctxErr)
	}

	if series == nil || series.IsEmpty() {
		return nil, errors.New(errors.ErrCodeEmptySeries, "No data found for the given range and interval.")
	}

	result, err := a.Analyze(series, cfg)
	if err != nil {
		return nil, err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, "analysis cancelled", ctxErr)
	}

	a.logger.Info("Analysis finished",
		zap.String("run_id", result.RunID),
		zap.String("symbol", result.Symbol),
		zap.Int("bars", len(result.Bars)),
		zap.Int("buys", result.Summary.BuyCount),
		zap.Int("sells", result.Summary.SellCount),
	)

	return result, nil
}

// Analyze runs the pipeline over an already fetched series.
func (a *Analyzer) Analyze(series *types.BarSeries, cfg Config) (*Result, error) {
	if series == nil || series.IsEmpty() {
		return nil, errors.New(errors.ErrCodeEmptySeries, "No data found for the given range and interval.")
	}

	windows, err := window.Resolve(cfg.Windows, series.Interval())
	if err != nil {
		return nil, err
	}

	windows = windows.WithOBVMean(cfg.OBVMean)

	set, err := indicator.Compute(indicator.IndicatorContext{Series: series, Windows: windows})
	if err != nil {
		return nil, err
	}

	in, err := signal.NewInputs(series, set)
	if err != nil {
		return nil, err
	}

	run := simulator.Run(signal.Detect(in, cfg.Thresholds))

	displayed := cfg.Display.Series()

	digest, err := summary.Summarize(series, set, run.Actions, displayed)
	if err != nil {
		return nil, err
	}

	marks, err := marker.MarkActions(marker.NewChartMarker(series.Symbol()), series, run.Actions)
	if err != nil {
		return nil, err
	}

	last, _ := series.Last()

	result := &Result{
		RunID:        uuid.New().String(),
		Symbol:       series.Symbol(),
		Interval:     series.Interval(),
		GeneratedAt:  a.now().UTC(),
		CurrentPrice: last.Close,
		EntryLevels:  make([]float64, 0),
		Summary:      digest,
		Indicators:   make([]types.IndicatorSeries, 0, len(displayed)),
		Bars:         series.Bars(),
		Actions:      run.Actions,
		Marks:        marks,
		FinalState:   run.FinalState,
		Set:          set,
	}

	for _, name := range displayed {
		if one, ok := set.Get(name); ok {
			result.Indicators = append(result.Indicators, one)
		}
	}

	if err := a.profile(series, cfg, result); err != nil {
		return nil, err
	}

	outlook, err := profile.AnalyzeOutlook(series, profile.DefaultOutlookOptions())

	switch {
	case err == nil:
		result.Outlook = &outlook
	case errors.IsInsufficientDataError(err):
		a.logger.Debug("Skipping outlook", zap.Error(err))
	default:
		return nil, err
	}

	return result, nil
}

// profile fills the volume profile and the entry levels. A series without
// volume is not an error for the run as a whole.
func (a *Analyzer) profile(series *types.BarSeries, cfg Config, result *Result) error {
	opts := cfg.ProfileOptions()

	volume, err := profile.Analyze(series, opts)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNoVolumeData) {
			a.logger.Warn("Volume profile unavailable", zap.String("symbol", series.Symbol()), zap.Error(err))
			result.ProfileError = err.Error()

			return nil
		}

		return err
	}

	result.Profile = &volume

	market, err := profile.MarketProfile(series, opts)
	if err != nil {
		return err
	}

	result.EntryLevels = profile.EntryLevels(volume.Levels, market)

	return nil
}
