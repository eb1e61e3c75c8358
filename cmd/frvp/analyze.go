package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/analysis"
	"github.com/rxtech-lab/argo-frvp/internal/logger"
	"github.com/rxtech-lab/argo-frvp/internal/render"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata/writer"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	outputRender = "render"
	outputYAML   = "yaml"
	outputJSON   = "json"
)

func someTime(t time.Time) optional.Option[time.Time] {
	return optional.Some(t)
}

// analyzeAction runs one analysis and writes it in the requested format.
func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	symbol := strings.ToUpper(strings.TrimSpace(cmd.Args().First()))
	if symbol == "" {
		return errors.New(errors.ErrCodeMissingParameter, "SYMBOL argument is required")
	}

	output := cmd.String("output")
	if output != outputRender && output != outputYAML && output != outputJSON {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown output format %q", output)
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	analyzer, log, err := newAnalyzer(config, true)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	out := cmd.Root().Writer

	result, err := analyzer.Run(ctx, symbol, config)
	if err != nil {
		if output == outputRender && errors.HasCode(err, errors.ErrCodeEmptySeries) {
			return render.ReportError(out, err)
		}

		return err
	}

	if path := cmd.String("export"); path != "" {
		if err := export(path, result, config, log); err != nil {
			return err
		}
	}

	return writeResult(out, output, result, config)
}

// export writes the displayed columns, or every column when nothing is
// displayed, to a parquet file.
func export(path string, result *analysis.Result, config analysis.Config, log *logger.Logger) error {
	series, err := types.NewBarSeries(result.Symbol, result.Interval, result.Bars)
	if err != nil {
		return err
	}

	columns := config.Display.Series()
	if len(columns) == 0 {
		columns = result.Set.Names()
	}

	outputPath, err := writer.ExportChart(writer.NewDuckDBWriter(path, log), series, result.Set, columns, result.Actions)
	if err != nil {
		return err
	}

	log.Info("Chart data exported", zap.String("path", outputPath), zap.Int("columns", len(columns)))

	return nil
}

func writeResult(w io.Writer, output string, result *analysis.Result, config analysis.Config) error {
	switch output {
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()

		return encoder.Encode(result)
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	default:
		if err := render.Report(w, result, config); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}

		return nil
	}
}
