package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rxtech-lab/argo-frvp/internal/analysis"
	"github.com/rxtech-lab/argo-frvp/internal/logger"
	"github.com/rxtech-lab/argo-frvp/internal/server"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/version"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// sourceFlags select and configure the bar source.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML analysis config",
		},
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("Bar source to use (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
			Value:   string(marketdata.ProviderPolygon),
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Bar file for the duckdb and json providers",
		},
		&cli.StringFlag{
			Name:    "polygon-api-key",
			Usage:   "Polygon.io API key",
			Sources: cli.EnvVars("POLYGON_API_KEY"),
		},
		&cli.StringFlag{
			Name:  "binance-base-url",
			Usage: "Override of the Binance REST endpoint",
		},
		&cli.StringFlag{
			Name:  "interval",
			Usage: "Bar interval (1m, 2m, 5m, 30m, 1h, 1d, 1wk)",
		},
		&cli.StringFlag{
			Name:  "range",
			Usage: "Lookback ending now (1d, 5d, 1mo, 3mo, 6mo, ytd, 1y, 5y, max)",
		},
		&cli.TimestampFlag{
			Name:  "start",
			Usage: "Start date in `YYYY-MM-DD` format (or RFC3339). Overrides --range",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
			},
		},
		&cli.TimestampFlag{
			Name:  "end",
			Usage: "End date in `YYYY-MM-DD` format (or RFC3339). Defaults to now",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
			},
		},
		&cli.StringFlag{
			Name:  "display",
			Usage: "Comma separated indicators to show (ma_short, ma_long, bollinger, macd, rsi, obv, adx, all)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "frvp",
		Usage:   "Fixed range volume profile and indicator signal analysis",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Analyze one symbol and print the report",
				ArgsUsage: "SYMBOL",
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output format (render, yaml, json)",
						Value:   outputRender,
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write bars, displayed indicators and actions to this parquet file",
					},
				),
				Action: analyzeAction,
			},
			{
				Name:  "serve",
				Usage: "Serve analyses over HTTP",
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:  "address",
						Usage: "Listen address",
						Value: ":8080",
					},
				),
				Action: serveAction,
			},
			{
				Name:  "schema",
				Usage: "Write the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory",
						Value: "./config",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

// loadConfig reads --config (or the defaults) and applies the flags set on
// the command line over it.
func loadConfig(cmd *cli.Command) (analysis.Config, error) {
	config := analysis.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := analysis.LoadConfig(path)
		if err != nil {
			return analysis.Config{}, err
		}

		config = loaded
	}

	if cmd.IsSet("interval") {
		interval, err := types.ParseInterval(cmd.String("interval"))
		if err != nil {
			return analysis.Config{}, err
		}

		config.Interval = interval
	}

	if cmd.IsSet("range") {
		rng, err := marketdata.ParseRange(cmd.String("range"))
		if err != nil {
			return analysis.Config{}, err
		}

		config.Range = rng
	}

	if cmd.IsSet("start") {
		config.Start = someTime(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		config.End = someTime(cmd.Timestamp("end"))
	}

	if cmd.IsSet("display") {
		display, err := server.ParseDisplay(cmd.String("display"))
		if err != nil {
			return analysis.Config{}, err
		}

		config.Display = display
	}

	if cmd.IsSet("log-level") {
		config.LogLevel = cmd.String("log-level")
	}

	if config.Provider == nil || cmd.IsSet("provider") {
		config.Provider = &marketdata.ProviderConfig{Provider: marketdata.ProviderType(cmd.String("provider"))}
	}

	if cmd.IsSet("data") {
		config.Provider.DataPath = cmd.String("data")
	}

	if key := cmd.String("polygon-api-key"); key != "" {
		config.Provider.PolygonApiKey = key
	}

	if cmd.IsSet("binance-base-url") {
		config.Provider.BinanceBaseURL = cmd.String("binance-base-url")
	}

	if err := config.Validate(); err != nil {
		return analysis.Config{}, err
	}

	return config, nil
}

// newAnalyzer builds the logger, the bar source and the analyzer of config.
// Without a progress bar, fetch progress is logged at debug level instead.
func newAnalyzer(config analysis.Config, progressBar bool) (*analysis.Analyzer, *logger.Logger, error) {
	log, err := logger.NewLoggerWithOutput(config.LogLevel, "stderr")
	if err != nil {
		return nil, nil, err
	}

	var onProgress provider.OnFetchProgress
	if !progressBar {
		onProgress = func(current, total float64, message string) {
			log.Debug(message, zap.Float64("current", current), zap.Float64("total", total))
		}
	}

	source, err := marketdata.NewBarSource(*config.Provider, log, onProgress)
	if err != nil {
		return nil, nil, err
	}

	return analysis.NewAnalyzer(source, log), log, nil
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
