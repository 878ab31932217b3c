package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-rules/internal/config"
	"github.com/rxtech-lab/argo-rules/internal/logger"
	"github.com/rxtech-lab/argo-rules/internal/version"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

var configFlag = &cli.StringFlag{
	Name:     "config",
	Aliases:  []string{"c"},
	Usage:    "Path to the simulation config `FILE`",
	Required: true,
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "Log debug entries in a human readable format",
}

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("verbose") {
		return logger.NewDevelopmentLogger()
	}

	return logger.NewLogger()
}

// openCache opens the series cache of cfg and reports downloads on a progress bar.
// The polygon key falls back to POLYGON_API_KEY.
func openCache(cfg *config.Config, appLogger *logger.Logger) (*marketdata.SeriesCache, error) {
	cacheConfig := cfg.Data
	if cacheConfig.ProviderType == provider.ProviderPolygon && cacheConfig.PolygonApiKey == "" {
		cacheConfig.PolygonApiKey = os.Getenv("POLYGON_API_KEY")
	}

	return marketdata.NewSeriesCache(cacheConfig,
		marketdata.WithLogger(appLogger.Named("cache")),
		marketdata.WithProgress(newDownloadProgress()),
	)
}

// newDownloadProgress renders provider progress reports on a terminal progress bar.
func newDownloadProgress() provider.OnDownloadProgress {
	var bar *progressbar.ProgressBar

	return func(current, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions64(int64(total),
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		if int64(total) != bar.GetMax64() {
			bar.ChangeMax64(int64(total))
		}

		bar.Describe(message)
		_ = bar.Set64(int64(current))

		if current >= total {
			_ = bar.Finish()
			bar = nil
		}
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "argo-rules",
		Usage:   "Simulate a portfolio driven by scheduled rules",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the simulation described by a config file",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"r"},
						Usage:   "Folder the results are written to",
						Value:   "results",
					},
					verboseFlag,
				},
				Action: runAction,
			},
			{
				Name:  "fetch",
				Usage: "Download market data into the cache",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringSliceFlag{
						Name:    "symbol",
						Aliases: []string{"s"},
						Usage:   "Symbol to fetch, repeatable. Defaults to every symbol the rules use",
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Download again even if the symbol is cached",
					},
					verboseFlag,
				},
				Action: fetchAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the config file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					schema, err := config.GenerateSchemaJSON()
					if err != nil {
						return fmt.Errorf("failed to generate schema: %w", err)
					}

					fmt.Println(schema)

					return nil
				},
			},
			{
				Name:  "providers",
				Usage: "List the supported market data providers",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, name := range marketdata.GetSupportedProviders() {
						info, _ := marketdata.GetProviderInfo(name)
						fmt.Printf("%-10s %s\n", info.Name, info.Description)
					}

					return nil
				},
			},
			{
				Name:  "version",
				Usage: "Print the engine version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println(version.GetVersion())

					return nil
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
