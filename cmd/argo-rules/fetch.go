package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/rxtech-lab/argo-rules/internal/config"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// fetchAction warms the cache with the requested symbols, or with every
// symbol the config's rules trade when none is given.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	symbols, err := fetchSymbols(cfg, cmd.StringSlice("symbol"))
	if err != nil {
		return err
	}

	cache, err := openCache(cfg, appLogger)
	if err != nil {
		return err
	}

	refresh := cmd.Bool("refresh")

	for _, symbol := range symbols {
		fetch := cache.GetSeries
		if refresh {
			fetch = cache.Refresh
		}

		series, err := fetch(ctx, symbol)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", symbol, err)
		}

		first, _ := series.First()
		last, _ := series.Last()

		appLogger.Info("Fetched series",
			zap.String("symbol", symbol),
			zap.Int("bars", series.Len()),
			zap.Time("first", first.Time),
			zap.Time("last", last.Time),
			zap.String("path", cache.Path(symbol)),
		)
	}

	return nil
}

func fetchSymbols(cfg *config.Config, requested []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, symbol := range requested {
		seen[marketdata.NormalizeSymbol(symbol)] = struct{}{}
	}

	if len(seen) == 0 {
		ruleList, err := cfg.BuildRules()
		if err != nil {
			return nil, fmt.Errorf("failed to build rules: %w", err)
		}

		for _, rule := range ruleList {
			for _, symbol := range rule.Requires() {
				seen[symbol] = struct{}{}
			}
		}
	}

	delete(seen, "")

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to fetch")
	}

	return symbols, nil
}
