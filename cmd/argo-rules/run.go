package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/config"
	"github.com/rxtech-lab/argo-rules/internal/engine"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runAction loads the config, runs the simulation and writes the results folder.
func runAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	ruleList, err := cfg.BuildRules()
	if err != nil {
		return fmt.Errorf("failed to build rules: %w", err)
	}

	cache, err := openCache(cfg, appLogger)
	if err != nil {
		return err
	}

	simulator := engine.New(cfg, ruleList, cache, engine.WithLogger(appLogger.Named("engine")))
	defer simulator.Close()

	var bar *progressbar.ProgressBar

	onStart := engine.OnSimulationStartCallback(func(runID string, totalDays int, totalRules int) error {
		bar = progressbar.NewOptions(totalDays,
			progressbar.OptionSetDescription(fmt.Sprintf("Simulating %s", cfg.Name)),
			progressbar.OptionShowCount(),
		)

		return nil
	})
	onDay := engine.OnDayCallback(func(current int, total int, day time.Time, value float64) error {
		return bar.Set(current)
	})
	onEnd := engine.OnSimulationEndCallback(func(err error) {
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			appLogger.Error("Simulation failed", zap.Error(err))
		}
	})

	result, err := simulator.Run(ctx, engine.LifecycleCallbacks{
		OnSimulationStart: &onStart,
		OnDay:             &onDay,
		OnSimulationEnd:   &onEnd,
	})
	if err != nil {
		return err
	}

	resultsFolder := cmd.String("results")
	if err := simulator.WriteResults(resultsFolder); err != nil {
		return err
	}

	fmt.Printf("\n%s: %d trading days from %s to %s\n", cfg.Name, result.TradingDays,
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	fmt.Printf("final value %.2f (cash %.2f), max drawdown %.2f%%, %d trades\n",
		result.FinalValue, result.FinalCash, result.MaxDrawdown*100, result.NumberOfTrades)
	fmt.Printf("results written to %s\n", resultsFolder)

	return nil
}
