package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ValuePoint is the portfolio valuation at the close of one trading day.
type ValuePoint struct {
	Time  time.Time `yaml:"time" json:"time"`
	Cash  float64   `yaml:"cash" json:"cash"`
	Value float64   `yaml:"value" json:"value"`
}

type CashFlows struct {
	// Deposits made by deposit rules.
	Deposits float64 `yaml:"deposits"`
	// Withdrawals made by withdraw rules, as a positive number.
	Withdrawals float64 `yaml:"withdrawals"`
	// Dividends credited by the dividends rule.
	Dividends float64 `yaml:"dividends"`
	// Interest credited by the cash interest rule.
	Interest float64 `yaml:"interest"`
}

type RuleStats struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`
	// Fired counts the trading days the rule executed on.
	Fired int `yaml:"fired" json:"fired"`
	// Remaining is the remaining count after the run, -1 for infinite rules.
	Remaining int `yaml:"remaining" json:"remaining"`
}

type SimulationResult struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	StartDate time.Time `yaml:"start_date" json:"start_date"`
	EndDate   time.Time `yaml:"end_date" json:"end_date"`
	// Number of trading days simulated.
	TradingDays int     `yaml:"trading_days" json:"trading_days"`
	InitialCash float64 `yaml:"initial_cash" json:"initial_cash"`
	FinalCash   float64 `yaml:"final_cash" json:"final_cash"`
	FinalValue  float64 `yaml:"final_value" json:"final_value"`
	// Holdings at the end of the run, in shares.
	Holdings  map[string]int `yaml:"holdings" json:"holdings"`
	CashFlows CashFlows      `yaml:"cash_flows" json:"cash_flows"`
	// Count of buy and sell transactions.
	NumberOfTrades int     `yaml:"number_of_trades" json:"number_of_trades"`
	TotalFees      float64 `yaml:"total_fees" json:"total_fees"`
	// Maximum peak to trough decline of the portfolio value, as a fraction.
	MaxDrawdown float64     `yaml:"max_drawdown" json:"max_drawdown"`
	Rules       []RuleStats `yaml:"rules" json:"rules"`
	// TransactionsFilePath is the path to the transactions parquet file.
	TransactionsFilePath string `yaml:"transactions_file_path,omitempty" json:"transactions_file_path,omitempty"`
	// History is written separately by WriteValueHistory.
	History []ValuePoint `yaml:"-" json:"-"`
}

// MaxDrawdown returns the largest peak to trough decline of the value
// history, as a fraction of the peak.
func MaxDrawdown(points []ValuePoint) float64 {
	peak := 0.0
	maxDrawdown := 0.0

	for _, point := range points {
		if point.Value > peak {
			peak = point.Value
		}

		if peak <= 0 {
			continue
		}

		if drawdown := (peak - point.Value) / peak; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

func WriteSimulationResult(path string, result SimulationResult) error {
	yamlData, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal simulation result: %w", err)
	}

	return os.WriteFile(path, yamlData, 0644)
}

func WriteValueHistory(path string, points []ValuePoint) error {
	yamlData, err := yaml.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to marshal value history: %w", err)
	}

	return os.WriteFile(path, yamlData, 0644)
}

// ReadSimulationResult reads a result previously written by WriteSimulationResult.
func ReadSimulationResult(path string) (SimulationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("failed to read simulation result: %w", err)
	}

	var result SimulationResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return SimulationResult{}, fmt.Errorf("failed to unmarshal simulation result: %w", err)
	}

	return result, nil
}
