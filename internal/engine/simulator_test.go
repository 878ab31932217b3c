package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rules/internal/config"
	"github.com/rxtech-lab/argo-rules/internal/portfolio"
	"github.com/rxtech-lab/argo-rules/internal/rules"
	"github.com/rxtech-lab/argo-rules/internal/schedule"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/mocks"
	argoErrors "github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SimulatorTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockSeriesProvider
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func (suite *SimulatorTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockSeriesProvider(suite.ctrl)
}

func (suite *SimulatorTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func day(s string) time.Time {
	return types.MustParseDay(s)
}

func freq(descriptor string) schedule.Frequency {
	return schedule.MustParseFrequency(descriptor)
}

func testConfig(initialCash float64, start string, end string) *config.Config {
	return &config.Config{
		Name:        "test",
		InitialCash: initialCash,
		Start:       day(start),
		End:         optional.Some(day(end)),
	}
}

// flatSeries closes at price on every business day of [from, to].
func flatSeries(symbol string, from string, to string, price float64, dividends map[string]float64) types.Series {
	var bars []types.Bar

	for d := day(from); !d.After(day(to)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}

		bars = append(bars, types.Bar{
			Symbol:   symbol,
			Time:     d,
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			AdjClose: price,
			Dividend: dividends[d.Format(types.DateFormat)],
		})
	}

	return types.NewSeries(symbol, bars)
}

func (suite *SimulatorTestSuite) expectSeries(symbols []string, series ...types.Series) {
	suite.mockProvider.EXPECT().
		JoinSeries(gomock.Any(), symbols, types.FieldClose).
		Return(types.JoinSeries(types.FieldClose, series...), nil)
	suite.mockProvider.EXPECT().
		JoinSeries(gomock.Any(), symbols, types.FieldDividend).
		Return(types.JoinSeries(types.FieldDividend, series...), nil)
}

func (suite *SimulatorTestSuite) mustRule(rule *rules.Rule, err error) *rules.Rule {
	suite.Require().NoError(err)

	return rule
}

func (suite *SimulatorTestSuite) TestRunMonthlySavingsPlan() {
	horizon := rules.WithScheduleOptions(schedule.WithHorizon(day("2020-03-31")))
	ruleList := []*rules.Rule{
		suite.mustRule(rules.NewDeposit(day("2020-01-01"), freq("BMS"), 3, 3000)),
		suite.mustRule(rules.NewBuy(day("2020-01-01"), freq("BMS"), 3, "SPY", 30)),
		suite.mustRule(rules.NewDividends(horizon)),
	}

	suite.expectSeries([]string{"SPY"},
		flatSeries("SPY", "2020-01-01", "2020-03-31", 100, map[string]float64{"2020-02-14": 1}))

	var (
		startDays  int
		startRules int
		days       int
		lastValue  float64
		firedRules []string
		endErr     = errors.New("not called")
	)

	onStart := OnSimulationStartCallback(func(runID string, totalDays int, totalRules int) error {
		suite.NotEmpty(runID)
		startDays = totalDays
		startRules = totalRules

		return nil
	})
	onDay := OnDayCallback(func(current int, total int, d time.Time, value float64) error {
		days++
		suite.Equal(days, current)
		lastValue = value

		return nil
	})
	onRuleFired := OnRuleFiredCallback(func(d time.Time, ruleName string) error {
		if ruleName != "dividends" {
			firedRules = append(firedRules, d.Format(types.DateFormat)+" "+ruleName)
		}

		return nil
	})
	onEnd := OnSimulationEndCallback(func(err error) {
		endErr = err
	})

	simulator := New(testConfig(0, "2020-01-01", "2020-03-31"), ruleList, suite.mockProvider,
		WithJournal(portfolio.NewMemoryJournal()))

	result, err := simulator.Run(context.Background(), LifecycleCallbacks{
		OnSimulationStart: &onStart,
		OnDay:             &onDay,
		OnRuleFired:       &onRuleFired,
		OnSimulationEnd:   &onEnd,
	})
	suite.Require().NoError(err)

	suite.Equal(65, startDays)
	suite.Equal(3, startRules)
	suite.Equal(65, days)
	suite.NoError(endErr)
	suite.Equal([]string{
		"2020-01-01 deposit 3000",
		"2020-01-01 buy SPY",
		"2020-02-03 deposit 3000",
		"2020-02-03 buy SPY",
		"2020-03-02 deposit 3000",
		"2020-03-02 buy SPY",
	}, firedRules)

	suite.Equal(65, result.TradingDays)
	suite.Equal(day("2020-01-01"), result.StartDate)
	suite.Equal(day("2020-03-31"), result.EndDate)
	suite.Equal(map[string]int{"SPY": 30}, result.Holdings)
	suite.InDelta(20.0, result.FinalCash, 1e-9)
	suite.InDelta(3020.0, result.FinalValue, 1e-9)
	suite.InDelta(3020.0, lastValue, 1e-9)
	suite.InDelta(3000.0, result.CashFlows.Deposits, 1e-9)
	suite.InDelta(20.0, result.CashFlows.Dividends, 1e-9)
	suite.Equal(3, result.NumberOfTrades)
	suite.Len(result.History, 65)
	suite.Equal(0.0, result.MaxDrawdown)

	suite.Equal(types.RuleStats{Name: "deposit 3000", Kind: "deposit", Fired: 3, Remaining: 0}, result.Rules[0])
	suite.Equal(types.RuleStats{Name: "dividends", Kind: "dividends", Fired: 65, Remaining: -1}, result.Rules[2])
	suite.Same(result, simulator.Result())
}

func (suite *SimulatorTestSuite) TestRunRulesInInsertionOrder() {
	// the buy runs before the deposit funds it
	ruleList := []*rules.Rule{
		suite.mustRule(rules.NewBuy(day("2020-01-06"), freq("B"), 1, "SPY", 10)),
		suite.mustRule(rules.NewDeposit(day("2020-01-06"), freq("B"), 1, 1000)),
	}

	suite.expectSeries([]string{"SPY"}, flatSeries("SPY", "2020-01-06", "2020-01-10", 100, nil))

	simulator := New(testConfig(0, "2020-01-06", "2020-01-10"), ruleList, suite.mockProvider,
		WithJournal(portfolio.NewMemoryJournal()))

	_, err := simulator.Run(context.Background(), LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.Equal(argoErrors.ErrCodeSimulationRuleFailed, argoErrors.GetCode(err))
	suite.True(argoErrors.HasCodeInChain(err, argoErrors.ErrCodeInsufficientCash))
	suite.Contains(err.Error(), "buy SPY")
	suite.Contains(err.Error(), "2020-01-06")
}

func (suite *SimulatorTestSuite) TestRunMixedCalendars() {
	// BTC trades every day, SPY on weekdays only
	var btcBars []types.Bar
	for d := day("2020-01-01"); !d.After(day("2020-01-10")); d = d.AddDate(0, 0, 1) {
		btcBars = append(btcBars, types.Bar{Symbol: "BTC", Time: d, Open: 7000, High: 7000, Low: 7000, Close: 7000, AdjClose: 7000})
	}

	ruleList := []*rules.Rule{
		suite.mustRule(rules.NewBuy(day("2020-01-01"), freq("D"), 10, "SPY", 10)),
		suite.mustRule(rules.NewClosePosition(day("2020-01-01"), freq("D"), 1, "BTC")),
	}

	suite.expectSeries([]string{"BTC", "SPY"},
		types.NewSeries("BTC", btcBars),
		flatSeries("SPY", "2020-01-01", "2020-01-10", 100, nil))

	simulator := New(testConfig(1000, "2020-01-01", "2020-01-10"), ruleList, suite.mockProvider,
		WithJournal(portfolio.NewMemoryJournal()))

	result, err := simulator.Run(context.Background(), LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(10, result.TradingDays)
	// no purchase on 2020-01-04 and 2020-01-05
	suite.Equal(8, simulator.Ledger().Position("SPY"))
	suite.Equal(8, result.NumberOfTrades)
	suite.InDelta(200.0, simulator.Ledger().Cash(), 1e-9)
	suite.InDelta(1000.0, result.FinalValue, 1e-9)
}

func (suite *SimulatorTestSuite) TestRunAttributesTransactions() {
	journal := portfolio.NewMemoryJournal()
	ruleList := []*rules.Rule{
		suite.mustRule(rules.NewDeposit(day("2020-01-06"), freq("B"), 1, 1000, rules.WithName("salary"))),
		suite.mustRule(rules.NewBuy(day("2020-01-07"), freq("B"), 1, "SPY", 5)),
	}

	suite.expectSeries([]string{"SPY"}, flatSeries("SPY", "2020-01-06", "2020-01-10", 100, nil))

	simulator := New(testConfig(0, "2020-01-06", "2020-01-10"), ruleList, suite.mockProvider, WithJournal(journal))
	_, err := simulator.Run(context.Background(), LifecycleCallbacks{})
	suite.Require().NoError(err)

	transactions, err := journal.Transactions()
	suite.Require().NoError(err)
	suite.Require().Len(transactions, 2)
	suite.Equal("salary", transactions[0].Rule)
	suite.Equal(day("2020-01-06"), transactions[0].Time)
	suite.Equal("buy SPY", transactions[1].Rule)
	suite.Equal(day("2020-01-07"), transactions[1].Time)
	suite.Equal(500.0, simulator.Ledger().Cash())
}

func (suite *SimulatorTestSuite) TestRunErrors() {
	suite.Run("no rules", func() {
		var endErr error
		onEnd := OnSimulationEndCallback(func(err error) { endErr = err })

		simulator := New(testConfig(0, "2020-01-01", "2020-12-31"), nil, suite.mockProvider)
		_, err := simulator.Run(context.Background(), LifecycleCallbacks{OnSimulationEnd: &onEnd})
		suite.Equal(argoErrors.ErrCodeSimulationNoRules, argoErrors.GetCode(err))
		suite.Equal(err, endErr)
	})

	suite.Run("no symbols", func() {
		ruleList := []*rules.Rule{suite.mustRule(rules.NewDeposit(day("2020-01-01"), freq("B"), 1, 10))}

		simulator := New(testConfig(0, "2020-01-01", "2020-12-31"), ruleList, suite.mockProvider)
		_, err := simulator.Run(context.Background(), LifecycleCallbacks{})
		suite.Equal(argoErrors.ErrCodeSimulationNoData, argoErrors.GetCode(err))
	})

	suite.Run("provider failure", func() {
		ruleList := []*rules.Rule{suite.mustRule(rules.NewBuy(day("2020-01-01"), freq("B"), 1, "SPY", 1))}
		cause := argoErrors.New(argoErrors.ErrCodeMarketDataFetchFailed, "offline")

		suite.mockProvider.EXPECT().
			JoinSeries(gomock.Any(), []string{"SPY"}, types.FieldClose).
			Return(nil, cause)

		simulator := New(testConfig(0, "2020-01-01", "2020-12-31"), ruleList, suite.mockProvider)
		_, err := simulator.Run(context.Background(), LifecycleCallbacks{})
		suite.Equal(argoErrors.ErrCodeSimulationNoData, argoErrors.GetCode(err))
		suite.True(argoErrors.HasCodeInChain(err, argoErrors.ErrCodeMarketDataFetchFailed))
	})

	suite.Run("no trading days in period", func() {
		ruleList := []*rules.Rule{suite.mustRule(rules.NewBuy(day("2021-01-01"), freq("B"), 1, "SPY", 1))}
		suite.expectSeries([]string{"SPY"}, flatSeries("SPY", "2020-01-01", "2020-01-31", 100, nil))

		simulator := New(testConfig(0, "2021-01-01", "2021-12-31"), ruleList, suite.mockProvider)
		_, err := simulator.Run(context.Background(), LifecycleCallbacks{})
		suite.Equal(argoErrors.ErrCodeSimulationNoData, argoErrors.GetCode(err))
	})
}

func (suite *SimulatorTestSuite) TestRunCancelled() {
	ruleList := []*rules.Rule{suite.mustRule(rules.NewBuy(day("2020-01-01"), freq("B"), 1, "SPY", 1))}
	suite.expectSeries([]string{"SPY"}, flatSeries("SPY", "2020-01-01", "2020-01-31", 100, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	simulator := New(testConfig(100, "2020-01-01", "2020-01-31"), ruleList, suite.mockProvider,
		WithJournal(portfolio.NewMemoryJournal()))
	_, err := simulator.Run(ctx, LifecycleCallbacks{})
	suite.Equal(argoErrors.ErrCodeSimulationCancelled, argoErrors.GetCode(err))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *SimulatorTestSuite) TestCallbackAbortsRun() {
	ruleList := []*rules.Rule{suite.mustRule(rules.NewBuy(day("2020-01-01"), freq("B"), 1, "SPY", 1))}
	suite.expectSeries([]string{"SPY"}, flatSeries("SPY", "2020-01-01", "2020-01-31", 100, nil))

	days := 0
	onDay := OnDayCallback(func(current int, total int, d time.Time, value float64) error {
		days++
		if current == 2 {
			return errors.New("stop")
		}

		return nil
	})

	simulator := New(testConfig(100, "2020-01-01", "2020-01-31"), ruleList, suite.mockProvider,
		WithJournal(portfolio.NewMemoryJournal()))
	_, err := simulator.Run(context.Background(), LifecycleCallbacks{OnDay: &onDay})
	suite.Equal(argoErrors.ErrCodeCallbackFailed, argoErrors.GetCode(err))
	suite.Equal(2, days)
	suite.Nil(simulator.Result())
}

func (suite *SimulatorTestSuite) TestWriteResults() {
	ruleList := []*rules.Rule{
		suite.mustRule(rules.NewBuy(day("2020-01-06"), freq("W-MON"), 2, "SPY", 20)),
		suite.mustRule(rules.NewClosePosition(day("2020-01-17"), freq("B"), 2, "SPY")),
	}
	suite.expectSeries([]string{"SPY"}, flatSeries("SPY", "2020-01-06", "2020-01-31", 50, nil))

	timestamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	simulator := New(testConfig(1000, "2020-01-06", "2020-01-31"), ruleList, suite.mockProvider,
		WithClock(func() time.Time { return timestamp }))
	defer simulator.Close()

	suite.Error(simulator.WriteResults(suite.T().TempDir()))

	result, err := simulator.Run(context.Background(), LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(4, result.NumberOfTrades)
	suite.InDelta(1000.0, result.FinalCash, 1e-9)
	suite.Empty(result.Holdings)

	dir := filepath.Join(suite.T().TempDir(), "results")
	suite.Require().NoError(simulator.WriteResults(dir))

	for _, name := range []string{StatsFileName, HistoryFileName, TransactionsFileName} {
		_, err := os.Stat(filepath.Join(dir, name))
		suite.NoError(err, name)
	}

	stats, err := types.ReadSimulationResult(filepath.Join(dir, StatsFileName))
	suite.Require().NoError(err)
	suite.Equal(result.ID, stats.ID)
	suite.True(timestamp.Equal(stats.Timestamp))
	suite.Equal(20, stats.TradingDays)
	suite.Equal(filepath.Join(dir, TransactionsFileName), stats.TransactionsFilePath)
	suite.Len(stats.Rules, 2)
}

func (suite *SimulatorTestSuite) TestBalanceNeverBorrowsOnGeneratedData() {
	gen := mocks.NewDataGenerator(7)
	base := mocks.DefaultConfig()
	base.Days = 252
	series := gen.GenerateMultiSymbol([]string{"BND", "SPY"}, base)

	ruleList := []*rules.Rule{
		suite.mustRule(rules.NewDeposit(day("2020-01-01"), freq("BMS"), schedule.Infinite, 500,
			rules.WithScheduleOptions(schedule.WithHorizon(day("2020-12-31"))))),
		suite.mustRule(rules.NewBalance(day("2020-01-01"), freq("BMS"), []rules.Allocation{
			{Symbol: "SPY", Weight: 0.6},
			{Symbol: "BND", Weight: 0.3},
		}, rules.WithScheduleOptions(schedule.WithHorizon(day("2020-12-31"))))),
		suite.mustRule(rules.NewDividends(rules.WithScheduleOptions(schedule.WithHorizon(day("2020-12-31"))))),
	}

	suite.expectSeries([]string{"BND", "SPY"}, series...)

	simulator := New(testConfig(10000, "2020-01-01", "2020-12-31"), ruleList, suite.mockProvider,
		WithJournal(portfolio.NewMemoryJournal()))
	result, err := simulator.Run(context.Background(), LifecycleCallbacks{})
	suite.Require().NoError(err)

	for _, point := range result.History {
		suite.GreaterOrEqual(point.Cash, 0.0, point.Time.Format(types.DateFormat))
		suite.GreaterOrEqual(point.Value, point.Cash)
	}

	suite.InDelta(12*500.0, result.CashFlows.Deposits, 1e-9)
	suite.Greater(result.CashFlows.Dividends, 0.0)
	suite.Equal(12, result.Rules[1].Fired)
	suite.Contains(result.Holdings, "SPY")
	suite.Contains(result.Holdings, "BND")

	// roughly 10% of the portfolio stays in cash after each rebalance
	suite.Greater(result.FinalCash, 0.0)
}
