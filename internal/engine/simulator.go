package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-rules/internal/config"
	"github.com/rxtech-lab/argo-rules/internal/logger"
	"github.com/rxtech-lab/argo-rules/internal/portfolio"
	"github.com/rxtech-lab/argo-rules/internal/quote"
	"github.com/rxtech-lab/argo-rules/internal/rules"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata"
	"go.uber.org/zap"
)

const (
	StatsFileName        = "stats.yaml"
	HistoryFileName      = "history.yaml"
	TransactionsFileName = "transactions.parquet"
)

type Option func(*Simulator)

func WithLogger(log *logger.Logger) Option {
	return func(s *Simulator) {
		s.logger = log
	}
}

// WithJournal replaces the DuckDB journal created for every run.
func WithJournal(journal portfolio.Journal) Option {
	return func(s *Simulator) {
		s.journal = journal
	}
}

// WithClock sets the clock used to timestamp results.
func WithClock(clock func() time.Time) Option {
	return func(s *Simulator) {
		s.clock = clock
	}
}

// Simulator runs rules in order on every trading day of the configured period.
// Rules keep their state across calls, so a Simulator runs once.
type Simulator struct {
	config   *config.Config
	rules    []*rules.Rule
	provider marketdata.SeriesProvider
	logger   *logger.Logger
	journal  portfolio.Journal
	clock    func() time.Time

	ledger *portfolio.Ledger
	result *types.SimulationResult
}

func New(cfg *config.Config, ruleList []*rules.Rule, provider marketdata.SeriesProvider, opts ...Option) *Simulator {
	simulator := &Simulator{
		config:   cfg,
		rules:    ruleList,
		provider: provider,
		logger:   logger.NewNopLogger(),
		journal:  nil,
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(simulator)
	}

	return simulator
}

// Ledger returns the ledger of the last run, nil before Run.
func (s *Simulator) Ledger() *portfolio.Ledger {
	return s.ledger
}

// Result returns the result of the last successful run, nil before.
func (s *Simulator) Result() *types.SimulationResult {
	return s.result
}

// Symbols returns the sorted union of the symbols the rules require.
func (s *Simulator) Symbols() []string {
	seen := make(map[string]struct{})

	for _, rule := range s.rules {
		for _, symbol := range rule.Requires() {
			seen[symbol] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// Run loads the market data of every required symbol and replays the
// period day by day. A rule error aborts the run; transactions booked
// before it stay in the journal.
func (s *Simulator) Run(ctx context.Context, callbacks LifecycleCallbacks) (result *types.SimulationResult, err error) {
	if callbacks.OnSimulationEnd != nil {
		defer func() {
			(*callbacks.OnSimulationEnd)(err)
		}()
	}

	if len(s.rules) == 0 {
		return nil, errors.New(errors.ErrCodeSimulationNoRules, "no rules to simulate")
	}

	start, end := s.config.Period()

	feed, err := s.loadFeed(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if s.journal == nil {
		journal, err := portfolio.NewDuckDBJournal(s.logger)
		if err != nil {
			return nil, err
		}

		s.journal = journal
	}

	s.ledger = portfolio.NewLedger(s.config.InitialCash,
		portfolio.WithCommission(s.config.Commission.Fee()),
		portfolio.WithJournal(s.journal),
		portfolio.WithLogger(s.logger),
	)

	runID := uuid.New().String()
	total := feed.Len()

	s.logger.Info("Starting simulation",
		zap.String("run_id", runID),
		zap.String("name", s.config.Name),
		zap.Int("rules", len(s.rules)),
		zap.Int("days", total),
		zap.Time("start", feed.Day(0)),
		zap.Time("end", feed.Day(total-1)),
	)

	if callbacks.OnSimulationStart != nil {
		if err := (*callbacks.OnSimulationStart)(runID, total, len(s.rules)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCallbackFailed, "simulation start callback failed", err)
		}
	}

	fired := make([]int, len(s.rules))
	history := make([]types.ValuePoint, 0, total)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSimulationCancelled, "simulation cancelled", err)
		}

		snapshot := feed.At(i)
		day := snapshot.Date()

		s.ledger.Mark(snapshot)

		for r, rule := range s.rules {
			s.ledger.Attribute(rule.Name())

			ok, err := rule.Run(s.ledger, snapshot)
			if err != nil {
				s.logger.Error("Rule failed",
					zap.String("rule", rule.Name()),
					zap.Time("day", day),
					zap.Error(err),
				)

				return nil, errors.Wrapf(errors.ErrCodeSimulationRuleFailed, err, "rule %s failed on %s", rule.Name(), day.Format(types.DateFormat))
			}

			if !ok {
				continue
			}

			fired[r]++

			if callbacks.OnRuleFired != nil {
				if err := (*callbacks.OnRuleFired)(day, rule.Name()); err != nil {
					return nil, errors.Wrap(errors.ErrCodeCallbackFailed, "rule fired callback failed", err)
				}
			}
		}

		s.ledger.Attribute("")

		point := types.ValuePoint{
			Time:  day,
			Cash:  s.ledger.Cash(),
			Value: s.ledger.Value(),
		}
		history = append(history, point)

		if callbacks.OnDay != nil {
			if err := (*callbacks.OnDay)(i+1, total, day, point.Value); err != nil {
				return nil, errors.Wrap(errors.ErrCodeCallbackFailed, "day callback failed", err)
			}
		}
	}

	result, err = s.buildResult(runID, history, fired)
	if err != nil {
		return nil, err
	}

	s.result = result

	s.logger.Info("Simulation finished",
		zap.String("run_id", runID),
		zap.Float64("final_value", result.FinalValue),
		zap.Int("trades", result.NumberOfTrades),
	)

	return result, nil
}

func (s *Simulator) loadFeed(ctx context.Context, start, end time.Time) (*quote.Feed, error) {
	symbols := s.Symbols()
	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeSimulationNoData, "no rule requires market data, nothing defines the trading days")
	}

	closes, err := s.provider.JoinSeries(ctx, symbols, types.FieldClose)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSimulationNoData, "failed to load closes", err)
	}

	dividends, err := s.provider.JoinSeries(ctx, symbols, types.FieldDividend)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSimulationNoData, "failed to load dividends", err)
	}

	feed := quote.NewFeed(closes, dividends, start, end)
	if feed.Len() == 0 {
		return nil, errors.Newf(errors.ErrCodeSimulationNoData, "no trading days between %s and %s",
			start.Format(types.DateFormat), end.Format(types.DateFormat))
	}

	return feed, nil
}

func (s *Simulator) buildResult(runID string, history []types.ValuePoint, fired []int) (*types.SimulationResult, error) {
	transactions, err := s.journal.Transactions()
	if err != nil {
		return nil, err
	}

	kinds := make(map[string]rules.Kind, len(s.rules))
	stats := make([]types.RuleStats, 0, len(s.rules))

	for i, rule := range s.rules {
		kinds[rule.Name()] = rule.Kind()
		stats = append(stats, types.RuleStats{
			Name:      rule.Name(),
			Kind:      string(rule.Kind()),
			Fired:     fired[i],
			Remaining: rule.State().Remaining,
		})
	}

	result := &types.SimulationResult{
		ID:          runID,
		Timestamp:   s.clock(),
		StartDate:   history[0].Time,
		EndDate:     history[len(history)-1].Time,
		TradingDays: len(history),
		InitialCash: s.config.InitialCash,
		FinalCash:   s.ledger.Cash(),
		FinalValue:  s.ledger.Value(),
		Holdings:    s.ledger.Positions(),
		MaxDrawdown: types.MaxDrawdown(history),
		Rules:       stats,
		History:     history,
	}

	for _, tx := range transactions {
		if tx.IsTrade() {
			result.NumberOfTrades++
			result.TotalFees += tx.Fee

			continue
		}

		switch kinds[tx.Rule] {
		case rules.KindDividends:
			result.CashFlows.Dividends += tx.Amount
		case rules.KindCashInterest:
			result.CashFlows.Interest += tx.Amount
		case rules.KindWithdraw:
			result.CashFlows.Withdrawals -= tx.Amount
		default:
			if tx.Kind == types.TransactionKindWithdraw {
				result.CashFlows.Withdrawals -= tx.Amount
			} else {
				result.CashFlows.Deposits += tx.Amount
			}
		}
	}

	return result, nil
}

// WriteResults writes the result of the last run to dir: stats.yaml,
// history.yaml and, when the journal can export itself, transactions.parquet.
func (s *Simulator) WriteResults(dir string) error {
	if s.result == nil {
		return errors.New(errors.ErrCodeSimulationWriteFailed, "no simulation result, call Run first")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeSimulationWriteFailed, err, "failed to create results folder %s", dir)
	}

	if exporter, ok := s.journal.(portfolio.Exporter); ok {
		path := filepath.Join(dir, TransactionsFileName)
		if err := exporter.Write(path); err != nil {
			return errors.Wrap(errors.ErrCodeSimulationWriteFailed, "failed to write transactions", err)
		}

		s.result.TransactionsFilePath = path
	}

	if err := types.WriteSimulationResult(filepath.Join(dir, StatsFileName), *s.result); err != nil {
		return errors.Wrap(errors.ErrCodeSimulationWriteFailed, "failed to write stats", err)
	}

	if err := types.WriteValueHistory(filepath.Join(dir, HistoryFileName), s.result.History); err != nil {
		return errors.Wrap(errors.ErrCodeSimulationWriteFailed, "failed to write value history", err)
	}

	s.logger.Info("Results written", zap.String("folder", dir))

	return nil
}

// Close releases the journal.
func (s *Simulator) Close() error {
	if s.journal == nil {
		return nil
	}

	return s.journal.Close()
}
