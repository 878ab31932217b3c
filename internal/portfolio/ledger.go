package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/logger"
	"github.com/rxtech-lab/argo-rules/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-rules/internal/quote"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// cashEpsilon absorbs float rounding when a computed order spends exactly the available cash.
var cashEpsilon = decimal.New(1, -6)

// Ledger is the in-memory Portfolio used by the simulator. Cash is kept in
// decimal arithmetic. Holdings are valued at the last known close, so a
// symbol missing from one day's quote keeps its previous valuation.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	cash       decimal.Decimal
	positions  map[string]int
	lastPrices map[string]float64
	snapshot   *quote.Snapshot
	commission commission_fee.CommissionFee
	journal    Journal
	logger     *logger.Logger
	rule       string
}

type LedgerOption func(*Ledger)

func WithCommission(fee commission_fee.CommissionFee) LedgerOption {
	return func(l *Ledger) {
		l.commission = fee
	}
}

func WithJournal(journal Journal) LedgerOption {
	return func(l *Ledger) {
		l.journal = journal
	}
}

func WithLogger(log *logger.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = log
	}
}

// WithPositions seeds the ledger with existing share positions.
func WithPositions(positions map[string]int) LedgerOption {
	return func(l *Ledger) {
		for symbol, quantity := range positions {
			if quantity != 0 {
				l.positions[symbol] = quantity
			}
		}
	}
}

func NewLedger(initialCash float64, opts ...LedgerOption) *Ledger {
	ledger := &Ledger{
		cash:       decimal.NewFromFloat(initialCash),
		positions:  make(map[string]int),
		lastPrices: make(map[string]float64),
		commission: commission_fee.NewZeroCommissionFee(),
		journal:    NewMemoryJournal(),
		logger:     logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(ledger)
	}

	return ledger
}

// Mark moves the ledger to the day of snapshot and refreshes the last known prices.
func (l *Ledger) Mark(snapshot *quote.Snapshot) {
	l.snapshot = snapshot

	for _, symbol := range snapshot.Symbols() {
		if price := snapshot.Price(symbol); price > 0 {
			l.lastPrices[symbol] = price
		}
	}
}

// Date returns the day of the last marked snapshot.
func (l *Ledger) Date() time.Time {
	if l.snapshot == nil {
		return time.Time{}
	}

	return l.snapshot.Date()
}

// Attribute tags the following transactions with the name of the rule causing them.
func (l *Ledger) Attribute(rule string) {
	l.rule = rule
}

func (l *Ledger) Journal() Journal {
	return l.journal
}

// Positions returns a copy of the non-zero positions.
func (l *Ledger) Positions() map[string]int {
	positions := make(map[string]int, len(l.positions))
	for symbol, quantity := range l.positions {
		positions[symbol] = quantity
	}

	return positions
}

func (l *Ledger) Buy(symbol string, quantity int, memo string) error {
	if quantity < 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "buy quantity must not be negative, got %d", quantity)
	}

	if quantity == 0 {
		return nil
	}

	price := l.Price(symbol)
	if price <= 0 {
		return errors.Newf(errors.ErrCodeMarketDataMissing, "no price for %s on %s", symbol, l.Date().Format(types.DateFormat))
	}

	notional := decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(price))
	if notional.GreaterThan(l.cash.Add(cashEpsilon)) {
		return errors.Newf(errors.ErrCodeInsufficientCash,
			"buying %d %s costs %s, only %s cash available", quantity, symbol, notional.StringFixed(2), l.cash.StringFixed(2))
	}

	fee := decimal.NewFromFloat(l.commission.Calculate(quantity, price))
	if notional.Add(fee).GreaterThan(l.cash.Add(cashEpsilon)) {
		capped := commission_fee.MaxQuantity(l.cash.InexactFloat64(), price, l.commission)
		l.logger.Debug("Reducing buy quantity to cover commission",
			zap.String("symbol", symbol),
			zap.Int("requested", quantity),
			zap.Int("capped", capped),
		)

		if capped == 0 {
			return nil
		}

		quantity = capped
		notional = decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(price))
		fee = decimal.NewFromFloat(l.commission.Calculate(quantity, price))
	}

	cost := notional.Add(fee)
	l.setCash(l.cash.Sub(cost))
	l.positions[symbol] += quantity

	return l.record(types.Transaction{
		Kind:     types.TransactionKindBuy,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Amount:   cost.Neg().InexactFloat64(),
		Fee:      fee.InexactFloat64(),
		Memo:     memo,
	})
}

// Sell sells up to quantity shares. Orders larger than the position sell the whole position.
func (l *Ledger) Sell(symbol string, quantity int, memo string) error {
	if quantity < 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "sell quantity must not be negative, got %d", quantity)
	}

	if quantity == 0 {
		return nil
	}

	held := l.positions[symbol]
	if held <= 0 {
		return errors.Newf(errors.ErrCodeInsufficientPosition, "no %s shares available to sell", symbol)
	}

	if quantity > held {
		l.logger.Debug("Reducing sell quantity to position",
			zap.String("symbol", symbol),
			zap.Int("requested", quantity),
			zap.Int("held", held),
		)

		quantity = held
	}

	price := l.Price(symbol)
	if price <= 0 {
		return errors.Newf(errors.ErrCodeMarketDataMissing, "no price for %s on %s", symbol, l.Date().Format(types.DateFormat))
	}

	notional := decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(price))
	fee := decimal.NewFromFloat(l.commission.Calculate(quantity, price))
	proceeds := notional.Sub(fee)

	l.setCash(l.cash.Add(proceeds))

	l.positions[symbol] -= quantity
	if l.positions[symbol] == 0 {
		delete(l.positions, symbol)
	}

	return l.record(types.Transaction{
		Kind:     types.TransactionKindSell,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Amount:   proceeds.InexactFloat64(),
		Fee:      fee.InexactFloat64(),
		Memo:     memo,
	})
}

func (l *Ledger) Deposit(amount float64, memo string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	if amount == 0 {
		return nil
	}

	l.setCash(l.cash.Add(decimal.NewFromFloat(amount)))

	return l.record(types.Transaction{
		Kind:   types.TransactionKindDeposit,
		Amount: amount,
		Memo:   memo,
	})
}

func (l *Ledger) Withdraw(amount float64, memo string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	if amount == 0 {
		return nil
	}

	value := decimal.NewFromFloat(amount)
	if value.GreaterThan(l.cash.Add(cashEpsilon)) {
		return errors.Newf(errors.ErrCodeInsufficientCash,
			"withdrawing %s exceeds available cash %s", value.StringFixed(2), l.cash.StringFixed(2))
	}

	l.setCash(l.cash.Sub(value))

	return l.record(types.Transaction{
		Kind:   types.TransactionKindWithdraw,
		Amount: -amount,
		Memo:   memo,
	})
}

func (l *Ledger) Position(symbol string) int {
	return l.positions[symbol]
}

func (l *Ledger) Holding(symbol string) float64 {
	quantity := l.positions[symbol]
	if quantity == 0 {
		return 0
	}

	return float64(quantity) * l.lastPrices[symbol]
}

// Price returns the close of symbol on the current day, or 0 when it did not trade.
func (l *Ledger) Price(symbol string) float64 {
	if l.snapshot == nil {
		return 0
	}

	return l.snapshot.Price(symbol)
}

func (l *Ledger) Value() float64 {
	value := l.cash

	for symbol, quantity := range l.positions {
		holding := decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(l.lastPrices[symbol]))
		value = value.Add(holding)
	}

	return value.InexactFloat64()
}

func (l *Ledger) Cash() float64 {
	return l.cash.InexactFloat64()
}

func (l *Ledger) Tickers() []string {
	tickers := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		tickers = append(tickers, symbol)
	}

	sort.Strings(tickers)

	return tickers
}

// setCash stores cash, snapping rounding residue below zero back to zero.
func (l *Ledger) setCash(cash decimal.Decimal) {
	if cash.IsNegative() && cash.Abs().LessThanOrEqual(cashEpsilon) {
		cash = decimal.Zero
	}

	l.cash = cash
}

func (l *Ledger) record(tx types.Transaction) error {
	tx.Time = l.Date()
	tx.Rule = l.rule
	tx.CashAfter = l.cash.InexactFloat64()

	l.logger.Debug("Booked transaction",
		zap.String("kind", string(tx.Kind)),
		zap.String("symbol", tx.Symbol),
		zap.Int("quantity", tx.Quantity),
		zap.Float64("amount", tx.Amount),
		zap.String("memo", tx.Memo),
		zap.String("rule", tx.Rule),
	)

	if err := l.journal.Record(tx); err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to record transaction", err)
	}

	return nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return errors.Newf(errors.ErrCodeInvalidAmount, "amount must be a non-negative number, got %v", amount)
	}

	return nil
}
