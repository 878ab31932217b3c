package rules

import (
	"sort"
)

// Kind identifies the variant of an Action.
type Kind string

const (
	KindBuy           Kind = "buy"
	KindClosePosition Kind = "close_position"
	KindBalance       Kind = "balance"
	KindDividends     Kind = "dividends"
	KindDeposit       Kind = "deposit"
	KindWithdraw      Kind = "withdraw"
	KindCashInterest  Kind = "cash_interest"
)

// AllKinds lists every rule kind.
var AllKinds = []Kind{
	KindBuy,
	KindClosePosition,
	KindBalance,
	KindDividends,
	KindDeposit,
	KindWithdraw,
	KindCashInterest,
}

// Action is the closed set of mutations a rule can apply. The concrete
// types are Buy, ClosePosition, Balance, Dividends, Deposit, Withdraw and
// CashInterest.
type Action interface {
	Kind() Kind
	// Requires returns the sorted symbols the action reads or trades.
	Requires() []string
	action()
}

// Buy buys Quantity shares of Symbol per execution.
type Buy struct {
	Symbol   string
	Quantity int
}

// ClosePosition sells a position down to zero over the remaining executions.
type ClosePosition struct {
	Symbol string
}

// Balance rebalances the portfolio toward target weights.
type Balance struct {
	Allocation []Allocation
	// CashFraction is the share of the portfolio value kept in cash.
	CashFraction float64
	Band         Band
}

// Dividends credits the cash dividends of every held symbol.
type Dividends struct{}

// Deposit deposits Amount per execution.
type Deposit struct {
	Amount float64
}

// Withdraw withdraws Amount per execution.
type Withdraw struct {
	Amount float64
}

// CashInterest credits MonthlyRate times the cash balance.
type CashInterest struct {
	MonthlyRate float64
}

func (Buy) Kind() Kind           { return KindBuy }
func (ClosePosition) Kind() Kind { return KindClosePosition }
func (Balance) Kind() Kind       { return KindBalance }
func (Dividends) Kind() Kind     { return KindDividends }
func (Deposit) Kind() Kind       { return KindDeposit }
func (Withdraw) Kind() Kind      { return KindWithdraw }
func (CashInterest) Kind() Kind  { return KindCashInterest }

func (a Buy) Requires() []string {
	return []string{a.Symbol}
}

func (a ClosePosition) Requires() []string {
	return []string{a.Symbol}
}

func (a Balance) Requires() []string {
	symbols := make([]string, 0, len(a.Allocation))
	for _, entry := range a.Allocation {
		symbols = append(symbols, entry.Symbol)
	}

	sort.Strings(symbols)

	return symbols
}

func (Dividends) Requires() []string    { return []string{} }
func (Deposit) Requires() []string      { return []string{} }
func (Withdraw) Requires() []string     { return []string{} }
func (CashInterest) Requires() []string { return []string{} }

func (Buy) action()           {}
func (ClosePosition) action() {}
func (Balance) action()       {}
func (Dividends) action()     {}
func (Deposit) action()       {}
func (Withdraw) action()      {}
func (CashInterest) action()  {}
