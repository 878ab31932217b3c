// Package rules implements scheduled portfolio rules.
//
// A Rule pairs a schedule with one Action and a State counting the
// executions left. Run executes the action when the quote's day is a
// trigger date and the rule is not spent, then advances the state.
package rules

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/portfolio"
	"github.com/rxtech-lab/argo-rules/internal/schedule"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
)

// Quote is the per-day market view a rule reads.
type Quote interface {
	Date() time.Time
	// Dividend returns the per-share dividend of symbol going ex on Date, or 0.
	Dividend(symbol string) float64
}

type Rule struct {
	name     string
	schedule *schedule.Schedule
	state    State
	action   Action
}

func newRule(name string, s *schedule.Schedule, action Action) *Rule {
	return &Rule{
		name:     name,
		schedule: s,
		state:    newState(s.Count()),
		action:   action,
	}
}

// Run executes the rule if the quote's day is one of its trigger dates and
// executions are left. The state only advances when the action succeeds;
// action errors are returned unchanged.
func (r *Rule) Run(p portfolio.Portfolio, q Quote) (fired bool, err error) {
	if !r.state.Active() || !r.schedule.Contains(q.Date()) {
		return false, nil
	}

	if err := execute(r.action, r.state, p, q); err != nil {
		return false, err
	}

	r.state = r.state.Advance()

	return true, nil
}

func execute(action Action, state State, p portfolio.Portfolio, q Quote) error {
	switch a := action.(type) {
	case Buy:
		return executeBuy(a, p)
	case ClosePosition:
		return executeClosePosition(a, state, p)
	case Balance:
		return executeBalance(a, p)
	case Dividends:
		return executeDividends(p, q)
	case Deposit:
		return p.Deposit(a.Amount, MemoDeposit)
	case Withdraw:
		return p.Withdraw(a.Amount, MemoWithdraw)
	case CashInterest:
		return executeCashInterest(a, p)
	default:
		return errors.Newf(errors.ErrCodeUnsupportedRule, "unsupported action %T", action)
	}
}

// executeBuy skips the purchase when the symbol has no price today.
func executeBuy(a Buy, p portfolio.Portfolio) error {
	if p.Price(a.Symbol) <= 0 {
		return nil
	}

	return p.Buy(a.Symbol, a.Quantity, MemoBuy)
}

// executeClosePosition sells 1/remaining of the position so the last
// execution liquidates it. Days without a price are skipped but still count.
func executeClosePosition(a ClosePosition, state State, p portfolio.Portfolio) error {
	position := p.Position(a.Symbol)
	if position <= 0 || p.Price(a.Symbol) <= 0 {
		return nil
	}

	quantity := position
	if !state.Final() {
		quantity = position / state.Remaining
	}

	if quantity <= 0 {
		return nil
	}

	return p.Sell(a.Symbol, quantity, MemoClosePosition)
}

func executeDividends(p portfolio.Portfolio, q Quote) error {
	for _, symbol := range p.Tickers() {
		dividend := q.Dividend(symbol)
		if dividend <= 0 {
			continue
		}

		quantity := p.Position(symbol)
		if err := p.Deposit(dividend*float64(quantity), dividendMemo(symbol, dividend, quantity)); err != nil {
			return err
		}
	}

	return nil
}

func executeCashInterest(a CashInterest, p portfolio.Portfolio) error {
	amount := a.MonthlyRate * p.Cash()
	if amount <= 0 {
		return nil
	}

	return p.Deposit(amount, MemoCashInterest)
}

func (r *Rule) Name() string {
	return r.name
}

func (r *Rule) Kind() Kind {
	return r.action.Kind()
}

func (r *Rule) Action() Action {
	return r.action
}

func (r *Rule) Schedule() *schedule.Schedule {
	return r.schedule
}

func (r *Rule) State() State {
	return r.state
}

// Requires returns the sorted symbols whose history the rule needs.
func (r *Rule) Requires() []string {
	return r.action.Requires()
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s(%s)", r.name, r.schedule)
}
