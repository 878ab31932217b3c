package rules

import (
	"math"

	"github.com/rxtech-lab/argo-rules/internal/portfolio"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/shopspring/decimal"
)

// Allocation is the target weight of one symbol, as a fraction of the
// total portfolio value.
type Allocation struct {
	Symbol string
	Weight float64
}

// Band is the tolerance around a target, as fractions of it. A holding
// strictly inside ((1-Lower)*target, (1+Upper)*target) is left alone.
// The zero Band rebalances on every trigger.
type Band struct {
	Lower float64
	Upper float64
}

func (b Band) validate() error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || math.IsInf(b.Upper, 0) {
		return errors.Newf(errors.ErrCodeInvalidBand, "band must be finite, got (%v, %v)", b.Lower, b.Upper)
	}

	if b.Lower < 0 || b.Lower > 1 {
		return errors.Newf(errors.ErrCodeInvalidBand, "lower band must be within [0, 1], got %v", b.Lower)
	}

	if b.Upper < 0 {
		return errors.Newf(errors.ErrCodeInvalidBand, "upper band must not be negative, got %v", b.Upper)
	}

	return nil
}

// inside reports whether value lies strictly within the band around target.
func (b Band) inside(value float64, target float64) bool {
	return (1-b.Lower)*target < value && value < (1+b.Upper)*target
}

// cashFraction validates the allocation and returns the weight left to cash.
func cashFraction(allocation []Allocation) (float64, error) {
	seen := make(map[string]struct{}, len(allocation))
	sum := decimal.Zero

	for _, entry := range allocation {
		if entry.Symbol == "" {
			return 0, errors.New(errors.ErrCodeInvalidAllocation, "allocation symbol is required")
		}

		if _, ok := seen[entry.Symbol]; ok {
			return 0, errors.Newf(errors.ErrCodeInvalidAllocation, "duplicate allocation for %s", entry.Symbol)
		}

		seen[entry.Symbol] = struct{}{}

		if math.IsNaN(entry.Weight) || entry.Weight < 0 || entry.Weight > 1 {
			return 0, errors.Newf(errors.ErrCodeInvalidAllocation, "weight of %s must be within [0, 1], got %v", entry.Symbol, entry.Weight)
		}

		sum = sum.Add(decimal.NewFromFloat(entry.Weight))
	}

	if sum.GreaterThan(decimal.NewFromInt(1)) {
		return 0, errors.Newf(errors.ErrCodeInvalidAllocation, "allocation sums to %s, above 1", sum.String())
	}

	return decimal.NewFromInt(1).Sub(sum).InexactFloat64(), nil
}

// executeBalance sells symbols outside the allocation, trades each
// allocated symbol toward its target, then spends or raises cash toward the
// cash target. Symbols without a price today are skipped.
func executeBalance(a Balance, p portfolio.Portfolio) error {
	if err := prune(a, p); err != nil {
		return err
	}

	if err := rebalanceHoldings(a, p); err != nil {
		return err
	}

	return rebalanceCash(a, p)
}

func prune(a Balance, p portfolio.Portfolio) error {
	allocated := make(map[string]struct{}, len(a.Allocation))
	for _, entry := range a.Allocation {
		allocated[entry.Symbol] = struct{}{}
	}

	for _, symbol := range p.Tickers() {
		if _, ok := allocated[symbol]; ok {
			continue
		}

		position := p.Position(symbol)
		if position <= 0 || p.Price(symbol) <= 0 {
			continue
		}

		if err := p.Sell(symbol, position, MemoRebalancing); err != nil {
			return err
		}
	}

	return nil
}

func rebalanceHoldings(a Balance, p portfolio.Portfolio) error {
	// targets are fixed before the first trade
	value := p.Value()
	targets := make([]float64, len(a.Allocation))

	for i, entry := range a.Allocation {
		targets[i] = entry.Weight * value
	}

	for i, entry := range a.Allocation {
		target := targets[i]
		held := p.Holding(entry.Symbol)

		price := p.Price(entry.Symbol)
		if price <= 0 {
			continue
		}

		if a.Band.inside(held, target) {
			continue
		}

		if target > held {
			quantity := int(math.Floor(math.Min(target-held, p.Cash()) / price))
			if quantity > 0 {
				if err := p.Buy(entry.Symbol, quantity, MemoRebalancing); err != nil {
					return err
				}
			}

			continue
		}

		quantity := int(math.Floor((held - target) / price))
		if quantity > 0 {
			if err := p.Sell(entry.Symbol, quantity, MemoRebalancing); err != nil {
				return err
			}
		}
	}

	return nil
}

func rebalanceCash(a Balance, p portfolio.Portfolio) error {
	if len(a.Allocation) == 0 {
		return nil
	}

	cash := p.Cash()
	desired := a.CashFraction * p.Value()

	if !((1-a.Band.Lower)*cash > desired || desired > (1+a.Band.Upper)*cash) {
		return nil
	}

	surplus := cash - desired
	share := a.CashFraction / float64(len(a.Allocation))

	for _, entry := range a.Allocation {
		price := p.Price(entry.Symbol)
		if price <= 0 {
			continue
		}

		amount := surplus * (entry.Weight + share)
		// never spend more than the cash left
		amount = math.Min(amount, p.Cash())

		quantity := int(math.Floor(amount / price))
		if quantity <= 0 {
			continue
		}

		if err := p.Buy(entry.Symbol, quantity, MemoCashRebalance); err != nil {
			return err
		}
	}

	return nil
}
