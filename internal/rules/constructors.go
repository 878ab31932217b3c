package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/schedule"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
)

// DefaultEpoch is the first day of the Dividends and CashInterest schedules.
var DefaultEpoch = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

type options struct {
	name         string
	epoch        time.Time
	band         Band
	scheduleOpts []schedule.Option
}

// Option configures a rule at construction.
type Option func(*options)

// WithName overrides the generated rule name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithEpoch sets the start of the Dividends and CashInterest schedules.
func WithEpoch(epoch time.Time) Option {
	return func(o *options) {
		o.epoch = epoch
	}
}

// WithBand sets the tolerance band of a Balance rule.
func WithBand(lower float64, upper float64) Option {
	return func(o *options) {
		o.band = Band{Lower: lower, Upper: upper}
	}
}

// WithScheduleOptions passes options to the rule's schedule, e.g.
// schedule.WithHorizon for infinite rules.
func WithScheduleOptions(opts ...schedule.Option) Option {
	return func(o *options) {
		o.scheduleOpts = append(o.scheduleOpts, opts...)
	}
}

func applyOptions(opts []Option) options {
	o := options{epoch: DefaultEpoch}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func nameOr(o options, fallback string) string {
	if o.name != "" {
		return o.name
	}

	return fallback
}

// NewBuy buys symbol on every trigger. With a finite count, quantity is the
// total spread over count executions, floor(quantity/count) each; with
// schedule.Infinite it is bought on every trigger.
func NewBuy(start time.Time, frequency schedule.Frequency, count int, symbol string, quantity int, opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	if symbol == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "buy symbol is required")
	}

	if quantity < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidQuantity, "buy quantity must not be negative, got %d", quantity)
	}

	s, err := schedule.New(start, frequency, count, o.scheduleOpts...)
	if err != nil {
		return nil, err
	}

	perExecution := quantity
	if count > 0 {
		perExecution = quantity / count
	}

	return newRule(nameOr(o, "buy "+symbol), s, Buy{Symbol: symbol, Quantity: perExecution}), nil
}

// NewClosePosition sells the position in symbol over count executions, the
// last one selling whatever is left.
func NewClosePosition(start time.Time, frequency schedule.Frequency, count int, symbol string, opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	if count <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidRepeatCount, "close position needs a positive repeat count, got %d", count)
	}

	if symbol == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "close position symbol is required")
	}

	s, err := schedule.New(start, frequency, count, o.scheduleOpts...)
	if err != nil {
		return nil, err
	}

	return newRule(nameOr(o, "close "+symbol), s, ClosePosition{Symbol: symbol}), nil
}

// NewBalance rebalances toward allocation on every trigger. The weights left
// unallocated are kept in cash.
func NewBalance(start time.Time, frequency schedule.Frequency, allocation []Allocation, opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	cash, err := cashFraction(allocation)
	if err != nil {
		return nil, err
	}

	if err := o.band.validate(); err != nil {
		return nil, err
	}

	s, err := schedule.New(start, frequency, schedule.Infinite, o.scheduleOpts...)
	if err != nil {
		return nil, err
	}

	entries := make([]Allocation, len(allocation))
	copy(entries, allocation)

	action := Balance{
		Allocation:   entries,
		CashFraction: cash,
		Band:         o.band,
	}

	return newRule(nameOr(o, "balance "+strings.Join(action.Requires(), "/")), s, action), nil
}

// NewBalanceFromWeights is NewBalance for a symbol to weight map. Entries
// are ordered by symbol.
func NewBalanceFromWeights(start time.Time, frequency schedule.Frequency, weights map[string]float64, opts ...Option) (*Rule, error) {
	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	allocation := make([]Allocation, 0, len(symbols))
	for _, symbol := range symbols {
		allocation = append(allocation, Allocation{Symbol: symbol, Weight: weights[symbol]})
	}

	return NewBalance(start, frequency, allocation, opts...)
}

// NewDividends credits dividends every business day from the epoch.
func NewDividends(opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	s, err := schedule.New(o.epoch, schedule.MustParseFrequency("B"), schedule.Infinite, o.scheduleOpts...)
	if err != nil {
		return nil, err
	}

	return newRule(nameOr(o, "dividends"), s, Dividends{}), nil
}

// NewDeposit deposits amount on every trigger, or amount/count per trigger
// with a finite count.
func NewDeposit(start time.Time, frequency schedule.Frequency, count int, amount float64, opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	s, perExecution, err := cashSchedule(start, frequency, count, amount, o)
	if err != nil {
		return nil, err
	}

	return newRule(nameOr(o, fmt.Sprintf("deposit %v", amount)), s, Deposit{Amount: perExecution}), nil
}

// NewWithdraw withdraws amount on every trigger, or amount/count per trigger
// with a finite count.
func NewWithdraw(start time.Time, frequency schedule.Frequency, count int, amount float64, opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	s, perExecution, err := cashSchedule(start, frequency, count, amount, o)
	if err != nil {
		return nil, err
	}

	return newRule(nameOr(o, fmt.Sprintf("withdraw %v", amount)), s, Withdraw{Amount: perExecution}), nil
}

func cashSchedule(start time.Time, frequency schedule.Frequency, count int, amount float64, o options) (*schedule.Schedule, float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, 0, errors.Newf(errors.ErrCodeInvalidAmount, "amount must be a non-negative number, got %v", amount)
	}

	s, err := schedule.New(start, frequency, count, o.scheduleOpts...)
	if err != nil {
		return nil, 0, err
	}

	if count > 0 {
		return s, amount / float64(count), nil
	}

	return s, amount, nil
}

// NewCashInterest credits annualRate/12 of the cash balance on the first
// business day of every month from the epoch.
func NewCashInterest(annualRate float64, opts ...Option) (*Rule, error) {
	o := applyOptions(opts)

	if math.IsNaN(annualRate) || math.IsInf(annualRate, 0) {
		return nil, errors.Newf(errors.ErrCodeInvalidRate, "annual rate must be finite, got %v", annualRate)
	}

	s, err := schedule.New(o.epoch, schedule.MustParseFrequency("BMS"), schedule.Infinite, o.scheduleOpts...)
	if err != nil {
		return nil, err
	}

	return newRule(nameOr(o, fmt.Sprintf("cash interest %v", annualRate)), s, CashInterest{MonthlyRate: annualRate / 12}), nil
}
