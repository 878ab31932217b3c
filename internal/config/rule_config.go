package config

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rules/internal/rules"
	"github.com/rxtech-lab/argo-rules/internal/schedule"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata"
)

// RuleConfig is one entry of the rules list. Which fields are read depends
// on Kind:
//
//	buy             start, frequency, count, symbol, quantity
//	close_position  start, frequency, count, symbol
//	balance         start, frequency, allocation, band
//	dividends       epoch
//	deposit         start, frequency, count, amount
//	withdraw        start, frequency, count, amount
//	cash_interest   epoch, rate
type RuleConfig struct {
	Kind rules.Kind `yaml:"kind" json:"kind" jsonschema:"title=Kind,description=What the rule does" validate:"required,oneof=buy close_position balance dividends deposit withdraw cash_interest"`
	Name string     `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"title=Name,description=Name used in logs and journal entries"`
	// Start defaults to the simulation start.
	Start     optional.Option[time.Time] `yaml:"start,omitempty" json:"start,omitempty" jsonschema:"title=Start,description=First candidate trigger day. Defaults to the simulation start"`
	Frequency string                     `yaml:"frequency,omitempty" json:"frequency,omitempty" jsonschema:"title=Frequency,description=Frequency descriptor such as B or W-FRI or BMS or cron:0 0 1 * *"`
	// Count defaults to schedule.Infinite.
	Count      optional.Option[int] `yaml:"count,omitempty" json:"count,omitempty" jsonschema:"title=Count,description=Number of executions. -1 or omitted repeats forever"`
	Symbol     string               `yaml:"symbol,omitempty" json:"symbol,omitempty" jsonschema:"title=Symbol"`
	Quantity   int                  `yaml:"quantity,omitempty" json:"quantity,omitempty" jsonschema:"title=Quantity,description=Shares to buy in total over a finite schedule or per trigger otherwise,minimum=0" validate:"gte=0"`
	Amount     float64              `yaml:"amount,omitempty" json:"amount,omitempty" jsonschema:"title=Amount,description=Cash moved in total over a finite schedule or per trigger otherwise,minimum=0" validate:"gte=0"`
	Rate       float64              `yaml:"rate,omitempty" json:"rate,omitempty" jsonschema:"title=Rate,description=Annual cash interest rate as a fraction"`
	Allocation []AllocationConfig   `yaml:"allocation,omitempty" json:"allocation,omitempty" jsonschema:"title=Allocation,description=Target weights. The unallocated remainder is kept in cash" validate:"dive"`
	Band       *BandConfig          `yaml:"band,omitempty" json:"band,omitempty" jsonschema:"title=Band,description=Relative tolerance around each target"`
	// Epoch defaults to rules.DefaultEpoch.
	Epoch optional.Option[time.Time] `yaml:"epoch,omitempty" json:"epoch,omitempty" jsonschema:"title=Epoch,description=First day of the dividends and cash interest schedules"`
}

type AllocationConfig struct {
	Symbol string  `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol" validate:"required"`
	Weight float64 `yaml:"weight" json:"weight" jsonschema:"title=Weight,minimum=0,maximum=1"`
}

type BandConfig struct {
	Lower float64 `yaml:"lower" json:"lower" jsonschema:"title=Lower,minimum=0"`
	Upper float64 `yaml:"upper" json:"upper" jsonschema:"title=Upper,minimum=0"`
}

// UnmarshalYAML implements custom unmarshaling for RuleConfig
func (r *RuleConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type ruleConfig struct {
		Kind       rules.Kind         `yaml:"kind"`
		Name       string             `yaml:"name"`
		Start      *time.Time         `yaml:"start"`
		Frequency  string             `yaml:"frequency"`
		Count      *int               `yaml:"count"`
		Symbol     string             `yaml:"symbol"`
		Quantity   int                `yaml:"quantity"`
		Amount     float64            `yaml:"amount"`
		Rate       float64            `yaml:"rate"`
		Allocation []AllocationConfig `yaml:"allocation"`
		Band       *BandConfig        `yaml:"band"`
		Epoch      *time.Time         `yaml:"epoch"`
	}

	var raw ruleConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}

	r.Kind = raw.Kind
	r.Name = raw.Name
	r.Frequency = raw.Frequency
	r.Symbol = raw.Symbol
	r.Quantity = raw.Quantity
	r.Amount = raw.Amount
	r.Rate = raw.Rate
	r.Allocation = raw.Allocation
	r.Band = raw.Band

	if raw.Start != nil {
		r.Start = optional.Some(*raw.Start)
	}

	if raw.Count != nil {
		r.Count = optional.Some(*raw.Count)
	}

	if raw.Epoch != nil {
		r.Epoch = optional.Some(*raw.Epoch)
	}

	return nil
}

// Build constructs the rule. defaultStart is used when the entry has no start.
func (r RuleConfig) Build(defaultStart time.Time, opts ...rules.Option) (*rules.Rule, error) {
	if r.Name != "" {
		opts = append(opts, rules.WithName(r.Name))
	}

	if epoch, err := r.Epoch.Take(); err == nil {
		opts = append(opts, rules.WithEpoch(epoch))
	}

	start := defaultStart
	if s, err := r.Start.Take(); err == nil {
		start = s
	}

	count := schedule.Infinite
	if n, err := r.Count.Take(); err == nil {
		count = n
	}

	symbol := marketdata.NormalizeSymbol(r.Symbol)

	switch r.Kind {
	case rules.KindDividends:
		return rules.NewDividends(opts...)
	case rules.KindCashInterest:
		return rules.NewCashInterest(r.Rate, opts...)
	}

	frequency, err := r.frequency()
	if err != nil {
		return nil, err
	}

	switch r.Kind {
	case rules.KindBuy:
		return rules.NewBuy(start, frequency, count, symbol, r.Quantity, opts...)
	case rules.KindClosePosition:
		if r.Count.IsNone() {
			return nil, errors.New(errors.ErrCodeMissingParameter, "close_position requires a count")
		}

		return rules.NewClosePosition(start, frequency, count, symbol, opts...)
	case rules.KindBalance:
		allocation := make([]rules.Allocation, 0, len(r.Allocation))
		for _, entry := range r.Allocation {
			allocation = append(allocation, rules.Allocation{
				Symbol: marketdata.NormalizeSymbol(entry.Symbol),
				Weight: entry.Weight,
			})
		}

		if r.Band != nil {
			opts = append(opts, rules.WithBand(r.Band.Lower, r.Band.Upper))
		}

		return rules.NewBalance(start, frequency, allocation, opts...)
	case rules.KindDeposit:
		return rules.NewDeposit(start, frequency, count, r.Amount, opts...)
	case rules.KindWithdraw:
		return rules.NewWithdraw(start, frequency, count, r.Amount, opts...)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedRule, "unsupported rule kind %q", r.Kind)
	}
}

func (r RuleConfig) frequency() (schedule.Frequency, error) {
	if r.Frequency == "" {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "%s requires a frequency", r.Kind)
	}

	return schedule.ParseFrequency(r.Frequency)
}
