// Package config loads the YAML description of a simulation: the initial
// portfolio, the market data cache and the ordered list of rules.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rules/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-rules/internal/rules"
	"github.com/rxtech-lab/argo-rules/internal/schedule"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/internal/version"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Version is the engine version or semver constraint the config was written for.
	Version     string                     `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Engine version or semver constraint this config requires"`
	Name        string                     `yaml:"name" json:"name" jsonschema:"title=Name,description=Name of the simulation" validate:"required"`
	InitialCash float64                    `yaml:"initial_cash" json:"initial_cash" jsonschema:"title=Initial Cash,description=Starting cash in USD,minimum=0" validate:"gte=0"`
	Start       time.Time                  `yaml:"start" json:"start" jsonschema:"title=Start,description=First simulated day" validate:"required"`
	End         optional.Option[time.Time] `yaml:"end,omitempty" json:"end,omitempty" jsonschema:"title=End,description=Last simulated day. Defaults to the last day with data"`
	Commission  Commission                 `yaml:"commission,omitempty" json:"commission,omitempty" jsonschema:"title=Commission,description=Commission model applied to trades"`
	Data        marketdata.CacheConfig     `yaml:"data" json:"data" jsonschema:"title=Data,description=Market data cache"`
	Rules       []RuleConfig               `yaml:"rules" json:"rules" jsonschema:"title=Rules,description=Rules executed in order on every trading day" validate:"required,min=1,dive"`
}

type Commission struct {
	Broker commission_fee.Broker `yaml:"broker,omitempty" json:"broker,omitempty" jsonschema:"title=Broker,description=The broker to use for commission calculations" validate:"omitempty,oneof=interactive_broker percentage zero_commission"`
	// Rate is only used by the percentage broker.
	Rate float64 `yaml:"rate,omitempty" json:"rate,omitempty" jsonschema:"title=Rate,description=Fraction of the trade value charged by the percentage broker,minimum=0" validate:"gte=0"`
}

// Fee returns the commission model of the config. Defaults to zero commission.
func (c Commission) Fee() commission_fee.CommissionFee {
	if c.Broker == commission_fee.BrokerPercentage && c.Rate > 0 {
		return commission_fee.NewPercentageCommissionFee(c.Rate)
	}

	return commission_fee.GetCommissionFeeHandler(c.Broker)
}

// UnmarshalYAML implements custom unmarshaling for Config
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type config struct {
		Version     string                 `yaml:"version"`
		Name        string                 `yaml:"name"`
		InitialCash float64                `yaml:"initial_cash"`
		Start       time.Time              `yaml:"start"`
		End         *time.Time             `yaml:"end"`
		Commission  Commission             `yaml:"commission"`
		Data        marketdata.CacheConfig `yaml:"data"`
		Rules       []RuleConfig           `yaml:"rules"`
	}

	var raw config
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.Version = raw.Version
	c.Name = raw.Name
	c.InitialCash = raw.InitialCash
	c.Start = raw.Start
	c.Commission = raw.Commission
	c.Data = raw.Data
	c.Rules = raw.Rules

	if raw.End != nil {
		c.End = optional.Some(*raw.End)
	}

	return nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct constraints, the simulated period and the
// engine version requirement. Rule parameters are checked by BuildRules.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if end, err := c.End.Take(); err == nil && end.Before(c.Start) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "end %s is before start %s",
			end.Format(types.DateFormat), c.Start.Format(types.DateFormat))
	}

	if err := version.CheckVersionCompatibility(version.Version, c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "config is not compatible with this engine", err)
	}

	return nil
}

// Period returns the simulated days. A zero end means the last day with data.
func (c *Config) Period() (start time.Time, end time.Time) {
	start = types.Day(c.Start)

	if e, err := c.End.Take(); err == nil {
		end = types.Day(e)
	}

	return start, end
}

// BuildRules turns the rule entries into rules, in config order. opts are
// applied to every rule before the entry's own settings. When the config
// has an end, infinite schedules are generated up to it.
func (c *Config) BuildRules(opts ...rules.Option) ([]*rules.Rule, error) {
	start, end := c.Period()

	built := make([]*rules.Rule, 0, len(c.Rules))

	for i, entry := range c.Rules {
		ruleOpts := append([]rules.Option{}, opts...)
		if !end.IsZero() {
			ruleOpts = append(ruleOpts, rules.WithScheduleOptions(schedule.WithHorizon(end)))
		}

		rule, err := entry.Build(start, ruleOpts...)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, entry.Kind, err)
		}

		built = append(built, rule)
	}

	return built, nil
}
