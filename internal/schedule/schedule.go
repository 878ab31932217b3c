// Package schedule computes the trigger dates of a rule.
//
// A schedule is either finite, holding exactly count dates stepped by a
// frequency from a start date, or infinite, holding every on-offset date
// from the start date up to a horizon frozen at construction time.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
)

// Infinite is the repeat count of a schedule without a fixed number of dates.
const Infinite = -1

type options struct {
	horizon time.Time
	clock   func() time.Time
}

type Option func(*options)

// WithHorizon sets the last day an infinite schedule may contain.
func WithHorizon(horizon time.Time) Option {
	return func(o *options) {
		o.horizon = horizon
	}
}

// WithClock sets the clock used to compute the default horizon of an infinite schedule.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

type Schedule struct {
	start     time.Time
	frequency Frequency
	count     int
	dates     []time.Time
}

// New builds a schedule starting at start. count is either positive or Infinite.
func New(start time.Time, frequency Frequency, count int, opts ...Option) (*Schedule, error) {
	if frequency == nil {
		return nil, errors.New(errors.ErrCodeInvalidFrequency, "frequency is required")
	}

	if count == 0 || count < Infinite {
		return nil, errors.Newf(errors.ErrCodeInvalidRepeatCount, "repeat count must be positive or %d, got %d", Infinite, count)
	}

	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	schedule := &Schedule{
		start:     types.Day(start),
		frequency: frequency,
		count:     count,
	}

	if count == Infinite {
		horizon := o.horizon
		if horizon.IsZero() {
			horizon = o.clock()
		}

		schedule.dates = untilHorizon(schedule.start, frequency, types.Day(horizon))

		return schedule, nil
	}

	dates, err := firstN(schedule.start, frequency, count)
	if err != nil {
		return nil, err
	}

	schedule.dates = dates

	return schedule, nil
}

// MustNew is like New but panics on error.
func MustNew(start time.Time, frequency Frequency, count int, opts ...Option) *Schedule {
	schedule, err := New(start, frequency, count, opts...)
	if err != nil {
		panic(err)
	}

	return schedule
}

func firstN(start time.Time, frequency Frequency, count int) ([]time.Time, error) {
	dates := make([]time.Time, 0, count)

	current := frequency.Rollforward(start)
	for len(dates) < count {
		if current.IsZero() {
			return nil, errors.Newf(errors.ErrCodeInvalidFrequency,
				"frequency %s yields only %d dates after %s, want %d",
				frequency, len(dates), start.Format(types.DateFormat), count)
		}

		dates = append(dates, current)
		current = frequency.Next(current)
	}

	return dates, nil
}

func untilHorizon(start time.Time, frequency Frequency, horizon time.Time) []time.Time {
	var dates []time.Time

	for current := frequency.Rollforward(start); !current.IsZero() && !current.After(horizon); current = frequency.Next(current) {
		dates = append(dates, current)
	}

	return dates
}

func (s *Schedule) Start() time.Time {
	return s.start
}

func (s *Schedule) Frequency() Frequency {
	return s.frequency
}

// Count returns the repeat count the schedule was built with.
func (s *Schedule) Count() int {
	return s.count
}

func (s *Schedule) Infinite() bool {
	return s.count == Infinite
}

// Dates returns a copy of the trigger dates in increasing order.
func (s *Schedule) Dates() []time.Time {
	dates := make([]time.Time, len(s.dates))
	copy(dates, s.dates)

	return dates
}

func (s *Schedule) Len() int {
	return len(s.dates)
}

func (s *Schedule) First() (time.Time, bool) {
	if len(s.dates) == 0 {
		return time.Time{}, false
	}

	return s.dates[0], true
}

func (s *Schedule) Last() (time.Time, bool) {
	if len(s.dates) == 0 {
		return time.Time{}, false
	}

	return s.dates[len(s.dates)-1], true
}

// Contains reports whether the calendar day of t is a trigger date.
func (s *Schedule) Contains(t time.Time) bool {
	day := types.Day(t)

	idx := sort.Search(len(s.dates), func(i int) bool {
		return !s.dates[i].Before(day)
	})

	return idx < len(s.dates) && s.dates[idx].Equal(day)
}

func (s *Schedule) String() string {
	count := fmt.Sprintf("%d", s.count)
	if s.Infinite() {
		count = "inf"
	}

	return fmt.Sprintf("%s from %s x%s", s.frequency, s.start.Format(types.DateFormat), count)
}
