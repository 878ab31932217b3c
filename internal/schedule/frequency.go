package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
)

// Frequency is a recurrence rule over calendar days. All returned days are
// midnight UTC.
type Frequency interface {
	// Rollforward returns the first on-offset day on or after t.
	Rollforward(t time.Time) time.Time
	// Next returns the first on-offset day strictly after t.
	Next(t time.Time) time.Time
	String() string
}

const cronPrefix = "cron:"

var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// ParseFrequency parses a frequency descriptor such as "B", "W-FRI", "BMS",
// "2QS" or "cron:0 0 1,15 * *".
func ParseFrequency(descriptor string) (Frequency, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, errors.New(errors.ErrCodeInvalidFrequency, "frequency must not be empty")
	}

	if strings.HasPrefix(descriptor, cronPrefix) {
		return newCronFrequency(strings.TrimSpace(strings.TrimPrefix(descriptor, cronPrefix)))
	}

	code := strings.ToUpper(descriptor)

	digits := 0
	for digits < len(code) && code[digits] >= '0' && code[digits] <= '9' {
		digits++
	}

	multiple := 1
	if digits > 0 {
		n, err := strconv.Atoi(code[:digits])
		if err != nil || n <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidFrequency, "invalid frequency multiple in %q", descriptor)
		}

		multiple = n
	}

	base, err := parseBase(code[digits:])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidFrequency, err, "invalid frequency %q", descriptor)
	}

	if multiple == 1 {
		return base, nil
	}

	return &multipleFrequency{base: base, n: multiple}, nil
}

// MustParseFrequency is like ParseFrequency but panics on error.
func MustParseFrequency(descriptor string) Frequency {
	freq, err := ParseFrequency(descriptor)
	if err != nil {
		panic(err)
	}

	return freq
}

func parseBase(code string) (Frequency, error) {
	switch code {
	case "D":
		return dailyFrequency{}, nil
	case "B":
		return businessDayFrequency{}, nil
	case "W":
		return weeklyFrequency{anchor: time.Sunday}, nil
	case "MS":
		return periodFrequency{code: code, months: 1}, nil
	case "BMS":
		return periodFrequency{code: code, months: 1, business: true}, nil
	case "M", "ME":
		return periodFrequency{code: code, months: 1, end: true}, nil
	case "BM", "BME":
		return periodFrequency{code: code, months: 1, end: true, business: true}, nil
	case "QS":
		return periodFrequency{code: code, months: 3}, nil
	case "BQS":
		return periodFrequency{code: code, months: 3, business: true}, nil
	case "Q", "QE":
		return periodFrequency{code: code, months: 3, end: true}, nil
	case "YS", "AS":
		return periodFrequency{code: code, months: 12}, nil
	case "BYS":
		return periodFrequency{code: code, months: 12, business: true}, nil
	case "Y", "YE", "A":
		return periodFrequency{code: code, months: 12, end: true}, nil
	}

	if anchor, ok := strings.CutPrefix(code, "W-"); ok {
		weekday, found := weekdays[anchor]
		if !found {
			return nil, errors.Newf(errors.ErrCodeInvalidFrequency, "unknown weekday %q", anchor)
		}

		return weeklyFrequency{anchor: weekday}, nil
	}

	return nil, errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency code %q", code)
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()

	return wd != time.Saturday && wd != time.Sunday
}

type dailyFrequency struct{}

func (dailyFrequency) Rollforward(t time.Time) time.Time {
	return types.Day(t)
}

func (dailyFrequency) Next(t time.Time) time.Time {
	return types.Day(t).AddDate(0, 0, 1)
}

func (dailyFrequency) String() string {
	return "D"
}

type businessDayFrequency struct{}

func (businessDayFrequency) Rollforward(t time.Time) time.Time {
	day := types.Day(t)
	for !isBusinessDay(day) {
		day = day.AddDate(0, 0, 1)
	}

	return day
}

func (f businessDayFrequency) Next(t time.Time) time.Time {
	return f.Rollforward(types.Day(t).AddDate(0, 0, 1))
}

func (businessDayFrequency) String() string {
	return "B"
}

type weeklyFrequency struct {
	anchor time.Weekday
}

func (f weeklyFrequency) Rollforward(t time.Time) time.Time {
	day := types.Day(t)
	shift := (int(f.anchor) - int(day.Weekday()) + 7) % 7

	return day.AddDate(0, 0, shift)
}

func (f weeklyFrequency) Next(t time.Time) time.Time {
	return f.Rollforward(types.Day(t).AddDate(0, 0, 1))
}

func (f weeklyFrequency) String() string {
	if f.anchor == time.Sunday {
		return "W"
	}

	return "W-" + strings.ToUpper(f.anchor.String()[:3])
}

// periodFrequency anchors on the start or end of calendar periods of the
// given length in months (month, quarter or year), optionally moved to the
// nearest business day inside the period.
type periodFrequency struct {
	code     string
	months   int
	end      bool
	business bool
}

// anchorOf returns the on-offset day of the period containing day.
func (f periodFrequency) anchorOf(day time.Time) time.Time {
	firstMonth := (int(day.Month())-1)/f.months*f.months + 1

	if !f.end {
		anchor := time.Date(day.Year(), time.Month(firstMonth), 1, 0, 0, 0, 0, time.UTC)
		for f.business && !isBusinessDay(anchor) {
			anchor = anchor.AddDate(0, 0, 1)
		}

		return anchor
	}

	// Day zero of the following month is the last day of the period.
	anchor := time.Date(day.Year(), time.Month(firstMonth+f.months), 0, 0, 0, 0, 0, time.UTC)
	for f.business && !isBusinessDay(anchor) {
		anchor = anchor.AddDate(0, 0, -1)
	}

	return anchor
}

func (f periodFrequency) Rollforward(t time.Time) time.Time {
	day := types.Day(t)

	anchor := f.anchorOf(day)
	if !anchor.Before(day) {
		return anchor
	}

	firstMonth := (int(day.Month())-1)/f.months*f.months + 1
	nextPeriod := time.Date(day.Year(), time.Month(firstMonth+f.months), 1, 0, 0, 0, 0, time.UTC)

	return f.anchorOf(nextPeriod)
}

func (f periodFrequency) Next(t time.Time) time.Time {
	return f.Rollforward(types.Day(t).AddDate(0, 0, 1))
}

func (f periodFrequency) String() string {
	return f.code
}

type multipleFrequency struct {
	base Frequency
	n    int
}

func (f *multipleFrequency) Rollforward(t time.Time) time.Time {
	return f.base.Rollforward(t)
}

func (f *multipleFrequency) Next(t time.Time) time.Time {
	next := f.base.Next(t)
	for i := 1; i < f.n && !next.IsZero(); i++ {
		next = f.base.Next(next)
	}

	return next
}

func (f *multipleFrequency) String() string {
	return strconv.Itoa(f.n) + f.base.String()
}

// cronFrequency triggers on every calendar day matched by a standard cron
// expression. The time-of-day fields only decide whether a day matches.
type cronFrequency struct {
	expr     string
	schedule cron.Schedule
}

func newCronFrequency(expr string) (*cronFrequency, error) {
	parsed, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidFrequency, err, "invalid cron expression %q", expr)
	}

	return &cronFrequency{expr: expr, schedule: parsed}, nil
}

// Rollforward returns the zero time when the expression never matches again.
func (f *cronFrequency) Rollforward(t time.Time) time.Time {
	day := types.Day(t)

	next := f.schedule.Next(day.Add(-time.Second))
	if next.IsZero() {
		return time.Time{}
	}

	return types.Day(next)
}

func (f *cronFrequency) Next(t time.Time) time.Time {
	return f.Rollforward(types.Day(t).AddDate(0, 0, 1))
}

func (f *cronFrequency) String() string {
	return cronPrefix + f.expr
}
