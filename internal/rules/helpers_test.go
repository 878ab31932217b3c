package rules

import (
	"time"

	"github.com/rxtech-lab/argo-rules/internal/portfolio"
	"github.com/rxtech-lab/argo-rules/internal/quote"
	"github.com/rxtech-lab/argo-rules/internal/schedule"
	"github.com/rxtech-lab/argo-rules/internal/types"
)

func day(s string) time.Time {
	return types.MustParseDay(s)
}

func freq(descriptor string) schedule.Frequency {
	return schedule.MustParseFrequency(descriptor)
}

// horizon bounds infinite schedules so tests do not depend on the clock.
func horizon(s string) Option {
	return WithScheduleOptions(schedule.WithHorizon(day(s)))
}

func snapshotOn(date string, prices map[string]float64, dividends map[string]float64) *quote.Snapshot {
	return quote.NewSnapshot(day(date), prices, dividends)
}

// runDays marks the ledger and runs the rule on every calendar day in
// [from, to], returning how many times it fired.
func runDays(r *Rule, l *portfolio.Ledger, from string, to string, prices map[string]float64) (int, error) {
	fired := 0

	for d := day(from); !d.After(day(to)); d = d.AddDate(0, 0, 1) {
		q := quote.NewSnapshot(d, prices, nil)
		l.Mark(q)

		ok, err := r.Run(l, q)
		if err != nil {
			return fired, err
		}

		if ok {
			fired++
		}
	}

	return fired, nil
}

func transactions(l *portfolio.Ledger) []types.Transaction {
	txs, err := l.Journal().Transactions()
	if err != nil {
		panic(err)
	}

	return txs
}
