package quote

import (
	"time"

	"github.com/rxtech-lab/argo-rules/internal/types"
)

// Feed replays aligned close and dividend tables one trading day at a time.
type Feed struct {
	closes    *types.Table
	dividends *types.Table
	rows      []int
}

// NewFeed builds a feed over the rows of closes whose day lies in
// [start, end]. A zero start or end leaves that side open. dividends may be
// nil, in which case every dividend reads as zero.
func NewFeed(closes *types.Table, dividends *types.Table, start, end time.Time) *Feed {
	feed := &Feed{
		closes:    closes,
		dividends: dividends,
	}

	if closes == nil {
		return feed
	}

	for i, day := range closes.Days {
		if !start.IsZero() && day.Before(types.Day(start)) {
			continue
		}

		if !end.IsZero() && day.After(types.Day(end)) {
			continue
		}

		feed.rows = append(feed.rows, i)
	}

	return feed
}

// Len returns the number of trading days in the feed.
func (f *Feed) Len() int {
	return len(f.rows)
}

// Day returns the date of the i-th trading day.
func (f *Feed) Day(i int) time.Time {
	return f.closes.Days[f.rows[i]]
}

// At returns the snapshot of the i-th trading day.
func (f *Feed) At(i int) *Snapshot {
	row := f.rows[i]
	day := f.closes.Days[row]
	prices := f.closes.Row(row)

	dividends := make(map[string]float64)

	if f.dividends != nil {
		for _, symbol := range f.dividends.Symbols {
			if value, ok := f.dividends.Value(day, symbol); ok && value != 0 {
				dividends[symbol] = value
			}
		}
	}

	return NewSnapshot(day, prices, dividends)
}
