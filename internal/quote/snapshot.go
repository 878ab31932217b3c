// Package quote provides the per-day market view handed to rules.
package quote

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/types"
)

// Snapshot is the immutable market view of one trading day.
type Snapshot struct {
	date      time.Time
	prices    map[string]float64
	dividends map[string]float64
}

// NewSnapshot copies the given maps. Either map may be nil.
func NewSnapshot(date time.Time, prices map[string]float64, dividends map[string]float64) *Snapshot {
	snapshot := &Snapshot{
		date:      types.Day(date),
		prices:    make(map[string]float64, len(prices)),
		dividends: make(map[string]float64, len(dividends)),
	}

	for symbol, price := range prices {
		snapshot.prices[symbol] = price
	}

	for symbol, dividend := range dividends {
		snapshot.dividends[symbol] = dividend
	}

	return snapshot
}

func (s *Snapshot) Date() time.Time {
	return s.date
}

// Price returns the close of symbol, or 0 when the symbol did not trade.
func (s *Snapshot) Price(symbol string) float64 {
	return s.prices[symbol]
}

func (s *Snapshot) HasPrice(symbol string) bool {
	_, ok := s.prices[symbol]

	return ok
}

// Dividend returns the per-share dividend of symbol going ex on this day, or 0.
func (s *Snapshot) Dividend(symbol string) float64 {
	return s.dividends[symbol]
}

// Symbols returns the sorted symbols with a price on this day.
func (s *Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.prices))
	for symbol := range s.prices {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}
