package types

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
)

// Table aligns one field of several series by calendar day. Rows are the
// union of the series' trading days; a cell is None when the symbol has no
// bar on that day.
type Table struct {
	Field   Field
	Symbols []string
	Days    []time.Time
	columns map[string][]optional.Option[float64]
}

// JoinSeries aligns the given field of each series. Column order follows the
// order of the series argument.
func JoinSeries(field Field, series ...Series) *Table {
	daySet := make(map[time.Time]struct{})

	for _, s := range series {
		for _, bar := range s.Bars {
			daySet[bar.Time] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	table := &Table{
		Field:   field,
		Symbols: make([]string, 0, len(series)),
		Days:    days,
		columns: make(map[string][]optional.Option[float64], len(series)),
	}

	for _, s := range series {
		column := make([]optional.Option[float64], len(days))

		for i, day := range days {
			if bar, ok := s.At(day); ok {
				column[i] = optional.Some(bar.Value(field))
			} else {
				column[i] = optional.None[float64]()
			}
		}

		table.Symbols = append(table.Symbols, s.Symbol)
		table.columns[s.Symbol] = column
	}

	return table
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Days)
}

// Cell returns the value of symbol on the i-th row.
func (t *Table) Cell(i int, symbol string) optional.Option[float64] {
	column, ok := t.columns[symbol]
	if !ok || i < 0 || i >= len(column) {
		return optional.None[float64]()
	}

	return column[i]
}

// Value returns the value of symbol on the given day.
func (t *Table) Value(day time.Time, symbol string) (float64, bool) {
	day = Day(day)

	idx := sort.Search(len(t.Days), func(i int) bool {
		return !t.Days[i].Before(day)
	})
	if idx >= len(t.Days) || !t.Days[idx].Equal(day) {
		return 0, false
	}

	cell := t.Cell(idx, symbol)
	if cell.IsNone() {
		return 0, false
	}

	return cell.Unwrap(), true
}

// Row returns the present cells of the i-th row keyed by symbol.
func (t *Table) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(t.Symbols))

	for _, symbol := range t.Symbols {
		if cell := t.Cell(i, symbol); cell.IsSome() {
			row[symbol] = cell.Unwrap()
		}
	}

	return row
}
