package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Bar is one trading day of market data for a symbol.
type Bar struct {
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time     time.Time `yaml:"time" json:"time" csv:"time"`
	Open     float64   `yaml:"open" json:"open" csv:"open"`
	High     float64   `yaml:"high" json:"high" csv:"high"`
	Low      float64   `yaml:"low" json:"low" csv:"low"`
	Close    float64   `yaml:"close" json:"close" csv:"close"`
	AdjClose float64   `yaml:"adj_close" json:"adj_close" csv:"adj_close"`
	Volume   float64   `yaml:"volume" json:"volume" csv:"volume"`
	// Dividend is the per-share cash dividend going ex on this day, zero otherwise.
	Dividend float64 `yaml:"dividend" json:"dividend" csv:"dividend"`
}

// Field names a column of a Bar.
type Field string

const (
	FieldOpen     Field = "open"
	FieldHigh     Field = "high"
	FieldLow      Field = "low"
	FieldClose    Field = "close"
	FieldAdjClose Field = "adj_close"
	FieldVolume   Field = "volume"
	FieldDividend Field = "dividend"
)

// AllFields lists every supported field, in column order.
var AllFields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldAdjClose, FieldVolume, FieldDividend}

// ParseField accepts the field name in any case, along with the "Dividends" and
// "Adj Close" spellings used by most quote vendors.
func ParseField(s string) (Field, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch normalized {
	case "open":
		return FieldOpen, nil
	case "high":
		return FieldHigh, nil
	case "low":
		return FieldLow, nil
	case "close":
		return FieldClose, nil
	case "adj_close", "adjclose":
		return FieldAdjClose, nil
	case "volume":
		return FieldVolume, nil
	case "dividend", "dividends":
		return FieldDividend, nil
	default:
		return "", fmt.Errorf("unknown field %q", s)
	}
}

// Value returns the bar's value for the given field.
func (b Bar) Value(field Field) float64 {
	switch field {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldAdjClose:
		return b.AdjClose
	case FieldVolume:
		return b.Volume
	case FieldDividend:
		return b.Dividend
	default:
		return 0
	}
}

// Series is the daily history of one symbol, ordered by day with at most one bar per day.
type Series struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Bars   []Bar  `yaml:"bars" json:"bars"`
}

// NewSeries builds a Series from bars in any order. Bar times are truncated to
// the calendar day; when two bars share a day the later one in the input wins.
func NewSeries(symbol string, bars []Bar) Series {
	byDay := make(map[time.Time]Bar, len(bars))

	for _, bar := range bars {
		bar.Time = Day(bar.Time)
		bar.Symbol = symbol
		byDay[bar.Time] = bar
	}

	sorted := make([]Bar, 0, len(byDay))
	for _, bar := range byDay {
		sorted = append(sorted, bar)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	return Series{
		Symbol: symbol,
		Bars:   sorted,
	}
}

// Len returns the number of trading days in the series.
func (s Series) Len() int {
	return len(s.Bars)
}

// First returns the earliest bar.
func (s Series) First() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}

	return s.Bars[0], true
}

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}

	return s.Bars[len(s.Bars)-1], true
}

// At returns the bar of the given calendar day.
func (s Series) At(day time.Time) (Bar, bool) {
	day = Day(day)

	idx := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Time.Before(day)
	})

	if idx < len(s.Bars) && s.Bars[idx].Time.Equal(day) {
		return s.Bars[idx], true
	}

	return Bar{}, false
}

// Between returns the bars whose day lies within [start, end]. A zero start
// or end leaves that side open.
func (s Series) Between(start, end time.Time) Series {
	bars := make([]Bar, 0, len(s.Bars))

	for _, bar := range s.Bars {
		if !start.IsZero() && bar.Time.Before(Day(start)) {
			continue
		}

		if !end.IsZero() && bar.Time.After(Day(end)) {
			continue
		}

		bars = append(bars, bar)
	}

	return Series{
		Symbol: s.Symbol,
		Bars:   bars,
	}
}
