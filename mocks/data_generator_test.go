package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Days = 100

	series := gen.Generate(config)

	if series.Len() != 100 {
		t.Errorf("expected 100 trading days, got %d", series.Len())
	}

	for i := 1; i < series.Len(); i++ {
		if !series.Bars[i].Time.After(series.Bars[i-1].Time) {
			t.Errorf("data not in chronological order at index %d", i)
		}
	}

	for i, bar := range series.Bars {
		if bar.Symbol != config.Symbol {
			t.Errorf("expected symbol %s at index %d, got %s", config.Symbol, i, bar.Symbol)
		}

		if bar.Time.Weekday() == time.Saturday || bar.Time.Weekday() == time.Sunday {
			t.Errorf("weekend day generated at index %d: %s", i, bar.Time)
		}

		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, bar.Open, bar.High, bar.Low, bar.Close)
		}

		if bar.High < bar.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, bar.High, bar.Low)
		}
	}
}

func TestDataGenerator_Dividends(t *testing.T) {
	gen := NewDataGenerator(7)
	config := DefaultConfig()
	config.Days = 126
	config.DividendEvery = 63

	series := gen.Generate(config)

	payouts := 0
	for i, bar := range series.Bars {
		if bar.Dividend > 0 {
			payouts++

			if (i+1)%63 != 0 {
				t.Errorf("unexpected dividend at index %d", i)
			}
		}
	}

	if payouts != 2 {
		t.Errorf("expected 2 dividend days, got %d", payouts)
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Days = 50

	first := NewDataGenerator(123).Generate(config)
	second := NewDataGenerator(123).Generate(config)

	for i := range first.Bars {
		if first.Bars[i] != second.Bars[i] {
			t.Errorf("same seed produced different data at index %d", i)
		}
	}
}

func TestDataGenerator_Different_Seeds(t *testing.T) {
	config := DefaultConfig()
	config.Days = 50

	first := NewDataGenerator(1).Generate(config)
	second := NewDataGenerator(2).Generate(config)

	same := true
	for i := range first.Bars {
		if first.Bars[i].Close != second.Bars[i].Close {
			same = false

			break
		}
	}

	if same {
		t.Error("different seeds produced identical data")
	}
}

func TestGenerateYears(t *testing.T) {
	series := GenerateYears("SPY", 2)

	if series.Len() != 504 {
		t.Errorf("expected 504 trading days, got %d", series.Len())
	}

	if series.Symbol != "SPY" {
		t.Errorf("expected symbol SPY, got %s", series.Symbol)
	}
}

func TestGenerateMultiSymbol(t *testing.T) {
	symbols := []string{"SPY", "BND", "GLD"}
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Days = 100

	series := gen.GenerateMultiSymbol(symbols, config)

	if len(series) != len(symbols) {
		t.Fatalf("expected %d series, got %d", len(symbols), len(series))
	}

	for i, s := range series {
		if s.Symbol != symbols[i] {
			t.Errorf("expected symbol %s, got %s", symbols[i], s.Symbol)
		}

		if s.Len() != config.Days {
			t.Errorf("expected %d trading days for %s, got %d", config.Days, s.Symbol, s.Len())
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Days != 252 {
		t.Errorf("expected default days 252, got %d", config.Days)
	}

	if config.Symbol != "TEST" {
		t.Errorf("expected default symbol TEST, got %s", config.Symbol)
	}

	if config.InitialPrice != 100.0 {
		t.Errorf("expected default initial price 100.0, got %f", config.InitialPrice)
	}
}
