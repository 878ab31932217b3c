package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/types"
)

// DataGenerator generates realistic daily series for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a daily series is generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "SPY", "BND")
	Symbol string
	// Start is the first calendar day; weekends are skipped
	Start time.Time
	// Days is the number of trading days to generate
	Days int
	// InitialPrice is the starting close
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per day
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// DividendYield is the annual dividend yield paid out in equal parts, 0 disables dividends
	DividendYield float64
	// DividendEvery is the number of trading days between two ex-dividend days
	DividendEvery int
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		Start:          time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:           252,
		InitialPrice:   100.0,
		Volatility:     0.01, // 1% per day
		Trend:          0.0,  // neutral
		VolumeBase:     1000000,
		VolumeVariance: 0.3,
		DividendYield:  0.02,
		DividendEvery:  63, // quarterly
	}
}

// Generate creates a daily Series based on the configuration.
// Closes follow a geometric Brownian motion model.
func (g *DataGenerator) Generate(config GeneratorConfig) types.Series {
	bars := make([]types.Bar, 0, config.Days)
	currentPrice := config.InitialPrice
	day := types.Day(config.Start)

	for i := 0; i < config.Days; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}

		open := currentPrice

		// Box-Muller transform for normal distribution
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Days)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		dividend := 0.0
		if config.DividendYield > 0 && config.DividendEvery > 0 && (i+1)%config.DividendEvery == 0 {
			payouts := 252.0 / float64(config.DividendEvery)
			dividend = roundToDecimals(close*config.DividendYield/payouts, 4)
		}

		bars = append(bars, types.Bar{
			Symbol:   config.Symbol,
			Time:     day,
			Open:     roundToDecimals(open, 4),
			High:     roundToDecimals(high, 4),
			Low:      roundToDecimals(low, 4),
			Close:    roundToDecimals(close, 4),
			AdjClose: roundToDecimals(close, 4),
			Volume:   roundToDecimals(volume, 2),
			Dividend: dividend,
		})

		currentPrice = close
		day = day.AddDate(0, 0, 1)
	}

	return types.NewSeries(config.Symbol, bars)
}

// GenerateMultiSymbol generates one series per symbol over the same trading days.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.Series {
	series := make([]types.Series, 0, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		// Vary initial price and volatility slightly per symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		series = append(series, g.Generate(config))
	}

	return series
}

// GenerateYears generates the given number of 252-day years for symbol
// with default settings, for benchmarking.
func GenerateYears(symbol string, years int) types.Series {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol
	config.Days = 252 * years

	return gen.Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
