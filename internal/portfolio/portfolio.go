// Package portfolio holds the cash and share positions mutated by rules.
package portfolio

// Portfolio is the capability set rules use to read and mutate holdings.
// Quantities are whole shares. Price reports a non-positive value when the
// symbol has no quote for the current day.
type Portfolio interface {
	Buy(symbol string, quantity int, memo string) error
	Sell(symbol string, quantity int, memo string) error
	Deposit(amount float64, memo string) error
	Withdraw(amount float64, memo string) error
	// Position returns the number of shares held.
	Position(symbol string) int
	// Holding returns the market value of the position.
	Holding(symbol string) float64
	Price(symbol string) float64
	// Value returns cash plus the market value of every position.
	Value() float64
	Cash() float64
	// Tickers returns the sorted symbols with a non-zero position.
	Tickers() []string
}
