package rules

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	MemoBuy            = "Scheduled buy"
	MemoClosePosition  = "Closing position"
	MemoDeposit        = "Scheduled deposit"
	MemoWithdraw       = "Scheduled withdrawal"
	MemoRebalancing    = "Rebalancing"
	MemoCashRebalance  = "Cash rebalancing"
	MemoCashInterest   = "Monthly cash interest rate."
	dividendMemoFormat = "%s dividends of $%s x %d"
)

var memoPrinter = message.NewPrinter(language.English)

// dividendMemo renders e.g. "SPY dividends of $1.4056 x 1,200".
func dividendMemo(symbol string, dividend float64, quantity int) string {
	return memoPrinter.Sprintf(dividendMemoFormat, symbol, strconv.FormatFloat(dividend, 'f', -1, 64), quantity)
}
