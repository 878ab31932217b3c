package types

import "time"

type TransactionKind string

const (
	TransactionKindBuy      TransactionKind = "BUY"
	TransactionKindSell     TransactionKind = "SELL"
	TransactionKindDeposit  TransactionKind = "DEPOSIT"
	TransactionKindWithdraw TransactionKind = "WITHDRAW"
)

// Transaction is one entry of the portfolio journal.
type Transaction struct {
	// ID is a unique identifier of the transaction.
	ID string `yaml:"id" json:"id" csv:"id"`
	// Time is the trading day the transaction was booked on.
	Time time.Time       `yaml:"time" json:"time" csv:"time"`
	Kind TransactionKind `yaml:"kind" json:"kind" csv:"kind"`
	// Symbol is empty for cash transactions.
	Symbol   string  `yaml:"symbol" json:"symbol" csv:"symbol"`
	Quantity int     `yaml:"quantity" json:"quantity" csv:"quantity"`
	Price    float64 `yaml:"price" json:"price" csv:"price"`
	// Amount is the signed cash movement, fee included. Positive values add cash.
	Amount    float64 `yaml:"amount" json:"amount" csv:"amount"`
	Fee       float64 `yaml:"fee" json:"fee" csv:"fee"`
	CashAfter float64 `yaml:"cash_after" json:"cash_after" csv:"cash_after"`
	Memo      string  `yaml:"memo" json:"memo" csv:"memo"`
	// Rule is the name of the rule that caused the transaction, if any.
	Rule string `yaml:"rule" json:"rule" csv:"rule"`
}

// IsTrade reports whether the transaction moved shares.
func (t Transaction) IsTrade() bool {
	return t.Kind == TransactionKindBuy || t.Kind == TransactionKindSell
}
