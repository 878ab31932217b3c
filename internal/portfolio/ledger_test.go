package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/rxtech-lab/argo-rules/internal/portfolio/commission_fee"
	"github.com/rxtech-lab/argo-rules/internal/quote"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/mocks"
	argoErrors "github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type LedgerTestSuite struct {
	suite.Suite
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func snapshot(day string, prices map[string]float64) *quote.Snapshot {
	return quote.NewSnapshot(types.MustParseDay(day), prices, nil)
}

func (suite *LedgerTestSuite) transactions(l *Ledger) []types.Transaction {
	txs, err := l.Journal().Transactions()
	suite.Require().NoError(err)

	return txs
}

func (suite *LedgerTestSuite) TestBuy() {
	l := NewLedger(10000)
	l.Mark(snapshot("2020-01-02", map[string]float64{"SPY": 100}))
	l.Attribute("monthly-buy")

	suite.Require().NoError(l.Buy("SPY", 10, "Buy"))
	suite.Equal(9000.0, l.Cash())
	suite.Equal(10, l.Position("SPY"))
	suite.Equal(1000.0, l.Holding("SPY"))
	suite.Equal(10000.0, l.Value())
	suite.Equal([]string{"SPY"}, l.Tickers())

	txs := suite.transactions(l)
	suite.Require().Len(txs, 1)
	suite.Equal(types.TransactionKindBuy, txs[0].Kind)
	suite.Equal(-1000.0, txs[0].Amount)
	suite.Equal(9000.0, txs[0].CashAfter)
	suite.Equal("monthly-buy", txs[0].Rule)
	suite.Equal("Buy", txs[0].Memo)
	suite.True(txs[0].Time.Equal(types.MustParseDay("2020-01-02")))
	suite.NotEmpty(txs[0].ID)
}

func (suite *LedgerTestSuite) TestBuyErrors() {
	tests := []struct {
		name     string
		symbol   string
		quantity int
		code     argoErrors.ErrorCode
	}{
		{name: "negative quantity", symbol: "SPY", quantity: -1, code: argoErrors.ErrCodeInvalidQuantity},
		{name: "no price", symbol: "QQQ", quantity: 1, code: argoErrors.ErrCodeMarketDataMissing},
		{name: "insufficient cash", symbol: "SPY", quantity: 11, code: argoErrors.ErrCodeInsufficientCash},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			l := NewLedger(1000)
			l.Mark(snapshot("2020-01-02", map[string]float64{"SPY": 100}))

			err := l.Buy(tc.symbol, tc.quantity, "Buy")
			suite.True(argoErrors.HasCode(err, tc.code), "got %v", err)
			suite.Equal(1000.0, l.Cash())
			suite.Empty(l.Tickers())
		})
	}
}

func (suite *LedgerTestSuite) TestBuyZeroQuantityIsNoop() {
	l := NewLedger(1000)

	suite.NoError(l.Buy("SPY", 0, "Buy"))
	suite.Empty(suite.transactions(l))
}

func (suite *LedgerTestSuite) TestBuyCapsQuantityToCoverCommission() {
	l := NewLedger(1000, WithCommission(commission_fee.NewPercentageCommissionFee(0.001)))
	l.Mark(snapshot("2020-01-02", map[string]float64{"SPY": 100}))

	suite.Require().NoError(l.Buy("SPY", 10, "Rebalancing"))
	suite.Equal(9, l.Position("SPY"))
	suite.InDelta(1000-900-0.9, l.Cash(), 1e-9)

	txs := suite.transactions(l)
	suite.Require().Len(txs, 1)
	suite.InDelta(0.9, txs[0].Fee, 1e-9)
	suite.InDelta(-900.9, txs[0].Amount, 1e-9)
}

func (suite *LedgerTestSuite) TestBuyExactCashIsAccepted() {
	l := NewLedger(0.3)
	l.Mark(snapshot("2020-01-02", map[string]float64{"X": 0.1}))

	suite.Require().NoError(l.Buy("X", 3, "Buy"))
	suite.Equal(3, l.Position("X"))
	suite.GreaterOrEqual(l.Cash(), 0.0)
}

func (suite *LedgerTestSuite) TestSell() {
	l := NewLedger(0, WithPositions(map[string]int{"SPY": 10, "EMPTY": 0}))
	l.Mark(snapshot("2020-01-02", map[string]float64{"SPY": 50}))

	suite.Equal([]string{"SPY"}, l.Tickers())

	suite.Require().NoError(l.Sell("SPY", 4, "Sell"))
	suite.Equal(6, l.Position("SPY"))
	suite.Equal(200.0, l.Cash())

	// orders beyond the position sell what is held
	suite.Require().NoError(l.Sell("SPY", 100, "Sell"))
	suite.Equal(0, l.Position("SPY"))
	suite.Equal(500.0, l.Cash())
	suite.Empty(l.Tickers())

	txs := suite.transactions(l)
	suite.Require().Len(txs, 2)
	suite.Equal(6, txs[1].Quantity)
	suite.Equal(300.0, txs[1].Amount)
}

func (suite *LedgerTestSuite) TestSellErrors() {
	l := NewLedger(0, WithPositions(map[string]int{"SPY": 10}))
	l.Mark(snapshot("2020-01-02", map[string]float64{"QQQ": 50}))

	err := l.Sell("QQQ", 1, "Sell")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInsufficientPosition))

	err = l.Sell("SPY", 1, "Sell")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataMissing))
	suite.Equal(10, l.Position("SPY"))

	err = l.Sell("SPY", -2, "Sell")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidQuantity))

	suite.NoError(l.Sell("SPY", 0, "Sell"))
}

func (suite *LedgerTestSuite) TestSellWithCommission() {
	l := NewLedger(0,
		WithPositions(map[string]int{"SPY": 100}),
		WithCommission(commission_fee.NewInteractiveBrokerCommissionFee()),
	)
	l.Mark(snapshot("2020-01-02", map[string]float64{"SPY": 100}))

	suite.Require().NoError(l.Sell("SPY", 100, "Sell"))
	// 0.005 per share with a 1.00 minimum
	suite.InDelta(9999.0, l.Cash(), 1e-9)
}

func (suite *LedgerTestSuite) TestDepositAndWithdraw() {
	l := NewLedger(100)

	suite.Require().NoError(l.Deposit(50.5, "Deposit"))
	suite.Equal(150.5, l.Cash())

	suite.Require().NoError(l.Withdraw(150.5, "Withdraw"))
	suite.Equal(0.0, l.Cash())

	err := l.Withdraw(0.01, "Withdraw")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInsufficientCash))

	suite.NoError(l.Deposit(0, "nothing"))
	suite.NoError(l.Withdraw(0, "nothing"))

	for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
		suite.True(argoErrors.HasCode(l.Deposit(amount, "bad"), argoErrors.ErrCodeInvalidAmount))
		suite.True(argoErrors.HasCode(l.Withdraw(amount, "bad"), argoErrors.ErrCodeInvalidAmount))
	}

	txs := suite.transactions(l)
	suite.Require().Len(txs, 2)
	suite.Equal(types.TransactionKindDeposit, txs[0].Kind)
	suite.Equal(50.5, txs[0].Amount)
	suite.Equal(types.TransactionKindWithdraw, txs[1].Kind)
	suite.Equal(-150.5, txs[1].Amount)
}

func (suite *LedgerTestSuite) TestValuationUsesLastKnownPrice() {
	l := NewLedger(0, WithPositions(map[string]int{"SPY": 2, "BND": 3}))
	l.Mark(snapshot("2020-01-02", map[string]float64{"SPY": 100, "BND": 10}))
	suite.Equal(230.0, l.Value())

	// BND did not trade
	l.Mark(snapshot("2020-01-03", map[string]float64{"SPY": 110}))
	suite.Equal(250.0, l.Value())
	suite.Equal(0.0, l.Price("BND"))
	suite.Equal(30.0, l.Holding("BND"))
	suite.True(l.Date().Equal(types.MustParseDay("2020-01-03")))
}

func (suite *LedgerTestSuite) TestPriceBeforeMark() {
	l := NewLedger(100)

	suite.Equal(0.0, l.Price("SPY"))
	suite.True(l.Date().IsZero())
}

func (suite *LedgerTestSuite) TestJournalFailure() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	journal.EXPECT().Record(gomock.Any()).Return(errors.New("disk full")).Times(1)

	l := NewLedger(100, WithJournal(journal))

	err := l.Deposit(10, "Deposit")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeJournalFailed))
	suite.ErrorContains(err, "disk full")
}

func (suite *LedgerTestSuite) TestPositionsIsACopy() {
	l := NewLedger(0, WithPositions(map[string]int{"SPY": 1}))

	positions := l.Positions()
	positions["SPY"] = 99

	suite.Equal(1, l.Position("SPY"))
}
