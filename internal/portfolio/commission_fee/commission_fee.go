package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for trading quantity shares at price, in USD
	Calculate(quantity int, price float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerPercentage        Broker = "percentage"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerPercentage,
	BrokerZero,
}

// DefaultPercentageRate is the notional rate used by the percentage broker, 0.1%.
const DefaultPercentageRate = 0.001

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerPercentage:
		return NewPercentageCommissionFee(DefaultPercentageRate)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}

// MaxQuantity returns the largest whole number of shares at price whose
// cost plus commission fits in cash.
func MaxQuantity(cash float64, price float64, fee CommissionFee) int {
	if price <= 0 || cash <= 0 {
		return 0
	}

	quantity := int(cash / price)
	for quantity > 0 && float64(quantity)*price+fee.Calculate(quantity, price) > cash {
		quantity--
	}

	return quantity
}
