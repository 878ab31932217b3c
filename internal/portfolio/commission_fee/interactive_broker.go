package commission_fee

// InteractiveBrokerCommissionFee follows the fixed pricing of US stocks:
// 0.005 USD per share, at least 1 USD and at most 1% of the trade value.
type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(quantity int, price float64) float64 {
	if quantity <= 0 {
		return 0
	}

	fee := 0.005 * float64(quantity)
	if fee < 1.0 {
		fee = 1.0
	}

	if maxFee := 0.01 * float64(quantity) * price; maxFee > 0 && fee > maxFee {
		fee = maxFee
	}

	return fee
}
