package commission_fee

// PercentageCommissionFee charges a fixed fraction of the trade value.
type PercentageCommissionFee struct {
	Rate float64
}

func NewPercentageCommissionFee(rate float64) CommissionFee {
	return &PercentageCommissionFee{Rate: rate}
}

func (c *PercentageCommissionFee) Calculate(quantity int, price float64) float64 {
	if quantity <= 0 || price <= 0 {
		return 0
	}

	return c.Rate * float64(quantity) * price
}
