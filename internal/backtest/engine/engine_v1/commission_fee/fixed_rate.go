package commission_fee

import "github.com/shopspring/decimal"

// FixedRateCommissionFee charges a fraction of the fill notional.
type FixedRateCommissionFee struct {
	Rate float64
}

// NewFixedRateCommissionFee uses DefaultCommissionRate when rate <= 0.
func NewFixedRateCommissionFee(rate float64) CommissionFee {
	if rate <= 0 {
		rate = DefaultCommissionRate
	}

	return &FixedRateCommissionFee{Rate: rate}
}

func (c *FixedRateCommissionFee) Calculate(price float64, quantity float64) float64 {
	fee, _ := decimal.NewFromFloat(price).
		Mul(decimal.NewFromFloat(quantity)).
		Mul(decimal.NewFromFloat(c.Rate)).
		Abs().
		Float64()

	return fee
}
