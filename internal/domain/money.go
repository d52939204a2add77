package domain

// Decimals describes the fixed-point scales of the market: prices carry
// PriceDigits decimal digits, cash balances carry CashDigits. Both values
// are stored as int64 in their own scale, so converting a price-scaled
// amount into a cash-scaled one cuts off the extra digits.
type Decimals struct {
	PriceDigits int
	CashDigits  int
}

// PriceToCash converts a price-scaled amount (e.g. size × limit price)
// into the cash scale by cutting off the extra decimal digits.
func (d Decimals) PriceToCash(v int64) int64 {
	return v / d.factor()
}

// CashToPrice converts a cash-scaled amount into the price scale.
func (d Decimals) CashToPrice(v int64) int64 {
	return v * d.factor()
}

func (d Decimals) factor() int64 {
	diff := d.PriceDigits - d.CashDigits
	if diff <= 0 {
		return 1
	}
	f := int64(1)
	for i := 0; i < diff; i++ {
		f *= 10
	}
	return f
}
