package domain

import "testing"

func TestPriceToCash(t *testing.T) {
	tests := []struct {
		name string
		dec  Decimals
		in   int64
		want int64
	}{
		{"same scale", Decimals{PriceDigits: 2, CashDigits: 2}, 12345, 12345},
		{"one digit cut", Decimals{PriceDigits: 3, CashDigits: 2}, 12345, 1234},
		{"two digits cut", Decimals{PriceDigits: 4, CashDigits: 2}, 12345, 123},
		{"cash finer than price", Decimals{PriceDigits: 2, CashDigits: 4}, 12345, 12345},
		{"zero", Decimals{PriceDigits: 3, CashDigits: 2}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dec.PriceToCash(tt.in); got != tt.want {
				t.Errorf("PriceToCash(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCashToPrice(t *testing.T) {
	dec := Decimals{PriceDigits: 4, CashDigits: 2}
	if got := dec.CashToPrice(123); got != 12300 {
		t.Errorf("CashToPrice(123) = %d, want 12300", got)
	}
}
