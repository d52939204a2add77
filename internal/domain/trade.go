package domain

import "fmt"

// Trade records one execution between two counterparties. Trades are
// immutable once created; the price is always the resting (maker)
// order's limit price.
type Trade struct {
	ID    int64
	Time  TimeStamp
	Price int64
	Size  int64

	BuyTrader  int
	SellTrader int

	// AggressorBuy is true when the incoming order that triggered the
	// match was the buyer.
	AggressorBuy bool
}

func (t *Trade) String() string {
	return fmt.Sprintf("Trade(#%d %s %d @%d)", t.ID, t.Time, t.Size, t.Price)
}
