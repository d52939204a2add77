package domain

import "fmt"

// Side indicates whether an order is a bid (buy) or ask (sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Kind distinguishes limit orders from market orders.
type Kind string

const (
	KindLimit  Kind = "limit"
	KindMarket Kind = "market"
)

// Order is a single instruction to trade. While resting on the book its
// Outstanding quantity is strictly positive; an order with Outstanding 0
// has been fully filled and must not appear in any book or own-order set.
//
// OrderTime is the original submission time and never changes; it is used
// only to pick which of an owner's resting orders a cancel targets.
// PriorityTime drives queue position within a price level: it is reset on
// any price change or size increase and preserved on a pure size decrease.
type Order struct {
	ID    int64
	Owner *Portfolio

	Side Side
	Kind Kind

	Outstanding int64
	LimitPrice  int64

	OrderTime    TimeStamp
	PriorityTime TimeStamp
	LastUpdate   TimeStamp

	Expiry *TimeStamp // nil when the order never expires
}

// IsBuy reports whether the order sits on the bid side.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsLimit reports whether the order carries a limit price.
func (o *Order) IsLimit() bool {
	return o.Kind == KindLimit
}

func (o *Order) String() string {
	if o.IsLimit() {
		return fmt.Sprintf("Order(#%d %s %s %d @%d)", o.ID, o.Side, o.Kind, o.Outstanding, o.LimitPrice)
	}
	return fmt.Sprintf("Order(#%d %s %s %d)", o.ID, o.Side, o.Kind, o.Outstanding)
}

// BidLess orders the bid side of the book: price descending, then
// priorityTime ascending, then id ascending. The minimum element is the
// best bid (highest price, earliest queue position).
func BidLess(a, b *Order) bool {
	if a.LimitPrice != b.LimitPrice {
		return a.LimitPrice > b.LimitPrice
	}
	if c := a.PriorityTime.Compare(b.PriorityTime); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// AskLess orders the ask side: price ascending, then priorityTime
// ascending, then id ascending. The minimum element is the best ask.
func AskLess(a, b *Order) bool {
	if a.LimitPrice != b.LimitPrice {
		return a.LimitPrice < b.LimitPrice
	}
	if c := a.PriorityTime.Compare(b.PriorityTime); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}
