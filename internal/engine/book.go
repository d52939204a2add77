package engine

import (
	"math"

	"github.com/google/btree"

	"github.com/mandes/MandesCDA/internal/domain"
)

// OrderBook maintains the bid and ask sides as B-trees ordered by the
// book priority tuples: bids by (price desc, priorityTime asc, id asc),
// asks by (price asc, priorityTime asc, id asc). Min() on either side is
// the best resting order.
//
// The book also owns the artifact id counter shared by orders, trades
// and quotes, so every id is dense and deterministic within a run.
type OrderBook struct {
	bids *btree.BTreeG[*domain.Order]
	asks *btree.BTreeG[*domain.Order]

	counter int64
}

// NewOrderBook creates an empty book.
func NewOrderBook() *OrderBook {
	const degree = 32
	return &OrderBook{
		bids: btree.NewG(degree, domain.BidLess),
		asks: btree.NewG(degree, domain.AskLess),
	}
}

// NextID allocates the next artifact id. Overflow is fatal.
func (b *OrderBook) NextID() (int64, error) {
	if b.counter == math.MaxInt64 {
		return 0, &domain.InvariantError{Op: "book.nextid", Message: "artifact id overflow", Err: domain.ErrOrderIDOverflow}
	}
	b.counter++
	return b.counter, nil
}

// Insert adds a resting order to its side. Returns false if an order
// with the same priority key was already present.
func (b *OrderBook) Insert(o *domain.Order) bool {
	_, replaced := b.side(o.Side).ReplaceOrInsert(o)
	return !replaced
}

// Remove deletes an order from its side. The presence flag feeds the
// caller's invariant check; a miss on an expected removal is fatal there.
func (b *OrderBook) Remove(o *domain.Order) bool {
	_, found := b.side(o.Side).Delete(o)
	return found
}

// BestBid returns the highest-priority bid (highest price, earliest
// priority time).
func (b *OrderBook) BestBid() (*domain.Order, bool) {
	return b.bids.Min()
}

// BestAsk returns the highest-priority ask (lowest price, earliest
// priority time).
func (b *OrderBook) BestAsk() (*domain.Order, bool) {
	return b.asks.Min()
}

// Best returns the best resting order on the given side.
func (b *OrderBook) Best(side domain.Side) (*domain.Order, bool) {
	return b.side(side).Min()
}

// BestPrice returns the best price on the given side, or 0 when the
// side is empty.
func (b *OrderBook) BestPrice(side domain.Side) int64 {
	o, ok := b.side(side).Min()
	if !ok {
		return 0
	}
	return o.LimitPrice
}

// Empty reports whether the given side holds no orders.
func (b *OrderBook) Empty(side domain.Side) bool {
	return b.side(side).Len() == 0
}

// Len returns the number of resting orders on the given side.
func (b *OrderBook) Len(side domain.Side) int {
	return b.side(side).Len()
}

// Depth sums the outstanding quantity over every order resting on the
// given side. The engine uses it to decide whether a marketable order
// can be entirely filled.
func (b *OrderBook) Depth(side domain.Side) int64 {
	var depth int64
	b.side(side).Ascend(func(o *domain.Order) bool {
		depth += o.Outstanding
		return true
	})
	return depth
}

// TopOfBook snapshots the best bid and ask, aggregating the outstanding
// volume of every order tied at the best price on each side. The quote
// id stays zero; the engine assigns one only when the snapshot is
// published as a notification.
func (b *OrderBook) TopOfBook(at domain.TimeStamp) domain.Quote {
	q := domain.Quote{Time: at}

	b.bids.Ascend(func(o *domain.Order) bool {
		if q.BestBid == 0 {
			q.BestBid = o.LimitPrice
		} else if o.LimitPrice != q.BestBid {
			return false
		}
		q.BestBidVol += o.Outstanding
		return true
	})

	b.asks.Ascend(func(o *domain.Order) bool {
		if q.BestAsk == 0 {
			q.BestAsk = o.LimitPrice
		} else if o.LimitPrice != q.BestAsk {
			return false
		}
		q.BestAskVol += o.Outstanding
		return true
	})

	return q
}

func (b *OrderBook) side(s domain.Side) *btree.BTreeG[*domain.Order] {
	if s == domain.SideBuy {
		return b.bids
	}
	return b.asks
}
