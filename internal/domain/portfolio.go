package domain

import (
	"fmt"

	"github.com/google/btree"
)

// ownOrderLess orders an own-order set newest first: orderTime descending,
// then id descending. The minimum element is therefore the most recently
// placed order, which is what a cancel instruction targets.
func ownOrderLess(a, b *Order) bool {
	if c := a.OrderTime.Compare(b.OrderTime); c != 0 {
		return c > 0
	}
	return a.ID > b.ID
}

// Portfolio tracks one participant's resources. Cash and inventory each
// split into a free and a blocked part: submitting a buy limit moves the
// order value from Cash to BlockedCash, submitting any sell moves the
// size from Inventory to BlockedInventory. Every mutation goes through
// the matching engine, and across the two parties of a trade the deltas
// net to zero.
type Portfolio struct {
	Trader int

	Cash        int64
	BlockedCash int64

	Inventory        int64
	BlockedInventory int64

	buyOrders  *btree.BTreeG[*Order]
	sellOrders *btree.BTreeG[*Order]
}

// NewPortfolio creates a portfolio holding the given starting resources.
func NewPortfolio(trader int, cash, inventory int64) *Portfolio {
	const degree = 8
	return &Portfolio{
		Trader:     trader,
		Cash:       cash,
		Inventory:  inventory,
		buyOrders:  btree.NewG(degree, ownOrderLess),
		sellOrders: btree.NewG(degree, ownOrderLess),
	}
}

// AddOrder registers a resting order in the side's own-order set. It
// returns false if an order with the same key is already present.
func (p *Portfolio) AddOrder(o *Order) bool {
	_, replaced := p.side(o.Side).ReplaceOrInsert(o)
	return !replaced
}

// RemoveOrder deletes an order from the side's own-order set. The
// presence flag feeds the engine's invariant checks: an expected removal
// that finds nothing means the bookkeeping is corrupted.
func (p *Portfolio) RemoveOrder(o *Order) bool {
	_, found := p.side(o.Side).Delete(o)
	return found
}

// CancelTarget returns the most recently placed resting order on the
// given side, or nil when the side has none.
func (p *Portfolio) CancelTarget(side Side) *Order {
	o, ok := p.side(side).Min()
	if !ok {
		return nil
	}
	return o
}

// OpenOrders returns the number of resting orders on the given side.
func (p *Portfolio) OpenOrders(side Side) int {
	return p.side(side).Len()
}

func (p *Portfolio) side(s Side) *btree.BTreeG[*Order] {
	if s == SideBuy {
		return p.buyOrders
	}
	return p.sellOrders
}

func (p *Portfolio) String() string {
	return fmt.Sprintf("Portfolio(#%d cash %d/%d blk, inv %d/%d blk)",
		p.Trader, p.Cash, p.BlockedCash, p.Inventory, p.BlockedInventory)
}
