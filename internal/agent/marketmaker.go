package agent

import (
	"math"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/sim"
)

// MarketMaker refills an empty book side with off-spread limit orders so
// the liquidity traders always find a price reference. It never acts on
// its own wake-up, only on replenish requests.
type MarketMaker struct {
	// DefaultSpread is the base distance from the reference price, in
	// price units.
	DefaultSpread int64

	// OrdersPerRefill is how many limit orders one replenish places.
	OrdersPerRefill int

	// ExpiryOffset is the lifetime of each quote, in ticks.
	ExpiryOffset int

	clock *sim.Clock
}

// NewMarketMaker creates a maker with the given quoting parameters.
func NewMarketMaker(clock *sim.Clock, defaultSpread int64, ordersPerRefill, expiryOffset int) *MarketMaker {
	return &MarketMaker{
		DefaultSpread:   defaultSpread,
		OrdersPerRefill: ordersPerRefill,
		ExpiryOffset:    expiryOffset,
		clock:           clock,
	}
}

// Wake does nothing; the maker is purely reactive.
func (mm *MarketMaker) Wake(v *View) Instruction {
	return nil
}

// Replenish produces the refill orders for one side. Each is priced off
// the opposite best (or the null price when the whole book is empty),
// pushed out by the power-law placement depth, sized log-normally, and
// expires after the configured offset. The submit events carry an
// elevated priority so the refill lands before the instruction that
// found the book empty.
func (mm *MarketMaker) Replenish(v *View, bidSide bool) []Instruction {
	out := make([]Instruction, 0, mm.OrdersPerRefill)
	expiry := mm.clock.Add(v.Now, mm.ExpiryOffset)

	for i := 0; i < mm.OrdersPerRefill; i++ {
		size := int64(math.Floor(v.Rand.LogNormal(offSpreadSizeScale, offSpreadShape)))
		delta := priceLawDelta(v)

		var price int64
		if bidSide {
			if v.Book.Empty(domain.SideSell) {
				delta += mm.DefaultSpread / 2
				price = v.NullPrice - delta
			} else {
				delta += mm.DefaultSpread
				price = v.Book.BestPrice(domain.SideSell) - delta
			}
		} else {
			if v.Book.Empty(domain.SideBuy) {
				delta += mm.DefaultSpread / 2
				price = v.NullPrice + delta
			} else {
				delta += mm.DefaultSpread
				price = v.Book.BestPrice(domain.SideBuy) + delta
			}
		}

		side := domain.SideSell
		if bidSide {
			side = domain.SideBuy
		}
		exp := expiry
		out = append(out, Submit{Spec: OrderSpec{
			Side:     side,
			Kind:     domain.KindLimit,
			Size:     size,
			Price:    price,
			Expiry:   &exp,
			Priority: sim.PriorityMaker,
		}})
	}

	return out
}
