package engine

import (
	"io"
	"log/slog"
	"testing"

	"pgregory.net/rapid"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/sim"
)

// Across any instruction stream, every cash and inventory unit must stay
// accounted for: trades move resources between the two parties but never
// create or destroy them, and cancels only shuffle blocked back to free.
func TestProperty_ResourceConservation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		book := NewOrderBook()
		queue := sim.NewEventQueue()
		clock := sim.NewClock(1000000)
		dec := domain.Decimals{PriceDigits: 2, CashDigits: 2}
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		ioc := rapid.Bool().Draw(rt, "ioc")
		m := NewMatcher(book, queue, clock, dec, ioc, log)

		const startCash, startInv = int64(10_000_000), int64(10_000)
		pfs := []*domain.Portfolio{
			domain.NewPortfolio(1, startCash, startInv),
			domain.NewPortfolio(2, startCash, startInv),
		}
		totalCash := 2 * startCash
		totalInv := 2 * startInv

		n := rapid.IntRange(1, 60).Draw(rt, "numInstructions")
		tick := 0
		for i := 0; i < n; i++ {
			tick += rapid.IntRange(1, 5).Draw(rt, "skip")
			pf := pfs[rapid.IntRange(0, 1).Draw(rt, "owner")]

			side := domain.SideBuy
			if rapid.Bool().Draw(rt, "sell") {
				side = domain.SideSell
			}
			kind := domain.KindLimit
			if rapid.Bool().Draw(rt, "market") {
				kind = domain.KindMarket
			}

			id, err := book.NextID()
			if err != nil {
				rt.Fatalf("next id: %v", err)
			}
			o := &domain.Order{
				ID:          id,
				Owner:       pf,
				Side:        side,
				Kind:        kind,
				Outstanding: rapid.Int64Range(1, 50).Draw(rt, "size"),
			}
			if kind == domain.KindLimit {
				o.LimitPrice = rapid.Int64Range(90, 110).Draw(rt, "price")
			}

			if _, err := queue.Schedule(domain.TimeStamp{Day: 0, Tick: tick}, sim.PriorityDefault, sim.SubmitOrder{Order: o}); err != nil {
				rt.Fatalf("schedule: %v", err)
			}

			// Drain everything before checking the totals.
			for {
				evt, ok := queue.PopEarliest()
				if !ok {
					break
				}
				if err := clock.AdvanceTo(evt.Time()); err != nil {
					rt.Fatalf("advance: %v", err)
				}
				switch evt.Payload().(type) {
				case sim.TradeExecuted, sim.QuoteChanged:
					continue
				}
				if err := m.Process(evt); err != nil {
					rt.Fatalf("process: %v", err)
				}
			}

			var cash, inv int64
			for _, p := range pfs {
				if p.BlockedCash < 0 || p.BlockedInventory < 0 {
					rt.Fatalf("negative reservation: %s", p)
				}
				cash += p.Cash + p.BlockedCash
				inv += p.Inventory + p.BlockedInventory
			}
			if cash != totalCash {
				rt.Fatalf("cash not conserved: %d, want %d", cash, totalCash)
			}
			if inv != totalInv {
				rt.Fatalf("inventory not conserved: %d, want %d", inv, totalInv)
			}
		}

		// Nothing resting may carry a non-positive quantity.
		for _, side := range []domain.Side{domain.SideBuy, domain.SideSell} {
			for {
				o, ok := book.Best(side)
				if !ok {
					break
				}
				if o.Outstanding < 1 {
					rt.Fatalf("resting order #%d with outstanding %d", o.ID, o.Outstanding)
				}
				book.Remove(o)
			}
		}
	})
}
