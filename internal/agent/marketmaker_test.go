package agent

import (
	"testing"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/sim"
)

func newTestMaker(spread int64, orders, expiryOffset int) (*MarketMaker, *sim.Clock) {
	clock := sim.NewClock(1000000)
	return NewMarketMaker(clock, spread, orders, expiryOffset), clock
}

func TestMakerWakeDoesNothing(t *testing.T) {
	mm, _ := newTestMaker(50, 3, 300000)
	if instr := mm.Wake(testView(1)); instr != nil {
		t.Errorf("expected a purely reactive maker, got %T", instr)
	}
}

func TestMakerReplenishEmptyBookAnchorsOnNullPrice(t *testing.T) {
	mm, _ := newTestMaker(50, 3, 300000)
	v := testView(1)

	for _, bidSide := range []bool{true, false} {
		out := mm.Replenish(v, bidSide)
		if len(out) != 3 {
			t.Fatalf("expected 3 refill orders, got %d", len(out))
		}
		for i, instr := range out {
			sub, ok := instr.(Submit)
			if !ok {
				t.Fatalf("order %d: expected a submit, got %T", i, instr)
			}
			spec := sub.Spec
			if spec.Kind != domain.KindLimit {
				t.Errorf("order %d: expected a limit order, got %s", i, spec.Kind)
			}
			if spec.Size < 1 {
				t.Errorf("order %d: non-positive size %d", i, spec.Size)
			}
			if spec.Priority != sim.PriorityMaker {
				t.Errorf("order %d: expected maker priority, got %d", i, spec.Priority)
			}
			if spec.Expiry == nil {
				t.Fatalf("order %d: maker quotes must expire", i)
			}
			if *spec.Expiry != (domain.TimeStamp{Day: 0, Tick: 100 + 300000}) {
				t.Errorf("order %d: expiry %s, want (0,%d)", i, spec.Expiry, 100+300000)
			}

			if bidSide {
				if spec.Side != domain.SideBuy {
					t.Errorf("order %d: expected a bid, got %s", i, spec.Side)
				}
				if spec.Price >= v.NullPrice {
					t.Errorf("order %d: bid %d not below the null price %d", i, spec.Price, v.NullPrice)
				}
			} else {
				if spec.Side != domain.SideSell {
					t.Errorf("order %d: expected an ask, got %s", i, spec.Side)
				}
				if spec.Price <= v.NullPrice {
					t.Errorf("order %d: ask %d not above the null price %d", i, spec.Price, v.NullPrice)
				}
			}
		}
	}
}

func TestMakerReplenishPricesOffOppositeBest(t *testing.T) {
	mm, _ := newTestMaker(50, 5, 300000)
	v := testView(2)

	// Only the ask side carries orders; a bid refill prices off it.
	ask := &domain.Order{ID: 1, Side: domain.SideSell, Kind: domain.KindLimit, Outstanding: 100, LimitPrice: 30100}
	if !v.Book.Insert(ask) {
		t.Fatal("failed to seed the book")
	}

	for i, instr := range mm.Replenish(v, true) {
		spec := instr.(Submit).Spec
		// The full default spread plus a non-negative placement delta
		// keeps the refill at or below bestAsk minus the spread; the
		// delta rounds to zero for small draws, so equality is allowed.
		if spec.Price > 30100-50 {
			t.Errorf("order %d: bid %d inside the maker spread off the best ask", i, spec.Price)
		}
	}
}
