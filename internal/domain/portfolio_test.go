package domain

import "testing"

func TestPortfolioAddRemoveOrder(t *testing.T) {
	p := NewPortfolio(1, 1000, 100)
	o := &Order{ID: 1, Owner: p, Side: SideBuy, Kind: KindLimit, Outstanding: 5, LimitPrice: 100}

	if !p.AddOrder(o) {
		t.Fatal("expected first add to succeed")
	}
	if p.AddOrder(o) {
		t.Error("expected second add of the same order to report a replacement")
	}
	if got := p.OpenOrders(SideBuy); got != 1 {
		t.Errorf("expected 1 open buy order, got %d", got)
	}

	if !p.RemoveOrder(o) {
		t.Fatal("expected removal to find the order")
	}
	if p.RemoveOrder(o) {
		t.Error("expected second removal to miss")
	}
	if got := p.OpenOrders(SideBuy); got != 0 {
		t.Errorf("expected 0 open buy orders, got %d", got)
	}
}

func TestPortfolioCancelTargetIsNewest(t *testing.T) {
	p := NewPortfolio(1, 0, 0)

	older := &Order{ID: 1, Side: SideBuy, Kind: KindLimit, Outstanding: 1, LimitPrice: 100, OrderTime: TimeStamp{0, 10}}
	newer := &Order{ID: 2, Side: SideBuy, Kind: KindLimit, Outstanding: 1, LimitPrice: 90, OrderTime: TimeStamp{0, 20}}
	p.AddOrder(older)
	p.AddOrder(newer)

	if got := p.CancelTarget(SideBuy); got != newer {
		t.Errorf("expected newest order #%d as cancel target, got %v", newer.ID, got)
	}

	// Same submission time: the higher id was placed later.
	p2 := NewPortfolio(2, 0, 0)
	a := &Order{ID: 1, Side: SideSell, Kind: KindLimit, Outstanding: 1, LimitPrice: 100, OrderTime: TimeStamp{0, 10}}
	b := &Order{ID: 2, Side: SideSell, Kind: KindLimit, Outstanding: 1, LimitPrice: 110, OrderTime: TimeStamp{0, 10}}
	p2.AddOrder(a)
	p2.AddOrder(b)

	if got := p2.CancelTarget(SideSell); got != b {
		t.Errorf("expected higher id #%d as cancel target, got %v", b.ID, got)
	}
}

func TestPortfolioCancelTargetEmpty(t *testing.T) {
	p := NewPortfolio(1, 0, 0)
	if got := p.CancelTarget(SideBuy); got != nil {
		t.Errorf("expected nil target on empty side, got %v", got)
	}
}
