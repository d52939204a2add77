package domain

import "testing"

func ord(id int64, price int64, prio TimeStamp) *Order {
	return &Order{ID: id, Kind: KindLimit, Outstanding: 1, LimitPrice: price, PriorityTime: prio}
}

func TestBidLess(t *testing.T) {
	t0 := TimeStamp{Day: 0, Tick: 10}
	t1 := TimeStamp{Day: 0, Tick: 20}

	tests := []struct {
		name string
		a, b *Order
		want bool
	}{
		{"higher price first", ord(1, 101, t0), ord(2, 100, t0), true},
		{"lower price later", ord(1, 100, t0), ord(2, 101, t0), false},
		{"same price earlier priority first", ord(1, 100, t0), ord(2, 100, t1), true},
		{"same price later priority after", ord(1, 100, t1), ord(2, 100, t0), false},
		{"full tie lower id first", ord(1, 100, t0), ord(2, 100, t0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BidLess(tt.a, tt.b); got != tt.want {
				t.Errorf("BidLess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAskLess(t *testing.T) {
	t0 := TimeStamp{Day: 0, Tick: 10}
	t1 := TimeStamp{Day: 0, Tick: 20}

	tests := []struct {
		name string
		a, b *Order
		want bool
	}{
		{"lower price first", ord(1, 100, t0), ord(2, 101, t0), true},
		{"higher price later", ord(1, 101, t0), ord(2, 100, t0), false},
		{"same price earlier priority first", ord(1, 100, t0), ord(2, 100, t1), true},
		{"full tie lower id first", ord(1, 100, t0), ord(2, 100, t0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AskLess(tt.a, tt.b); got != tt.want {
				t.Errorf("AskLess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideOpposite(t *testing.T) {
	if SideBuy.Opposite() != SideSell {
		t.Error("expected buy opposite to be sell")
	}
	if SideSell.Opposite() != SideBuy {
		t.Error("expected sell opposite to be buy")
	}
}
