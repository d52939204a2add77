// Package agent holds the trading strategies. A strategy never touches
// the book or any portfolio directly: it only ever hands back fully
// formed submit/modify/cancel instructions, which the market layer turns
// into scheduled events. Orders themselves are materialized by the
// scheduler so that ids stay engine-owned.
package agent

import (
	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/engine"
	"github.com/mandes/MandesCDA/internal/sim"
)

// OrderSpec describes an order a strategy wants submitted. Price is
// ignored for market orders; a nil Expiry means the order never expires.
type OrderSpec struct {
	Side   domain.Side
	Kind   domain.Kind
	Size   int64
	Price  int64
	Expiry *domain.TimeStamp

	// Priority of the submit event; zero means the default.
	Priority int
}

// Instruction is one action a strategy hands back to the market.
type Instruction interface {
	instruction()
}

// Submit asks for a new order.
type Submit struct {
	Spec OrderSpec
}

// Cancel asks for removal of one of the strategy's own resting orders.
type Cancel struct {
	Order *domain.Order
}

// Modify asks for a reprice/resize of one of the strategy's own resting
// orders.
type Modify struct {
	Order    *domain.Order
	NewPrice int64
	NewSize  int64
}

func (Submit) instruction() {}
func (Cancel) instruction() {}
func (Modify) instruction() {}

// View is the read-only market context a strategy acts on: the current
// time, the book, the strategy's own portfolio and the shared random
// stream. Randomness must be drawn here, at the moment the strategy
// acts, so a replayed seed reproduces the run exactly.
type View struct {
	Now       domain.TimeStamp
	Book      *engine.OrderBook
	Portfolio *domain.Portfolio
	Rand      *sim.Rand

	// NullPrice anchors quoting when the book carries no information.
	NullPrice   int64
	PriceDigits int
}

// Strategy decides what a trader does when it wakes up.
type Strategy interface {
	// Wake is called on the trader's polling event. A nil return means
	// the trader sits this round out.
	Wake(v *View) Instruction
}

// Replenisher is implemented by strategies that refill an empty book
// side on request (the market-making role).
type Replenisher interface {
	Replenish(v *View, bidSide bool) []Instruction
}

// Trader couples a strategy with its portfolio and timing behaviour.
type Trader struct {
	ID        int
	Latency   int // instruction delay in ticks
	IdleProb  float64
	Portfolio *domain.Portfolio
	Strategy  Strategy
}

// NextSleep draws the tick offset until this trader's next wake-up.
func (t *Trader) NextSleep(rng *sim.Rand) int {
	return rng.GeometricSleep(t.IdleProb)
}
