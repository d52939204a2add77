package sim

import (
	"fmt"

	"github.com/mandes/MandesCDA/internal/domain"
)

// Scheduling priorities. Among events queued for the same instant, the
// higher priority runs first, so notifications drain before ordinary
// instructions and expirations preempt everything.
const (
	PriorityDefault   = 5
	PriorityReplenish = 6
	PriorityMaker     = 7
	PriorityNotify    = 8
	PriorityExpire    = 10
)

// Payload is the content of a scheduled event. The concrete types below
// form a closed union: instructions consumed by the matching engine,
// notifications it emits, and the simulation's own bookkeeping events.
type Payload interface {
	payloadName() string
}

// SubmitOrder asks the engine to validate, reserve and match a fully
// formed new order.
type SubmitOrder struct {
	Order *domain.Order
}

// ModifyOrder asks the engine to reprice/resize a resting order.
type ModifyOrder struct {
	Order    *domain.Order
	NewPrice int64
	NewSize  int64
}

// CancelOrder asks the engine to remove a resting order and release its
// reservation.
type CancelOrder struct {
	Order *domain.Order
}

// ExpireOrder removes a resting order whose lifetime ran out. Scheduled
// by the engine itself when a limit order with an expiry rests.
type ExpireOrder struct {
	Order *domain.Order
}

// TradeExecuted notifies listeners of one execution.
type TradeExecuted struct {
	Trade *domain.Trade
}

// QuoteChanged notifies listeners that the top of book changed.
type QuoteChanged struct {
	Quote domain.Quote
}

// WakeTrader hands control to one trader's strategy.
type WakeTrader struct {
	Trader int
}

// ReplenishBook asks the market maker to refill an empty book side.
type ReplenishBook struct {
	BidSide bool
}

func (SubmitOrder) payloadName() string   { return "submit" }
func (ModifyOrder) payloadName() string   { return "modify" }
func (CancelOrder) payloadName() string   { return "cancel" }
func (ExpireOrder) payloadName() string   { return "expire" }
func (TradeExecuted) payloadName() string { return "trade" }
func (QuoteChanged) payloadName() string  { return "quote" }
func (WakeTrader) payloadName() string    { return "wake" }
func (ReplenishBook) payloadName() string { return "replenish" }

// Event is one entry on the simulated time line. Ids are dense and
// allocated by the queue; they are the final deterministic tie-break in
// the scheduling order.
type Event struct {
	id       int64
	time     domain.TimeStamp
	priority int
	payload  Payload
}

// ID returns the queue-allocated event id.
func (e *Event) ID() int64 { return e.id }

// Time returns the scheduled time.
func (e *Event) Time() domain.TimeStamp { return e.time }

// Priority returns the scheduling priority.
func (e *Event) Priority() int { return e.priority }

// Payload returns the event content.
func (e *Event) Payload() Payload { return e.payload }

func (e *Event) String() string {
	return fmt.Sprintf("Event(#%d %s p%d %s)", e.id, e.time, e.priority, e.payload.payloadName())
}

// eventLess is the queue's total order: time ascending, priority
// descending, id ascending.
func eventLess(a, b *Event) bool {
	if c := a.time.Compare(b.time); c != 0 {
		return c < 0
	}
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.id < b.id
}

// relatedOrder returns the order a pending follow-up event refers to,
// for event kinds that must be purged when that order disappears.
// Submit/Modify payloads are deliberately excluded: only Cancel and
// Expire re-trigger removal of an already-gone order.
func relatedOrder(p Payload) *domain.Order {
	switch v := p.(type) {
	case CancelOrder:
		return v.Order
	case ExpireOrder:
		return v.Order
	}
	return nil
}
