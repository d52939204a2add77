package sim

import (
	"math"

	"github.com/google/btree"

	"github.com/mandes/MandesCDA/internal/domain"
)

// EventQueue is the total-order container of pending events, backed by a
// B-tree keyed by (time asc, priority desc, id asc). It owns the event
// id counter: every event is created here, never by callers, which keeps
// ids dense and the tie-break deterministic.
type EventQueue struct {
	events  *btree.BTreeG[*Event]
	counter int64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	const degree = 32
	return &EventQueue{
		events: btree.NewG(degree, eventLess),
	}
}

// Schedule creates an event for the payload and inserts it at the given
// time and priority. Id counter overflow is fatal.
func (q *EventQueue) Schedule(at domain.TimeStamp, priority int, payload Payload) (*Event, error) {
	if q.counter == math.MaxInt64 {
		return nil, &domain.InvariantError{Op: "queue.schedule", Message: "event id overflow", Err: domain.ErrEventIDOverflow}
	}
	q.counter++
	evt := &Event{
		id:       q.counter,
		time:     at,
		priority: priority,
		payload:  payload,
	}
	if _, replaced := q.events.ReplaceOrInsert(evt); replaced {
		return nil, domain.Invariantf("queue.schedule", "duplicate event id %d", evt.id)
	}
	return evt, nil
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// PeekEarliest returns the minimum event without removing it.
func (q *EventQueue) PeekEarliest() (*Event, bool) {
	return q.events.Min()
}

// PopEarliest removes and returns the minimum event.
func (q *EventQueue) PopEarliest() (*Event, bool) {
	return q.events.DeleteMin()
}

// PurgeOrder removes every still-pending Cancel or Expire event that
// references the given order, except the event currently being
// processed. An order can be fully filled before its scheduled expiry
// fires; without the purge that stale follow-up would re-trigger
// removal of an already-gone order.
func (q *EventQueue) PurgeOrder(orderID int64, except *Event) error {
	var stale []*Event
	q.events.Ascend(func(evt *Event) bool {
		if evt == except {
			return true
		}
		if o := relatedOrder(evt.payload); o != nil && o.ID == orderID {
			stale = append(stale, evt)
		}
		return true
	})

	for _, evt := range stale {
		if _, found := q.events.Delete(evt); !found {
			return domain.Invariantf("queue.purge", "pending event #%d vanished during purge", evt.id)
		}
	}
	return nil
}
