package sim

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/mandes/MandesCDA/internal/domain"
)

// Draining the queue must always yield events sorted by time ascending,
// priority descending within an instant, and scheduling order on a full
// tie, no matter the insertion order.
func TestProperty_QueueTotalOrder(t *testing.T) {
	priorities := []int{PriorityDefault, PriorityReplenish, PriorityMaker, PriorityNotify, PriorityExpire}

	rapid.Check(t, func(t *rapid.T) {
		q := NewEventQueue()
		n := rapid.IntRange(1, 100).Draw(t, "numEvents")

		for i := 0; i < n; i++ {
			at := domain.TimeStamp{
				Day:  rapid.IntRange(0, 2).Draw(t, "day"),
				Tick: rapid.IntRange(0, 10).Draw(t, "tick"),
			}
			prio := rapid.SampledFrom(priorities).Draw(t, "priority")
			if _, err := q.Schedule(at, prio, WakeTrader{Trader: i}); err != nil {
				t.Fatalf("schedule: %v", err)
			}
		}

		var prev *Event
		for {
			evt, ok := q.PopEarliest()
			if !ok {
				break
			}
			if prev != nil {
				if evt.Time().Before(prev.Time()) {
					t.Fatalf("time went backward: %s after %s", evt, prev)
				}
				if evt.Time() == prev.Time() {
					if evt.Priority() > prev.Priority() {
						t.Fatalf("lower priority popped first: %s after %s", evt, prev)
					}
					if evt.Priority() == prev.Priority() && evt.ID() < prev.ID() {
						t.Fatalf("later event popped first on full tie: %s after %s", evt, prev)
					}
				}
			}
			prev = evt
		}
	})
}
