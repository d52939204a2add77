package sim

import "github.com/mandes/MandesCDA/internal/domain"

// Clock holds the current simulated time. It only ever moves forward:
// the dispatcher advances it to each popped event's time, and an attempt
// to move it backward is an invariant violation that aborts the run.
type Clock struct {
	cur         domain.TimeStamp
	ticksPerDay int
}

// NewClock creates a clock at (0,0) with the given intraday resolution.
func NewClock(ticksPerDay int) *Clock {
	return &Clock{ticksPerDay: ticksPerDay}
}

// Now returns the current simulated time.
func (c *Clock) Now() domain.TimeStamp {
	return c.cur
}

// TicksPerDay returns the intraday resolution.
func (c *Clock) TicksPerDay() int {
	return c.ticksPerDay
}

// AdvanceTo moves the clock to ts. Time never flows backward; a ts
// strictly earlier than the current time is fatal.
func (c *Clock) AdvanceTo(ts domain.TimeStamp) error {
	if ts.Before(c.cur) {
		return domain.Invariantf("clock.advance", "time does not flow backward: %s < %s", ts, c.cur)
	}
	c.cur = ts
	return nil
}

// Add returns ts shifted by skip ticks, rolling the day over in either
// direction. Latency offsets and strategy sleep intervals both go
// through here.
func (c *Clock) Add(ts domain.TimeStamp, skip int) domain.TimeStamp {
	day := ts.Day
	tick := ts.Tick + skip

	if tick > c.ticksPerDay {
		mult := tick / c.ticksPerDay
		day += mult
		tick -= mult * c.ticksPerDay
	}

	if tick <= 0 {
		mult := tick / c.ticksPerDay
		day += mult - 1
		tick += c.ticksPerDay * (1 - mult)
	}

	return domain.TimeStamp{Day: day, Tick: tick}
}
