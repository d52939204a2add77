package domain

import "fmt"

// TimeStamp is a point on the discrete simulated time line: a trading day
// plus an intraday tick. Ticks run from 0 to the configured ticks-per-day;
// the day rolls over beyond that.
type TimeStamp struct {
	Day  int
	Tick int
}

// Compare returns -1, 0 or 1 ordering by day first, then tick.
func (t TimeStamp) Compare(other TimeStamp) int {
	if t.Day != other.Day {
		if t.Day < other.Day {
			return -1
		}
		return 1
	}
	if t.Tick != other.Tick {
		if t.Tick < other.Tick {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether t is strictly earlier than other.
func (t TimeStamp) Before(other TimeStamp) bool {
	return t.Compare(other) < 0
}

// After reports whether t is strictly later than other.
func (t TimeStamp) After(other TimeStamp) bool {
	return t.Compare(other) > 0
}

func (t TimeStamp) String() string {
	return fmt.Sprintf("(%d,%d)", t.Day, t.Tick)
}
