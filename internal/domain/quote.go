package domain

import "fmt"

// Quote is a top-of-book snapshot. Volumes aggregate the outstanding
// quantity of every order resting at the best price on each side. A side
// with no orders reports price and volume zero.
type Quote struct {
	ID   int64
	Time TimeStamp

	BestBid    int64
	BestBidVol int64
	BestAsk    int64
	BestAskVol int64
}

// Same reports whether two quotes describe the identical top of book,
// ignoring id and time. A quote-change notification fires exactly when
// this is false between the pre- and post-instruction snapshots.
func (q Quote) Same(other Quote) bool {
	return q.BestBid == other.BestBid &&
		q.BestBidVol == other.BestBidVol &&
		q.BestAsk == other.BestAsk &&
		q.BestAskVol == other.BestAskVol
}

func (q Quote) String() string {
	return fmt.Sprintf("Quote(bid: %d @%d, ask: %d @%d)", q.BestBidVol, q.BestBid, q.BestAskVol, q.BestAsk)
}
