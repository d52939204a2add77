// Package stats collects trade and quote notifications into run
// statistics and CSV exports.
package stats

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/sim"
)

// Recorder subscribes to a market run and accumulates its history.
// Aggregates only count observations made after the burn-in timestamp,
// while the raw histories keep everything so exports can apply their
// own cut.
type Recorder struct {
	clock     *sim.Clock
	burnIn    domain.TimeStamp
	nullPrice int64

	trades []*domain.Trade
	quotes []domain.Quote

	tradeCount int64
	tradeVol   int64
	sumRet     float64
	sqSumRet   float64

	quoteCount    int64
	avgSpread     float64
	avgPercSpread float64
}

// NewRecorder creates a recorder. nullPrice anchors the return of the
// very first trade, before any market price exists.
func NewRecorder(clock *sim.Clock, burnIn domain.TimeStamp, nullPrice int64) *Recorder {
	return &Recorder{clock: clock, burnIn: burnIn, nullPrice: nullPrice}
}

// OnTrade records one execution.
func (r *Recorder) OnTrade(t *domain.Trade) {
	ref := r.nullPrice
	if n := len(r.trades); n > 0 {
		ref = r.trades[n-1].Price
	}
	percRet := (float64(t.Price)/float64(ref) - 1.0) * 100

	if r.clock.Now().After(r.burnIn) {
		r.tradeCount++
		r.tradeVol += t.Size
		r.sumRet += percRet
		r.sqSumRet += percRet * percRet
	}

	r.trades = append(r.trades, t)
}

// OnQuote records one top-of-book change. One-sided quotes are kept in
// the history but excluded from the spread averages.
func (r *Recorder) OnQuote(q domain.Quote) {
	if r.clock.Now().After(r.burnIn) && q.BestBid != 0 && q.BestAsk != 0 {
		spread := float64(q.BestAsk - q.BestBid)
		percSpread := 2.0 * spread * 100 / float64(q.BestBid+q.BestAsk)

		n := float64(r.quoteCount)
		r.avgSpread = (r.avgSpread*n + spread) / (n + 1)
		r.avgPercSpread = (r.avgPercSpread*n + percSpread) / (n + 1)
		r.quoteCount++
	}

	r.quotes = append(r.quotes, q)
}

// Trades returns the full trade history.
func (r *Recorder) Trades() []*domain.Trade { return r.trades }

// Quotes returns the full quote history.
func (r *Recorder) Quotes() []domain.Quote { return r.quotes }

// Summary aggregates one run's post-burn-in activity.
type Summary struct {
	Trades         int64   `json:"trades"`
	Volume         int64   `json:"volume"`
	AvgTradeSize   float64 `json:"avg_trade_size"`
	AvgReturn      float64 `json:"avg_return"`
	ReturnVariance float64 `json:"return_variance"`
	Quotes         int64   `json:"quotes"`
	AvgSpread      float64 `json:"avg_spread"`
	AvgPercSpread  float64 `json:"avg_perc_spread"`
}

// Summary computes the aggregate view of everything recorded so far.
func (r *Recorder) Summary() Summary {
	s := Summary{
		Trades:        r.tradeCount,
		Volume:        r.tradeVol,
		Quotes:        r.quoteCount,
		AvgSpread:     r.avgSpread,
		AvgPercSpread: r.avgPercSpread,
	}
	if r.tradeCount > 0 {
		n := float64(r.tradeCount)
		s.AvgTradeSize = float64(r.tradeVol) / n
		s.AvgReturn = r.sumRet / n
		s.ReturnVariance = r.sqSumRet/n - (r.sumRet/n)*(r.sumRet/n)
	}
	return s
}

// WriteTrades streams the trade history after leftCut as CSV rows of
// id, size, price and whether the buyer was the aggressor.
func (r *Recorder) WriteTrades(w io.Writer, leftCut domain.TimeStamp) error {
	cw := csv.NewWriter(w)
	for _, t := range r.trades {
		if !t.Time.After(leftCut) {
			continue
		}
		rec := []string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.Size, 10),
			strconv.FormatInt(t.Price, 10),
			strconv.FormatBool(t.AggressorBuy),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteQuotes streams the two-sided quotes after leftCut as
// semicolon-separated rows of best bid, best ask, spread and mid-point.
func (r *Recorder) WriteQuotes(w io.Writer, leftCut domain.TimeStamp) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"BestBid", "BestAsk", "Spread", "MidPoint"}); err != nil {
		return err
	}
	for _, q := range r.quotes {
		if !q.Time.After(leftCut) || q.BestBid <= 0 || q.BestAsk <= 0 {
			continue
		}
		rec := []string{
			strconv.FormatInt(q.BestBid, 10),
			strconv.FormatInt(q.BestAsk, 10),
			strconv.FormatInt(q.BestAsk-q.BestBid, 10),
			strconv.FormatInt((q.BestAsk+q.BestBid)/2, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
