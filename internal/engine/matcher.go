package engine

import (
	"log/slog"

	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/sim"
)

// RemovalReason says why an order left the book early. It only feeds
// statistics; the removal routine itself is identical for both.
type RemovalReason int

const (
	ReasonCancel RemovalReason = iota
	ReasonExpire
)

// Matcher is the matching engine. It consumes one instruction event at a
// time, mutates the order book and the owners' portfolios, and emits
// trade and quote notifications back into the event queue at elevated
// priority so they drain before anything else queued for the same
// instant.
//
// With IOC set, the unexecuted remainder of a market order is cancelled;
// otherwise it converts into a resting limit order at the last trade
// price.
type Matcher struct {
	book  *OrderBook
	queue *sim.EventQueue
	clock *sim.Clock
	dec   domain.Decimals
	ioc   bool
	log   *slog.Logger

	cancelled int64
	expired   int64
}

// NewMatcher wires the engine to its book, queue and clock. The decimals
// value fixes the price-to-cash scaling for every settlement.
func NewMatcher(book *OrderBook, queue *sim.EventQueue, clock *sim.Clock, dec domain.Decimals, ioc bool, log *slog.Logger) *Matcher {
	return &Matcher{
		book:  book,
		queue: queue,
		clock: clock,
		dec:   dec,
		ioc:   ioc,
		log:   log,
	}
}

// IOC reports the remainder policy for market orders.
func (m *Matcher) IOC() bool { return m.ioc }

// Book returns the engine's order book.
func (m *Matcher) Book() *OrderBook { return m.book }

// CancelledOrders returns how many orders were removed by cancel
// instructions so far.
func (m *Matcher) CancelledOrders() int64 { return m.cancelled }

// ExpiredOrders returns how many orders were removed by expiry so far.
func (m *Matcher) ExpiredOrders() int64 { return m.expired }

// Process handles one instruction event. It returns a ValidationError
// for a malformed submission (the caller drops the instruction and the
// run continues) and an InvariantError for bookkeeping inconsistencies
// (the caller must abort the run). A market order against an empty
// opposite side is a silent no-op, not an error.
func (m *Matcher) Process(evt *sim.Event) error {
	now := m.clock.Now()

	before := m.book.TopOfBook(now)

	var err error
	switch p := evt.Payload().(type) {
	case sim.SubmitOrder:
		err = m.submit(p.Order, now, evt)
	case sim.ModifyOrder:
		err = m.modify(p.Order, p.NewPrice, p.NewSize, now, evt)
	case sim.CancelOrder:
		err = m.remove(p.Order, ReasonCancel, now, evt)
	case sim.ExpireOrder:
		err = m.remove(p.Order, ReasonExpire, now, evt)
	default:
		return domain.Invariantf("matcher.process", "event #%d carries non-instruction payload %T", evt.ID(), evt.Payload())
	}
	if err != nil {
		return err
	}

	after := m.book.TopOfBook(now)
	if !after.Same(before) {
		id, err := m.book.NextID()
		if err != nil {
			return err
		}
		after.ID = id
		if _, err := m.queue.Schedule(now, sim.PriorityNotify, sim.QuoteChanged{Quote: after}); err != nil {
			return err
		}
	}

	return nil
}

// submit validates a new order, reserves its resources, registers it
// with the owner and runs the match.
func (m *Matcher) submit(o *domain.Order, now domain.TimeStamp, procEvt *sim.Event) error {
	ok, err := m.validate(o, now)
	if err != nil {
		return err
	}
	if !ok {
		// Market order against an empty opposite side: drop silently.
		return nil
	}

	o.OrderTime = now
	o.PriorityTime = now
	o.LastUpdate = now

	pf := o.Owner
	if o.IsBuy() {
		if o.IsLimit() {
			value := m.dec.PriceToCash(o.Outstanding * o.LimitPrice)
			pf.Cash -= value
			pf.BlockedCash += value
		}
		// A buy market order reserves nothing up front; it settles at
		// trade prices as they happen.
	} else {
		pf.Inventory -= o.Outstanding
		pf.BlockedInventory += o.Outstanding
	}

	if !pf.AddOrder(o) {
		return domain.Invariantf("matcher.submit", "order #%d already in owner's %s set", o.ID, o.Side)
	}

	return m.match(o, now, procEvt)
}

func (m *Matcher) validate(o *domain.Order, now domain.TimeStamp) (bool, error) {
	if o.Outstanding < 1 {
		return false, domain.Validationf("order #%d: size must be strictly positive", o.ID)
	}
	if o.IsLimit() && o.LimitPrice <= 0 {
		return false, domain.Validationf("order #%d: limit price must be strictly positive", o.ID)
	}
	if !o.IsLimit() && m.book.Empty(o.Side.Opposite()) {
		return false, nil
	}
	if o.Expiry != nil && now.Compare(*o.Expiry) >= 0 {
		return false, domain.Validationf("order #%d: expiry %s already passed", o.ID, *o.Expiry)
	}
	return true, nil
}

// modify reprices/resizes a resting order and rematches it. An order
// already fully filled earlier in the same turn is a no-op. Queue
// position is kept only for a pure size reduction at an unchanged price.
func (m *Matcher) modify(o *domain.Order, newPrice, newSize int64, now domain.TimeStamp, procEvt *sim.Event) error {
	if newSize < 1 {
		return domain.Invariantf("matcher.modify", "order #%d: new size must be strictly positive", o.ID)
	}
	if newPrice <= 0 {
		return domain.Invariantf("matcher.modify", "order #%d: new price must be strictly positive", o.ID)
	}

	if o.Outstanding < 1 {
		// Already filled by an earlier event in this turn.
		return nil
	}

	pf := o.Owner
	if !pf.RemoveOrder(o) {
		return domain.Invariantf("matcher.modify", "order #%d missing from owner's %s set", o.ID, o.Side)
	}
	if !m.book.Remove(o) {
		return domain.Invariantf("matcher.modify", "order #%d missing from book %s side", o.ID, o.Side)
	}
	if err := m.queue.PurgeOrder(o.ID, procEvt); err != nil {
		return err
	}

	o.LastUpdate = now
	if !(newPrice == o.LimitPrice && newSize <= o.Outstanding) {
		o.PriorityTime = now
	}

	if o.IsLimit() && o.IsBuy() {
		delta := m.dec.PriceToCash(newSize*newPrice - o.Outstanding*o.LimitPrice)
		pf.Cash -= delta
		pf.BlockedCash += delta
	}
	if !o.IsBuy() {
		delta := newSize - o.Outstanding
		pf.Inventory -= delta
		pf.BlockedInventory += delta
	}

	o.Outstanding = newSize
	o.LimitPrice = newPrice

	if !pf.AddOrder(o) {
		return domain.Invariantf("matcher.modify", "order #%d could not rejoin owner's %s set", o.ID, o.Side)
	}

	return m.match(o, now, procEvt)
}

// match runs the clearing loop: while the incoming order is marketable
// it trades against the best resting opposite order at that order's
// price, settling both portfolios atomically per fill. Any remainder
// rests (limit), converts (market, non-IOC) or is cancelled (market, IOC).
func (m *Matcher) match(o *domain.Order, now domain.TimeStamp, procEvt *sim.Event) error {
	opposite := o.Side.Opposite()
	pf := o.Owner

	var lastPrice int64
	traded := false

	for o.Outstanding > 0 {
		cp, found := m.book.Best(opposite)
		if !found {
			break
		}
		if o.IsLimit() {
			if o.IsBuy() && cp.LimitPrice > o.LimitPrice {
				break
			}
			if !o.IsBuy() && cp.LimitPrice < o.LimitPrice {
				break
			}
		}

		tradePrice := cp.LimitPrice
		tradeSize := o.Outstanding
		if cp.Outstanding < tradeSize {
			tradeSize = cp.Outstanding
		}

		tradeID, err := m.book.NextID()
		if err != nil {
			return err
		}
		trade := &domain.Trade{
			ID:           tradeID,
			Time:         now,
			Price:        tradePrice,
			Size:         tradeSize,
			AggressorBuy: o.IsBuy(),
		}
		if o.IsBuy() {
			trade.BuyTrader = pf.Trader
			trade.SellTrader = cp.Owner.Trader
		} else {
			trade.BuyTrader = cp.Owner.Trader
			trade.SellTrader = pf.Trader
		}
		if _, err := m.queue.Schedule(now, sim.PriorityNotify, sim.TradeExecuted{Trade: trade}); err != nil {
			return err
		}
		m.log.Debug("trade",
			slog.Int64("id", trade.ID),
			slog.Int64("price", trade.Price),
			slog.Int64("size", trade.Size),
			slog.Bool("aggressor_buy", trade.AggressorBuy))

		// Settle the passive counterparty: unblock its reservation at
		// the trade price and credit the counterpart resource.
		mk := cp.Owner
		if o.IsBuy() { // cp sells
			mk.BlockedInventory -= tradeSize
			mk.Cash += m.dec.PriceToCash(tradeSize * tradePrice)
		} else { // cp buys
			mk.Inventory += tradeSize
			mk.BlockedCash -= m.dec.PriceToCash(tradeSize * tradePrice)
		}

		cp.Outstanding -= tradeSize
		cp.LastUpdate = now

		if cp.Outstanding == 0 {
			if !mk.RemoveOrder(cp) {
				return domain.Invariantf("matcher.match", "filled counterparty #%d missing from owner's %s set", cp.ID, cp.Side)
			}
			if !m.book.Remove(cp) {
				return domain.Invariantf("matcher.match", "filled counterparty #%d missing from book %s side", cp.ID, cp.Side)
			}
			if err := m.queue.PurgeOrder(cp.ID, procEvt); err != nil {
				return err
			}
		}

		// Settle the aggressor.
		o.Outstanding -= tradeSize
		if o.IsBuy() {
			pf.Inventory += tradeSize
			if o.IsLimit() {
				pf.BlockedCash -= m.dec.PriceToCash(tradeSize * o.LimitPrice)
				// The maker price may improve on the limit: refund the
				// excess reservation.
				pf.Cash += m.dec.PriceToCash(tradeSize * (o.LimitPrice - tradePrice))
			} else {
				pf.Cash -= m.dec.PriceToCash(tradeSize * tradePrice)
			}
		} else {
			pf.BlockedInventory -= tradeSize
			pf.Cash += m.dec.PriceToCash(tradeSize * tradePrice)
		}

		if o.Outstanding == 0 {
			if !pf.RemoveOrder(o) {
				return domain.Invariantf("matcher.match", "filled order #%d missing from owner's %s set", o.ID, o.Side)
			}
		}

		lastPrice = tradePrice
		traded = true
	}

	if o.Outstanding == 0 {
		return nil
	}

	if !o.IsLimit() {
		if m.ioc {
			// Cancel the remainder: drop it from the owner's set and
			// release whatever reservation exists (sell only — a buy
			// market order never reserved).
			if !pf.RemoveOrder(o) {
				return domain.Invariantf("matcher.match", "unfilled market order #%d missing from owner's %s set", o.ID, o.Side)
			}
			if !o.IsBuy() {
				pf.BlockedInventory -= o.Outstanding
				pf.Inventory += o.Outstanding
			}
			return nil
		}

		// Non-IOC: convert the remainder into a limit order at the last
		// trade price. Validation already excluded an empty opposite
		// side, so a conversion with zero trades means the book is
		// inconsistent.
		if !traded {
			return domain.Invariantf("matcher.match", "market order #%d converted with zero trades", o.ID)
		}
		o.Kind = domain.KindLimit
		o.LimitPrice = lastPrice
		if o.IsBuy() {
			value := m.dec.PriceToCash(o.Outstanding * o.LimitPrice)
			pf.Cash -= value
			pf.BlockedCash += value
		}
	}

	if !m.book.Insert(o) {
		return domain.Invariantf("matcher.match", "order #%d already on book %s side", o.ID, o.Side)
	}
	if o.Expiry != nil {
		if _, err := m.queue.Schedule(*o.Expiry, sim.PriorityExpire, sim.ExpireOrder{Order: o}); err != nil {
			return err
		}
	}

	return nil
}

// remove takes a resting order off the book unconditionally, releases
// its full reservation and purges its pending follow-up events. Cancel
// and expiry share this routine; the reason only feeds statistics.
func (m *Matcher) remove(o *domain.Order, reason RemovalReason, now domain.TimeStamp, procEvt *sim.Event) error {
	o.LastUpdate = now

	pf := o.Owner
	if !pf.RemoveOrder(o) {
		return domain.Invariantf("matcher.remove", "order #%d missing from owner's %s set", o.ID, o.Side)
	}
	if !m.book.Remove(o) {
		return domain.Invariantf("matcher.remove", "order #%d missing from book %s side", o.ID, o.Side)
	}

	if o.IsBuy() {
		value := m.dec.PriceToCash(o.Outstanding * o.LimitPrice)
		pf.Cash += value
		pf.BlockedCash -= value
	} else {
		pf.Inventory += o.Outstanding
		pf.BlockedInventory -= o.Outstanding
	}

	if err := m.queue.PurgeOrder(o.ID, procEvt); err != nil {
		return err
	}

	switch reason {
	case ReasonCancel:
		m.cancelled++
	case ReasonExpire:
		m.expired++
	}

	return nil
}
