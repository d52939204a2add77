// Package market wires the clock, event queue, order book, matching
// engine and traders into one simulated market and owns the run loop.
// Everything is single-threaded by design: latency is a time offset on
// scheduled events, never parallel execution, so the book and the
// portfolios are only ever touched while exactly one event is being
// processed.
package market

import (
	"log/slog"

	"github.com/mandes/MandesCDA/internal/agent"
	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/engine"
	"github.com/mandes/MandesCDA/internal/sim"
)

// Listener observes the notifications a run produces.
type Listener interface {
	OnTrade(t *domain.Trade)
	OnQuote(q domain.Quote)
}

// Params fixes the immutable configuration of one market instance.
type Params struct {
	TicksPerDay int
	PriceDigits int
	CashDigits  int
	NullPrice   int64
	IOC         bool
	Seed        int64
}

// Market holds the complete state of one simulation run.
type Market struct {
	params Params

	clock   *sim.Clock
	queue   *sim.EventQueue
	book    *engine.OrderBook
	matcher *engine.Matcher
	rng     *sim.Rand

	nextTrader int
	traders    map[int]*agent.Trader
	maker      *agent.Trader

	listeners []Listener
	log       *slog.Logger
}

// New creates an empty market from the given parameters.
func New(params Params, log *slog.Logger) *Market {
	clock := sim.NewClock(params.TicksPerDay)
	queue := sim.NewEventQueue()
	book := engine.NewOrderBook()
	dec := domain.Decimals{PriceDigits: params.PriceDigits, CashDigits: params.CashDigits}

	return &Market{
		params:  params,
		clock:   clock,
		queue:   queue,
		book:    book,
		matcher: engine.NewMatcher(book, queue, clock, dec, params.IOC, log),
		rng:     sim.NewRand(params.Seed),
		traders: make(map[int]*agent.Trader),
		log:     log,
	}
}

// Clock returns the market clock.
func (m *Market) Clock() *sim.Clock { return m.clock }

// Queue returns the event queue.
func (m *Market) Queue() *sim.EventQueue { return m.queue }

// Book returns the order book.
func (m *Market) Book() *engine.OrderBook { return m.book }

// Matcher returns the matching engine.
func (m *Market) Matcher() *engine.Matcher { return m.matcher }

// Rand returns the run's random stream.
func (m *Market) Rand() *sim.Rand { return m.rng }

// AddTrader registers a strategy with its own portfolio and returns the
// resulting trader. A strategy implementing agent.Replenisher takes the
// market-making role.
func (m *Market) AddTrader(s agent.Strategy, latency int, idleProb float64, cash, inventory int64) *agent.Trader {
	m.nextTrader++
	tr := &agent.Trader{
		ID:        m.nextTrader,
		Latency:   latency,
		IdleProb:  idleProb,
		Portfolio: domain.NewPortfolio(m.nextTrader, cash, inventory),
		Strategy:  s,
	}
	m.traders[tr.ID] = tr
	if _, ok := s.(agent.Replenisher); ok {
		m.maker = tr
	}
	return tr
}

// Trader returns a registered trader by id.
func (m *Market) Trader(id int) (*agent.Trader, bool) {
	tr, ok := m.traders[id]
	return tr, ok
}

// Subscribe registers a notification listener.
func (m *Market) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Start kick-starts the run: both book sides get a replenish request and
// every polling trader gets its first wake-up, all at tick one.
func (m *Market) Start() error {
	start := domain.TimeStamp{Day: 0, Tick: 1}

	if m.maker != nil {
		if _, err := m.queue.Schedule(start, sim.PriorityReplenish, sim.ReplenishBook{BidSide: true}); err != nil {
			return err
		}
		if _, err := m.queue.Schedule(start, sim.PriorityReplenish, sim.ReplenishBook{BidSide: false}); err != nil {
			return err
		}
	}

	for id := 1; id <= m.nextTrader; id++ {
		tr := m.traders[id]
		if tr.IdleProb <= 0 {
			continue
		}
		if _, err := m.queue.Schedule(start, sim.PriorityDefault, sim.WakeTrader{Trader: id}); err != nil {
			return err
		}
	}

	return nil
}

// Run drains the event queue until it empties or the next event lies
// beyond end. A validation failure drops the offending instruction and
// continues; any invariant violation aborts the run immediately.
func (m *Market) Run(end domain.TimeStamp) error {
	for {
		evt, ok := m.queue.PeekEarliest()
		if !ok || evt.Time().After(end) {
			return nil
		}

		// A market order bigger than the opposite depth cannot fill
		// entirely: defer it and have the maker refill that side first.
		if m.maker != nil {
			if sub, isSubmit := evt.Payload().(sim.SubmitOrder); isSubmit && !sub.Order.IsLimit() {
				opp := sub.Order.Side.Opposite()
				if sub.Order.Outstanding >= m.book.Depth(opp) {
					if _, err := m.queue.Schedule(m.clock.Now(), sim.PriorityReplenish, sim.ReplenishBook{BidSide: opp == domain.SideBuy}); err != nil {
						return err
					}
					continue
				}
			}
		}

		m.queue.PopEarliest()

		if err := m.clock.AdvanceTo(evt.Time()); err != nil {
			return err
		}

		if err := m.dispatch(evt); err != nil {
			return err
		}
	}
}

func (m *Market) dispatch(evt *sim.Event) error {
	switch p := evt.Payload().(type) {
	case sim.SubmitOrder, sim.ModifyOrder, sim.CancelOrder, sim.ExpireOrder:
		if err := m.matcher.Process(evt); err != nil {
			if domain.IsValidation(err) {
				m.log.Warn("instruction rejected", slog.String("reason", err.Error()))
				return nil
			}
			return err
		}
		switch evt.Payload().(type) {
		case sim.CancelOrder, sim.ExpireOrder:
			return m.checkEmptySides()
		}
		return nil

	case sim.TradeExecuted:
		for _, l := range m.listeners {
			l.OnTrade(p.Trade)
		}
		return m.checkEmptySides()

	case sim.QuoteChanged:
		for _, l := range m.listeners {
			l.OnQuote(p.Quote)
		}
		return nil

	case sim.WakeTrader:
		return m.wake(p.Trader)

	case sim.ReplenishBook:
		return m.replenish(p.BidSide)

	default:
		return domain.Invariantf("market.dispatch", "no handler for payload %T", evt.Payload())
	}
}

// checkEmptySides requests a refill for any side left without orders.
// Checked after fills, cancels and expirations, the events that can
// empty a side.
func (m *Market) checkEmptySides() error {
	if m.maker == nil {
		return nil
	}
	now := m.clock.Now()
	if m.book.Empty(domain.SideBuy) {
		if _, err := m.queue.Schedule(now, sim.PriorityReplenish, sim.ReplenishBook{BidSide: true}); err != nil {
			return err
		}
	}
	if m.book.Empty(domain.SideSell) {
		if _, err := m.queue.Schedule(now, sim.PriorityReplenish, sim.ReplenishBook{BidSide: false}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Market) view(tr *agent.Trader) *agent.View {
	return &agent.View{
		Now:         m.clock.Now(),
		Book:        m.book,
		Portfolio:   tr.Portfolio,
		Rand:        m.rng,
		NullPrice:   m.params.NullPrice,
		PriceDigits: m.params.PriceDigits,
	}
}

// wake lets one trader's strategy act and chains its next wake-up.
func (m *Market) wake(id int) error {
	tr, ok := m.traders[id]
	if !ok {
		return domain.Invariantf("market.wake", "unknown trader #%d", id)
	}

	if instr := tr.Strategy.Wake(m.view(tr)); instr != nil {
		if err := m.schedule(tr, instr); err != nil {
			return err
		}
	}

	next := m.clock.Add(m.clock.Now(), tr.NextSleep(m.rng))
	_, err := m.queue.Schedule(next, sim.PriorityDefault, sim.WakeTrader{Trader: id})
	return err
}

// replenish asks the maker for refill orders on one side.
func (m *Market) replenish(bidSide bool) error {
	if m.maker == nil {
		return nil
	}
	rep := m.maker.Strategy.(agent.Replenisher)
	for _, instr := range rep.Replenish(m.view(m.maker), bidSide) {
		if err := m.schedule(m.maker, instr); err != nil {
			return err
		}
	}
	return nil
}

// schedule materializes a strategy instruction as an event at the
// trader's latency offset. Orders are created here, never by the
// strategies, so ids stay owned by the book.
func (m *Market) schedule(tr *agent.Trader, instr agent.Instruction) error {
	at := m.clock.Add(m.clock.Now(), tr.Latency)

	switch v := instr.(type) {
	case agent.Submit:
		id, err := m.book.NextID()
		if err != nil {
			return err
		}
		prio := v.Spec.Priority
		if prio == 0 {
			prio = sim.PriorityDefault
		}
		order := &domain.Order{
			ID:          id,
			Owner:       tr.Portfolio,
			Side:        v.Spec.Side,
			Kind:        v.Spec.Kind,
			Outstanding: v.Spec.Size,
			LimitPrice:  v.Spec.Price,
			Expiry:      v.Spec.Expiry,
		}
		_, err = m.queue.Schedule(at, prio, sim.SubmitOrder{Order: order})
		return err

	case agent.Cancel:
		_, err := m.queue.Schedule(at, sim.PriorityDefault, sim.CancelOrder{Order: v.Order})
		return err

	case agent.Modify:
		_, err := m.queue.Schedule(at, sim.PriorityDefault, sim.ModifyOrder{Order: v.Order, NewPrice: v.NewPrice, NewSize: v.NewSize})
		return err

	default:
		return domain.Invariantf("market.schedule", "unknown instruction %T", instr)
	}
}
