package matching

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/liquidbond/matchingledger/internal/bonds/compliance"
	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/events"
	"github.com/liquidbond/matchingledger/internal/bonds/ledger"
	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// Engine matches incoming orders against each instrument's resting book.
// Every instrument is processed by exactly one goroutine, so two orders
// for the same instrument are never matched concurrently — the single
// mutable resource (the book) never needs its own lock. This mirrors the
// single-threaded-sequencer pattern, with a plain Go channel standing in
// for a lock-free ring buffer.
type Engine struct {
	store     storage.Store
	ledger    *ledger.Ledger
	gate      compliance.Gate
	publisher events.Publisher
	logger    *slog.Logger

	mu     sync.Mutex
	actors map[domain.Instrument]chan *job
}

type job struct {
	ctx   context.Context
	order *domain.Order
	resp  chan jobResult
}

type jobResult struct {
	order  *domain.Order
	trades []*domain.Trade
	err    error
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithPublisher attaches a trade-event publisher. The default is
// events.NoopPublisher.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithLogger attaches a logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine returns an Engine over store, ledger, and gate.
func NewEngine(store storage.Store, l *ledger.Ledger, gate compliance.Gate, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		ledger:    l,
		gate:      gate,
		publisher: events.NoopPublisher{},
		logger:    slog.Default(),
		actors:    make(map[domain.Instrument]chan *job),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) actorFor(instrument domain.Instrument) chan *job {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.actors[instrument]
	if ok {
		return ch
	}
	ch = make(chan *job, 256)
	e.actors[instrument] = ch
	go e.run(instrument, ch)
	return ch
}

func (e *Engine) run(instrument domain.Instrument, ch chan *job) {
	for j := range ch {
		order, trades, err := e.process(j.ctx, j.order)
		j.resp <- jobResult{order: order, trades: trades, err: err}
	}
}

// Submit validates and compliance-checks order, then queues it onto its
// instrument's single-writer actor and waits for the match result.
func (e *Engine) Submit(ctx context.Context, order *domain.Order) (*domain.Order, []*domain.Trade, error) {
	if err := order.Validate(); err != nil {
		return nil, nil, err
	}

	compliant, err := e.gate.IsUserCompliant(ctx, order.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !compliant {
		return nil, nil, domain.ErrComplianceRejected
	}

	allowed, err := e.gate.PreTradeCheck(ctx, order.Instrument, order.UserID, order.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, domain.ErrComplianceRejected
	}

	ch := e.actorFor(order.Instrument)
	resp := make(chan jobResult, 1)
	select {
	case ch <- &job{ctx: ctx, order: order, resp: resp}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	select {
	case result := <-resp:
		return result.order, result.trades, result.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// process runs the match loop for order against its instrument's
// book: cross while the best opposite entry still crosses the order's
// limit, filling both sides exactly, then rests any residual quantity.
func (e *Engine) process(ctx context.Context, order *domain.Order) (*domain.Order, []*domain.Trade, error) {
	book := NewBook(e.store, order.Instrument)
	var trades []*domain.Trade
	orderPrice, _ := order.Price.Float64()

	// Persisted before matching so a caller reconciling a mid-match
	// StoreUnavailable, or a ledger lookup resolving this order's userId as
	// a counterparty on a trade recorded below, always finds the document.
	if err := e.persistOrder(ctx, order); err != nil {
		return order, trades, err
	}

	for order.RemainingQuantity.Sign() > 0 {
		entries, err := book.BestOpposite(ctx, order.Side)
		if err != nil {
			return order, trades, err
		}
		if len(entries) == 0 {
			break
		}
		top := entries[0]
		if !Crosses(order.Side, orderPrice, top.Score) {
			break
		}

		resting, ok, err := e.loadOrder(ctx, top.Member)
		if err != nil {
			return order, trades, err
		}
		if !ok {
			// Stale book entry (resting order document missing or
			// unreadable): drop it from the book and retry the loop
			// against the next-best entry.
			if err := e.store.ZRem(ctx, bookKeyForStaleEntry(order.Instrument, order.Side), top.Member); err != nil {
				return order, trades, err
			}
			continue
		}

		buyerID, sellerID := participantUserIDs(order, resting)
		allowed, err := e.gate.PreTradeCheck(ctx, order.Instrument, buyerID, sellerID)
		if err != nil {
			return order, trades, err
		}
		if !allowed {
			break
		}

		matchQty := decimalMin(order.RemainingQuantity, resting.RemainingQuantity)
		trade := domain.NewTrade(order.Instrument, resting.Price, matchQty, order, resting)

		if err := e.ledger.RecordTrade(ctx, trade); err != nil {
			return order, trades, err
		}
		trades = append(trades, trade)

		order.ApplyFill(matchQty)
		resting.ApplyFill(matchQty)

		if err := e.persistOrder(ctx, resting); err != nil {
			return order, trades, err
		}
		if resting.IsFilled() {
			if err := book.Remove(ctx, resting); err != nil {
				return order, trades, err
			}
		}

		if err := e.gate.ReportTrade(ctx, trade); err != nil {
			e.logger.Warn("compliance trade report failed",
				slog.String("trade_id", trade.ID), slog.Any("error", err))
		}
		e.publisher.PublishTrade(ctx, trade)
	}

	if order.RemainingQuantity.Sign() > 0 {
		if err := book.Insert(ctx, order); err != nil {
			return order, trades, err
		}
	}
	if err := e.persistOrder(ctx, order); err != nil {
		return order, trades, err
	}
	return order, trades, nil
}

func (e *Engine) loadOrder(ctx context.Context, orderID string) (*domain.Order, bool, error) {
	body, ok, err := e.store.DocGet(ctx, storage.OrderKey(orderID))
	if err != nil || !ok {
		return nil, false, err
	}
	var o domain.Order
	if err := json.Unmarshal(body, &o); err != nil {
		e.logger.Warn("skipping malformed order record", slog.String("order_id", orderID))
		return nil, false, nil
	}
	return &o, true, nil
}

func (e *Engine) persistOrder(ctx context.Context, order *domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return domain.ErrInternalEncode
	}
	return e.store.DocPut(ctx, storage.OrderKey(order.ID), body)
}

// bookKeyForStaleEntry resolves the opposite-side book key a stale entry
// was found in, so it can be evicted directly without reconstructing a
// resting order we were unable to load.
func bookKeyForStaleEntry(instrument domain.Instrument, aggressorSide domain.OrderSide) string {
	if aggressorSide == domain.Buy {
		return storage.AsksKey(string(instrument))
	}
	return storage.BidsKey(string(instrument))
}

func participantUserIDs(order, resting *domain.Order) (buyerID, sellerID string) {
	if order.Side == domain.Buy {
		return order.UserID, resting.UserID
	}
	return resting.UserID, order.UserID
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
