// Package matching implements the limit order book and the matching
// algorithm: price-time priority, partial fills, and
// resting-order persistence, serialized per instrument.
package matching

import (
	"context"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// Book is the price-ordered view of one instrument's resting orders,
// backed by the storage abstraction's sorted multisets. It holds no state
// of its own beyond the instrument and store reference — every read goes
// straight to the store, so a Book is cheap to construct per request.
type Book struct {
	store      storage.Store
	instrument domain.Instrument
}

// NewBook returns a Book for instrument over store.
func NewBook(store storage.Store, instrument domain.Instrument) *Book {
	return &Book{store: store, instrument: instrument}
}

func (b *Book) keyFor(side domain.OrderSide) string {
	if side == domain.Buy {
		return storage.BidsKey(string(b.instrument))
	}
	return storage.AsksKey(string(b.instrument))
}

// Insert files order into the book side matching its own Side, under a
// score equal to its price.
func (b *Book) Insert(ctx context.Context, order *domain.Order) error {
	price, _ := order.Price.Float64()
	return b.store.ZAdd(ctx, b.keyFor(order.Side), price, order.ID)
}

// Remove takes order out of its own side's book. Idempotent.
func (b *Book) Remove(ctx context.Context, order *domain.Order) error {
	return b.store.ZRem(ctx, b.keyFor(order.Side), order.ID)
}

// BestOpposite returns the order IDs resting on the side that crosses
// against aggressorSide, best price first: for a Buy aggressor that is
// the ask side ascending (cheapest first); for a Sell aggressor that is
// the bid side descending (highest bid first). Ties are FIFO, earliest
// insertion first, per the storage abstraction's contract.
func (b *Book) BestOpposite(ctx context.Context, aggressorSide domain.OrderSide) ([]storage.Entry, error) {
	if aggressorSide == domain.Buy {
		return b.store.ZRangeAsc(ctx, storage.AsksKey(string(b.instrument)))
	}
	return b.store.ZRangeDesc(ctx, storage.BidsKey(string(b.instrument)))
}

// Bids returns every resting bid, best (highest) price first, ties FIFO.
func (b *Book) Bids(ctx context.Context) ([]storage.Entry, error) {
	return b.store.ZRangeDesc(ctx, storage.BidsKey(string(b.instrument)))
}

// Asks returns every resting ask, best (lowest) price first, ties FIFO.
func (b *Book) Asks(ctx context.Context) ([]storage.Entry, error) {
	return b.store.ZRangeAsc(ctx, storage.AsksKey(string(b.instrument)))
}

// Crosses reports whether an aggressor of side at price would cross the
// resting entry at restingPrice: a buy crosses an ask at or below its
// limit price, a sell crosses a bid at or above its limit price.
func Crosses(side domain.OrderSide, limitPrice, restingPrice float64) bool {
	if side == domain.Buy {
		return restingPrice <= limitPrice
	}
	return restingPrice >= limitPrice
}
