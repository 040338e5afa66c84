package matching

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// PriceLevel aggregates every resting order at one price into a single
// quoted level: total resting quantity and how many orders make it up.
type PriceLevel struct {
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	OrderCount int             `json:"orderCount"`
}

// Snapshot is a read-only, point-in-time view of one instrument's book:
// bids best-price-first, asks best-price-first.
type Snapshot struct {
	Instrument domain.Instrument `json:"instrument"`
	Bids       []PriceLevel      `json:"bids"`
	Asks       []PriceLevel      `json:"asks"`
}

// Snapshot aggregates the resting orders of instrument's book into
// quoted price levels. It only reads the book and order documents; it
// never mutates state, so it adds no writer and needs no actor
// serialization.
func (e *Engine) Snapshot(ctx context.Context, instrument domain.Instrument) (*Snapshot, error) {
	book := NewBook(e.store, instrument)

	bidEntries, err := book.Bids(ctx)
	if err != nil {
		return nil, err
	}
	askEntries, err := book.Asks(ctx)
	if err != nil {
		return nil, err
	}

	bids, err := e.aggregateLevels(ctx, bidEntries)
	if err != nil {
		return nil, err
	}
	asks, err := e.aggregateLevels(ctx, askEntries)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Instrument: instrument, Bids: bids, Asks: asks}, nil
}

// aggregateLevels groups a price-ordered run of book entries into
// PriceLevels, preserving the entries' own order (best price first) and
// collapsing consecutive entries that share a price. A stale entry
// (its order document missing or unreadable) is skipped.
func (e *Engine) aggregateLevels(ctx context.Context, entries []storage.Entry) ([]PriceLevel, error) {
	var levels []PriceLevel
	for _, entry := range entries {
		order, ok, err := e.loadOrder(ctx, entry.Member)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if n := len(levels); n > 0 && levels[n-1].Price.Equal(order.Price) {
			levels[n-1].Quantity = levels[n-1].Quantity.Add(order.RemainingQuantity)
			levels[n-1].OrderCount++
			continue
		}
		levels = append(levels, PriceLevel{
			Price:      order.Price,
			Quantity:   order.RemainingQuantity,
			OrderCount: 1,
		})
	}
	return levels, nil
}
