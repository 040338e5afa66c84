// Package storage defines the minimum primitives the matching engine and
// ledger need from a backing store: a document map, per-instrument
// price-ordered multisets, and tag sets. Two implementations exist:
// package redis (wire-compatible with a bit-exact Redis key layout) and
// package memory (an in-process store for tests and for in-memory
// deployments).
package storage

import (
	"context"
	"sort"
)

// Entry is one (score, member) pair in a sorted multiset.
type Entry struct {
	Score  float64
	Member string
}

// Store is the storage abstraction every component depends on. Every operation
// completes atomically against the underlying store; callers restore
// cross-operation invariants through ordering, not transactions.
type Store interface {
	// DocPut overwrites the document at key.
	DocPut(ctx context.Context, key string, value []byte) error
	// DocGet returns the document at key, or ok=false if absent.
	DocGet(ctx context.Context, key string) (value []byte, ok bool, err error)

	// ZAdd inserts member into the sorted multiset at bookKey under score.
	ZAdd(ctx context.Context, bookKey string, score float64, member string) error
	// ZRangeAsc yields all entries of bookKey in ascending score order,
	// with ties broken by insertion order (earliest first).
	ZRangeAsc(ctx context.Context, bookKey string) ([]Entry, error)
	// ZRangeDesc yields all entries of bookKey in descending score order,
	// with ties still broken by insertion order (earliest first) — time
	// priority at a price level never depends on scan direction.
	ZRangeDesc(ctx context.Context, bookKey string) ([]Entry, error)
	// ZRem removes an exact member match from bookKey. Idempotent.
	ZRem(ctx context.Context, bookKey string, member string) error

	// SAdd inserts member into the set at tagKey. Idempotent.
	SAdd(ctx context.Context, tagKey string, member string) error
	// SMembers enumerates the members of the set at tagKey.
	SMembers(ctx context.Context, tagKey string) ([]string, error)

	// ScanPrefix enumerates document keys starting with prefix. Used only
	// by the ledger's unfiltered query path.
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Key prefixes, bit-exact across every Store implementation.
const (
	OrderKeyPrefix           = "bonds:orders:"
	TradeKeyPrefix           = "bonds:trades:"
	BidsKeyPrefix            = "bonds:bids:"
	AsksKeyPrefix            = "bonds:asks:"
	UserTradesKeyPrefix      = "bonds:user-trades:"
	InstrumentTradesKeyPrefix = "bonds:instrument-trades:"
	DailyTradesKeyPrefix     = "bonds:daily-trades:"
)

// OrderKey returns the document key for an order id.
func OrderKey(orderID string) string { return OrderKeyPrefix + orderID }

// TradeKey returns the document key for a trade id.
func TradeKey(tradeID string) string { return TradeKeyPrefix + tradeID }

// BidsKey returns the buy-book key for an instrument.
func BidsKey(instrument string) string { return BidsKeyPrefix + instrument }

// AsksKey returns the sell-book key for an instrument.
func AsksKey(instrument string) string { return AsksKeyPrefix + instrument }

// UserTradesKey returns the user tag-set key.
func UserTradesKey(userID string) string { return UserTradesKeyPrefix + userID }

// InstrumentTradesKey returns the instrument tag-set key.
func InstrumentTradesKey(instrument string) string { return InstrumentTradesKeyPrefix + instrument }

// DailyTradesKey returns the day tag-set key for a YYYYMMDD day string.
func DailyTradesKey(day string) string { return DailyTradesKeyPrefix + day }

// StableSortDescByScore reorders entries to descending score, preserving
// the relative order of entries that share a score. Implementations use
// this to derive a descending scan from an ascending one without letting
// the store's native tie-break direction leak into FIFO ordering.
func StableSortDescByScore(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
