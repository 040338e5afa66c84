// Package ledger indexes executed trades for multi-dimensional retrieval:
// by user, by instrument, and by day, with a query path that seeds its scan
// from whichever dimension the caller narrowed most and then filters the
// rest in process.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// Ledger records and queries trades against a storage.Store.
type Ledger struct {
	store  storage.Store
	logger *slog.Logger
}

// New returns a Ledger backed by store.
func New(store storage.Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, logger: logger}
}

// indexDay is the day tag a trade is filed under at write time: the
// indexing clock's current day, not the trade's own timestamp. The two
// coincide in the overwhelming common case (a trade is indexed the instant
// it is recorded) and only diverge under clock skew or a backdated write,
// in which case the write-time day is what a "trades indexed today" query
// means.
func indexDay() string {
	now := time.Now().UTC()
	return now.Format("20060102")
}

// RecordTrade persists trade as a document and files it under every
// retrieval dimension: both participant users, the instrument, and the
// current index day.
func (l *Ledger) RecordTrade(ctx context.Context, trade *domain.Trade) error {
	body, err := json.Marshal(trade)
	if err != nil {
		return domain.ErrInternalEncode
	}
	if err := l.store.DocPut(ctx, storage.TradeKey(trade.ID), body); err != nil {
		return err
	}

	day := indexDay()
	tagOps := []struct{ key, member string }{
		{storage.UserTradesKey(trade.BuyerUserID), trade.ID},
		{storage.UserTradesKey(trade.SellerUserID), trade.ID},
		{storage.InstrumentTradesKey(string(trade.Instrument)), trade.ID},
		{storage.DailyTradesKey(day), trade.ID},
	}
	for _, op := range tagOps {
		if err := l.store.SAdd(ctx, op.key, op.member); err != nil {
			l.logger.Error("failed to index trade",
				slog.String("trade_id", trade.ID),
				slog.String("tag_key", op.key),
				slog.Any("error", err),
			)
			return err
		}
	}
	return nil
}

// QueryParams narrows a ledger query. Every field is optional; the zero
// value of a field means "unconstrained on that dimension". UserID matches
// either side of the trade.
type QueryParams struct {
	UserID      string
	Instrument  string
	StartDay    string
	EndDay      string
	MinAmount   *float64
	MaxAmount   *float64
}

// Query returns every trade matching params, seeded from whichever
// dimension narrows the candidate set most cheaply: UserID, then
// Instrument, then StartDay, then an unfiltered scan of all trade
// documents. Every other supplied field is then applied as a post-filter
// over the seeded candidates.
func (l *Ledger) Query(ctx context.Context, params QueryParams) ([]*domain.Trade, error) {
	ids, err := l.seed(ctx, params)
	if err != nil {
		return nil, err
	}

	trades := make([]*domain.Trade, 0, len(ids))
	for _, id := range ids {
		trade, ok, err := l.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !matches(trade, params) {
			continue
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (l *Ledger) seed(ctx context.Context, params QueryParams) ([]string, error) {
	switch {
	case params.UserID != "":
		return l.store.SMembers(ctx, storage.UserTradesKey(params.UserID))
	case params.Instrument != "":
		return l.store.SMembers(ctx, storage.InstrumentTradesKey(params.Instrument))
	case params.StartDay != "":
		return l.store.SMembers(ctx, storage.DailyTradesKey(params.StartDay))
	default:
		keys, err := l.store.ScanPrefix(ctx, storage.TradeKeyPrefix)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(keys))
		for i, k := range keys {
			ids[i] = k[len(storage.TradeKeyPrefix):]
		}
		return ids, nil
	}
}

func (l *Ledger) load(ctx context.Context, tradeID string) (*domain.Trade, bool, error) {
	body, ok, err := l.store.DocGet(ctx, storage.TradeKey(tradeID))
	if err != nil || !ok {
		return nil, ok, err
	}
	var trade domain.Trade
	if err := json.Unmarshal(body, &trade); err != nil {
		l.logger.Warn("skipping malformed trade record", slog.String("trade_id", tradeID))
		return nil, false, nil
	}
	return &trade, true, nil
}

func matches(trade *domain.Trade, params QueryParams) bool {
	if params.UserID != "" && trade.BuyerUserID != params.UserID && trade.SellerUserID != params.UserID {
		return false
	}
	if params.Instrument != "" && string(trade.Instrument) != params.Instrument {
		return false
	}
	day := trade.Day()
	if params.StartDay != "" && day < params.StartDay {
		return false
	}
	if params.EndDay != "" && day > params.EndDay {
		return false
	}
	if params.MinAmount != nil || params.MaxAmount != nil {
		amount, _ := trade.Amount().Float64()
		if params.MinAmount != nil && amount < *params.MinAmount {
			return false
		}
		if params.MaxAmount != nil && amount > *params.MaxAmount {
			return false
		}
	}
	return true
}
