package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is the immutable record of one executed match. Price is always the
// resting order's price (price improvement accrues to the passive side);
// quantity is the matched amount, not either order's full size.
type Trade struct {
	ID               string          `json:"id"`
	Instrument       Instrument      `json:"instrument"`
	Price            decimal.Decimal `json:"price"`
	Quantity         decimal.Decimal `json:"quantity"`
	AggressorOrderID string          `json:"aggressorOrderId"`
	RestingOrderID   string          `json:"restingOrderId"`
	BuyerOrderID     string          `json:"buyerOrderId"`
	SellerOrderID    string          `json:"sellerOrderId"`
	BuyerUserID      string          `json:"buyerUserId"`
	SellerUserID     string          `json:"sellerUserId"`
	Timestamp        string          `json:"timestamp"`
}

// NewTrade builds a Trade from an aggressor/resting pair that just matched.
// The buyer/seller ids are derived from whichever side is Buy, per the
// Trade invariants.
func NewTrade(instrument Instrument, price, quantity decimal.Decimal, aggressor, resting *Order) *Trade {
	t := &Trade{
		ID:               uuid.NewString(),
		Instrument:       instrument,
		Price:            price,
		Quantity:         quantity,
		AggressorOrderID: aggressor.ID,
		RestingOrderID:   resting.ID,
		Timestamp:        time.Now().UTC().Format(time.RFC3339Nano),
	}
	if aggressor.Side == Buy {
		t.BuyerOrderID = aggressor.ID
		t.SellerOrderID = resting.ID
		t.BuyerUserID = aggressor.UserID
		t.SellerUserID = resting.UserID
	} else {
		t.BuyerOrderID = resting.ID
		t.SellerOrderID = aggressor.ID
		t.BuyerUserID = resting.UserID
		t.SellerUserID = aggressor.UserID
	}
	return t
}

// Day returns the trade's YYYYMMDD day string, derived from the first ten
// characters of its ISO-8601 timestamp with '-' stripped, for use in
// day-range ledger queries.
func (t *Trade) Day() string {
	if len(t.Timestamp) < 10 {
		return ""
	}
	date := t.Timestamp[:10]
	out := make([]byte, 0, 8)
	for i := 0; i < len(date); i++ {
		if date[i] != '-' {
			out = append(out, date[i])
		}
	}
	return string(out)
}

// Amount is price * quantity, computed exactly via decimal.
func (t *Trade) Amount() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}
