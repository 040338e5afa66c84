// Package domain holds the Order and Trade model shared by the matching
// engine and the ledger. Types are plain data with small invariant helpers;
// the engine and ledger are the only writers (see package matching and
// package ledger).
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Instrument is an opaque, byte-exact identifier. The engine never
// interprets its structure.
type Instrument string

// OrderSide is Buy or Sell.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderStatus tracks an order's position in its state machine.
// Cancelled is reserved: the engine never produces it, only a future
// cancel/replace hook would.
type OrderStatus string

const (
	Open            OrderStatus = "OPEN"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
	Cancelled       OrderStatus = "CANCELLED"
)

// Order is a resting or aggressor limit order for one instrument.
type Order struct {
	ID                string          `json:"id"`
	Instrument        Instrument      `json:"instrument"`
	Side              OrderSide       `json:"side"`
	Price             decimal.Decimal `json:"price"`
	InitialQuantity   decimal.Decimal `json:"initialQuantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	Timestamp         string          `json:"timestamp"`
	Status            OrderStatus     `json:"status"`
	UserID            string          `json:"userId"`
}

// NewOrder constructs a fresh Open order with remaining == initial, per the
// order submission's pre-conditions.
func NewOrder(instrument Instrument, side OrderSide, price, quantity decimal.Decimal, userID string) *Order {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return &Order{
		ID:                uuid.NewString(),
		Instrument:        instrument,
		Side:              side,
		Price:             price,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		Timestamp:         now,
		Status:            Open,
		UserID:            userID,
	}
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQuantity.IsZero()
}

// ApplyFill subtracts qty from the remaining quantity and advances status
// per the order state machine: Open/PartiallyFilled -> Filled on
// exhaustion, Open -> PartiallyFilled on a non-exhausting fill.
func (o *Order) ApplyFill(qty decimal.Decimal) {
	o.RemainingQuantity = o.RemainingQuantity.Sub(qty)
	if o.RemainingQuantity.IsZero() {
		o.Status = Filled
		return
	}
	o.Status = PartiallyFilled
}

// Validate checks the submission pre-conditions that do not depend on the
// book: positive price and quantity, non-empty identifiers.
func (o *Order) Validate() error {
	if o.Instrument == "" {
		return ErrInvalidInput
	}
	if o.UserID == "" {
		return ErrInvalidInput
	}
	if o.Price.Sign() <= 0 {
		return ErrInvalidInput
	}
	if o.InitialQuantity.Sign() <= 0 {
		return ErrInvalidInput
	}
	return nil
}
