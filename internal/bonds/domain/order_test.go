package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewOrderDefaults(t *testing.T) {
	o := NewOrder("UST10Y", Buy, decimal.NewFromInt(100), decimal.NewFromInt(10), "user-1")
	if o.Status != Open {
		t.Fatalf("status = %v, want Open", o.Status)
	}
	if !o.RemainingQuantity.Equal(o.InitialQuantity) {
		t.Fatalf("remaining = %v, want %v", o.RemainingQuantity, o.InitialQuantity)
	}
	if o.ID == "" {
		t.Fatal("expected a generated ID")
	}
}

func TestOrderApplyFill(t *testing.T) {
	cases := []struct {
		name       string
		fillQty    string
		wantStatus OrderStatus
		wantFilled bool
	}{
		{"partial", "4", PartiallyFilled, false},
		{"exact", "10", Filled, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := NewOrder("UST10Y", Sell, decimal.NewFromInt(100), decimal.NewFromInt(10), "user-1")
			o.ApplyFill(decimal.RequireFromString(tc.fillQty))
			if o.Status != tc.wantStatus {
				t.Fatalf("status = %v, want %v", o.Status, tc.wantStatus)
			}
			if o.IsFilled() != tc.wantFilled {
				t.Fatalf("IsFilled = %v, want %v", o.IsFilled(), tc.wantFilled)
			}
		})
	}
}

func TestOrderValidate(t *testing.T) {
	base := func() *Order {
		return NewOrder("UST10Y", Buy, decimal.NewFromInt(100), decimal.NewFromInt(10), "user-1")
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Order)
	}{
		{"empty instrument", func(o *Order) { o.Instrument = "" }},
		{"empty user", func(o *Order) { o.UserID = "" }},
		{"zero price", func(o *Order) { o.Price = decimal.Zero }},
		{"negative price", func(o *Order) { o.Price = decimal.NewFromInt(-1) }},
		{"zero quantity", func(o *Order) { o.InitialQuantity = decimal.Zero }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := base()
			tc.mutate(o)
			if err := o.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}
