package compliance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
)

func TestDefaultGateAcceptsEverything(t *testing.T) {
	gate := NewDefaultGate(nil)
	ctx := context.Background()

	ok, err := gate.IsUserCompliant(ctx, "anyone")
	if err != nil || !ok {
		t.Fatalf("IsUserCompliant = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = gate.PreTradeCheck(ctx, "UST10Y", "buyer", "seller")
	if err != nil || !ok {
		t.Fatalf("PreTradeCheck = (%v, %v), want (true, nil)", ok, err)
	}

	trade := domain.NewTrade("UST10Y", decimal.NewFromInt(100), decimal.NewFromInt(1),
		domain.NewOrder("UST10Y", domain.Buy, decimal.NewFromInt(100), decimal.NewFromInt(1), "buyer"),
		domain.NewOrder("UST10Y", domain.Sell, decimal.NewFromInt(100), decimal.NewFromInt(1), "seller"),
	)
	if err := gate.ReportTrade(ctx, trade); err != nil {
		t.Fatalf("ReportTrade returned error: %v", err)
	}
}

func TestDefaultGateRejectsBlankIDs(t *testing.T) {
	gate := NewDefaultGate(nil)
	ctx := context.Background()

	if ok, err := gate.IsUserCompliant(ctx, ""); err != nil || ok {
		t.Fatalf("IsUserCompliant(\"\") = (%v, %v), want (false, nil)", ok, err)
	}

	cases := []struct {
		name   string
		buyer  string
		seller string
	}{
		{"blank buyer", "", "seller"},
		{"blank seller", "buyer", ""},
		{"both blank", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := gate.PreTradeCheck(ctx, "UST10Y", tc.buyer, tc.seller)
			if err != nil || ok {
				t.Fatalf("PreTradeCheck(%q, %q) = (%v, %v), want (false, nil)", tc.buyer, tc.seller, ok, err)
			}
		})
	}
}
