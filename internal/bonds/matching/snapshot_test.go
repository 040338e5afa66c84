package matching

import (
	"context"
	"testing"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
)

func TestSnapshotAggregatesLevels(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	submit := func(side domain.OrderSide, price, qty, user string) {
		t.Helper()
		_, _, err := e.Submit(ctx, domain.NewOrder("UST10Y", side, d(price), d(qty), user))
		if err != nil {
			t.Fatal(err)
		}
	}

	submit(domain.Buy, "99", "5", "alice")
	submit(domain.Buy, "99", "3", "bob")
	submit(domain.Buy, "98", "2", "carol")
	submit(domain.Sell, "101", "4", "dave")

	snap, err := e.Snapshot(ctx, "UST10Y")
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Bids) != 2 {
		t.Fatalf("expected 2 aggregated bid levels, got %d: %+v", len(snap.Bids), snap.Bids)
	}
	if !snap.Bids[0].Price.Equal(d("99")) {
		t.Fatalf("best bid level price = %v, want 99", snap.Bids[0].Price)
	}
	if !snap.Bids[0].Quantity.Equal(d("8")) {
		t.Fatalf("best bid level quantity = %v, want 8 (5+3)", snap.Bids[0].Quantity)
	}
	if snap.Bids[0].OrderCount != 2 {
		t.Fatalf("best bid level order count = %d, want 2", snap.Bids[0].OrderCount)
	}

	if len(snap.Asks) != 1 {
		t.Fatalf("expected 1 ask level, got %d: %+v", len(snap.Asks), snap.Asks)
	}
	if !snap.Asks[0].Price.Equal(d("101")) {
		t.Fatalf("best ask level price = %v, want 101", snap.Asks[0].Price)
	}
}

func TestSnapshotEmptyBook(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	snap, err := e.Snapshot(ctx, "UST10Y")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Bids) != 0 || len(snap.Asks) != 0 {
		t.Fatalf("expected an empty snapshot, got %+v", snap)
	}
}
