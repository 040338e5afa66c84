package matching

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/storage/memory"
)

func TestBookInsertAndBestOpposite(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	book := NewBook(store, "UST10Y")

	cheap := domain.NewOrder("UST10Y", domain.Sell, decimal.NewFromInt(99), decimal.NewFromInt(5), "bob")
	expensive := domain.NewOrder("UST10Y", domain.Sell, decimal.NewFromInt(101), decimal.NewFromInt(5), "carol")
	if err := book.Insert(ctx, expensive); err != nil {
		t.Fatal(err)
	}
	if err := book.Insert(ctx, cheap); err != nil {
		t.Fatal(err)
	}

	entries, err := book.BestOpposite(ctx, domain.Buy)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Member != cheap.ID {
		t.Fatalf("BestOpposite(Buy) should surface the cheapest ask first, got %+v", entries)
	}
}

func TestBookRemove(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	book := NewBook(store, "UST10Y")

	bid := domain.NewOrder("UST10Y", domain.Buy, decimal.NewFromInt(100), decimal.NewFromInt(5), "alice")
	if err := book.Insert(ctx, bid); err != nil {
		t.Fatal(err)
	}
	if err := book.Remove(ctx, bid); err != nil {
		t.Fatal(err)
	}
	entries, err := book.BestOpposite(ctx, domain.Sell)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty bid side after Remove, got %+v", entries)
	}
}

func TestCrosses(t *testing.T) {
	cases := []struct {
		side     domain.OrderSide
		limit    float64
		resting  float64
		expected bool
	}{
		{domain.Buy, 100, 99, true},
		{domain.Buy, 100, 100, true},
		{domain.Buy, 100, 101, false},
		{domain.Sell, 100, 101, true},
		{domain.Sell, 100, 100, true},
		{domain.Sell, 100, 99, false},
	}
	for _, tc := range cases {
		if got := Crosses(tc.side, tc.limit, tc.resting); got != tc.expected {
			t.Errorf("Crosses(%v, %v, %v) = %v, want %v", tc.side, tc.limit, tc.resting, got, tc.expected)
		}
	}
}
