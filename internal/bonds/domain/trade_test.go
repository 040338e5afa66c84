package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewTradeBuyerSellerMapping(t *testing.T) {
	buy := NewOrder("UST10Y", Buy, decimal.NewFromInt(100), decimal.NewFromInt(5), "buyer")
	sell := NewOrder("UST10Y", Sell, decimal.NewFromInt(100), decimal.NewFromInt(5), "seller")

	aggressorIsBuyer := NewTrade("UST10Y", sell.Price, decimal.NewFromInt(5), buy, sell)
	if aggressorIsBuyer.BuyerUserID != "buyer" || aggressorIsBuyer.SellerUserID != "seller" {
		t.Fatalf("buyer/seller mismatch: %+v", aggressorIsBuyer)
	}

	aggressorIsSeller := NewTrade("UST10Y", buy.Price, decimal.NewFromInt(5), sell, buy)
	if aggressorIsSeller.BuyerUserID != "buyer" || aggressorIsSeller.SellerUserID != "seller" {
		t.Fatalf("buyer/seller mismatch: %+v", aggressorIsSeller)
	}
}

func TestTradeDay(t *testing.T) {
	trade := &Trade{Timestamp: "2026-07-30T10:15:00Z"}
	if got := trade.Day(); got != "20260730" {
		t.Fatalf("Day() = %q, want 20260730", got)
	}
}

func TestTradeAmount(t *testing.T) {
	trade := &Trade{
		Price:    decimal.NewFromFloat(101.5),
		Quantity: decimal.NewFromInt(10),
	}
	want := decimal.NewFromFloat(1015)
	if !trade.Amount().Equal(want) {
		t.Fatalf("Amount() = %v, want %v", trade.Amount(), want)
	}
}
