// Package service is the facade the HTTP layer calls through: it accepts
// plain request values, builds domain types, and drives the matching
// engine and ledger. It owns no storage or matching logic of its own.
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/ledger"
	"github.com/liquidbond/matchingledger/internal/bonds/matching"
)

// Service wires the matching engine and ledger behind a caller-friendly
// surface.
type Service struct {
	engine *matching.Engine
	ledger *ledger.Ledger
}

// New returns a Service over engine and ledger.
func New(engine *matching.Engine, l *ledger.Ledger) *Service {
	return &Service{engine: engine, ledger: l}
}

// SubmitOrderRequest is the caller-facing shape of a new order.
type SubmitOrderRequest struct {
	Instrument string
	Side       string
	Price      string
	Quantity   string
	UserID     string
}

// SubmitOrderResult is the outcome of a submitted order: its resulting
// state plus every trade it produced, in execution order.
type SubmitOrderResult struct {
	Order  *domain.Order
	Trades []*domain.Trade
}

// SubmitOrder validates req, builds an Order, and routes it through the
// matching engine.
func (s *Service) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResult, error) {
	side := domain.OrderSide(req.Side)
	if side != domain.Buy && side != domain.Sell {
		return nil, fmt.Errorf("%w: side must be BUY or SELL", domain.ErrInvalidInput)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price", domain.ErrInvalidInput)
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid quantity", domain.ErrInvalidInput)
	}

	order := domain.NewOrder(domain.Instrument(req.Instrument), side, price, quantity, req.UserID)
	finalOrder, trades, err := s.engine.Submit(ctx, order)
	if err != nil {
		return nil, err
	}
	return &SubmitOrderResult{Order: finalOrder, Trades: trades}, nil
}

// QueryTradesRequest narrows a ledger query. Empty fields are
// unconstrained; MinAmount/MaxAmount of nil mean unbounded.
type QueryTradesRequest struct {
	UserID     string
	Instrument string
	StartDay   string
	EndDay     string
	MinAmount  *float64
	MaxAmount  *float64
}

// QueryTrades looks up trades matching req.
func (s *Service) QueryTrades(ctx context.Context, req QueryTradesRequest) ([]*domain.Trade, error) {
	return s.ledger.Query(ctx, ledger.QueryParams{
		UserID:     req.UserID,
		Instrument: req.Instrument,
		StartDay:   req.StartDay,
		EndDay:     req.EndDay,
		MinAmount:  req.MinAmount,
		MaxAmount:  req.MaxAmount,
	})
}
