// Package compliance is the pluggable policy boundary the matching engine
// calls through on every order and trade: a user-eligibility check before an
// order is accepted, a pre-trade check before a match is recorded, and a
// best-effort post-trade report. The engine only ever depends on the Gate
// interface; package kyc is one real backend, DefaultGate is the accept-all
// policy this system treats as the default.
package compliance

import (
	"context"
	"log/slog"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
)

// Gate is the compliance boundary. IsUserCompliant and PreTradeCheck are
// pure predicates with no side effects; ReportTrade is the only
// side-effecting method, and its failure never unwinds a trade that has
// already been recorded.
type Gate interface {
	// IsUserCompliant reports whether userID may submit orders at all.
	IsUserCompliant(ctx context.Context, userID string) (bool, error)
	// PreTradeCheck reports whether a trade between buyerID and sellerID
	// in instrument may proceed. Price and quantity are not passed in.
	PreTradeCheck(ctx context.Context, instrument domain.Instrument, buyerID, sellerID string) (bool, error)
	// ReportTrade notifies the compliance backend that trade was recorded.
	// Best-effort: the engine logs a failure here but does not reject or
	// unwind the trade over it.
	ReportTrade(ctx context.Context, trade *domain.Trade) error
}

// DefaultGate is the accept-all policy: any non-blank user is compliant,
// any pre-trade check with non-blank buyer and seller ids passes, and
// trade reports are only logged. This is the default policy used when no
// real compliance backend is configured.
type DefaultGate struct {
	Logger *slog.Logger
}

// NewDefaultGate returns a DefaultGate logging through logger, or
// slog.Default() if logger is nil.
func NewDefaultGate(logger *slog.Logger) *DefaultGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultGate{Logger: logger}
}

func (g *DefaultGate) IsUserCompliant(_ context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return true, nil
}

func (g *DefaultGate) PreTradeCheck(_ context.Context, _ domain.Instrument, buyerID, sellerID string) (bool, error) {
	if buyerID == "" || sellerID == "" {
		return false, nil
	}
	return true, nil
}

func (g *DefaultGate) ReportTrade(_ context.Context, trade *domain.Trade) error {
	g.Logger.Info("trade reported to compliance",
		slog.String("trade_id", trade.ID),
		slog.String("instrument", string(trade.Instrument)),
	)
	return nil
}

var _ Gate = (*DefaultGate)(nil)
