// Package events publishes trade execution notifications to downstream
// consumers. Publishing is best-effort and asynchronous: a publish failure
// is logged, never propagated back to the caller that submitted the order,
// following a domain-event-after-persistence pattern.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
)

// Publisher emits a trade execution event. Implementations must not block
// the matching engine for long; NoopPublisher and KafkaPublisher both
// return quickly or run the actual send in a separate goroutine.
type Publisher interface {
	PublishTrade(ctx context.Context, trade *domain.Trade)
}

// NoopPublisher discards every event. It is the default when no message
// broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTrade(context.Context, *domain.Trade) {}

var _ Publisher = NoopPublisher{}

// tradeEvent is the wire shape published to the trade topic.
type tradeEvent struct {
	EventType string `json:"eventType"`
	Trade     *domain.Trade `json:"trade"`
}

// marshalTradeEvent is shared by every real Publisher implementation.
func marshalTradeEvent(trade *domain.Trade) ([]byte, error) {
	return json.Marshal(tradeEvent{EventType: "TRADE_EXECUTED", Trade: trade})
}

// loggingFallback logs a publish failure without returning an error, since
// Publisher.PublishTrade has no error return: the engine never waits on
// or retries a publish.
func loggingFallback(logger *slog.Logger, trade *domain.Trade, err error) {
	logger.Warn("failed to publish trade event",
		slog.String("trade_id", trade.ID),
		slog.Any("error", err),
	)
}
