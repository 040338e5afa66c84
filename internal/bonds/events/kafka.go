package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
)

// KafkaPublisher publishes trade events to a Kafka topic via
// segmentio/kafka-go. Writes run in their own goroutine per call so a
// slow or unreachable broker never delays order processing.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher returns a KafkaPublisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) PublishTrade(ctx context.Context, trade *domain.Trade) {
	body, err := marshalTradeEvent(trade)
	if err != nil {
		loggingFallback(p.logger, trade, err)
		return
	}
	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err := p.writer.WriteMessages(writeCtx, kafka.Message{
			Key:   []byte(string(trade.Instrument)),
			Value: body,
		})
		if err != nil {
			loggingFallback(p.logger, trade, err)
		}
	}()
}

// Close flushes and closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)
