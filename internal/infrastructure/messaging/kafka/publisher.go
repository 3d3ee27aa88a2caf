// internal/infrastructure/messaging/kafka/publisher.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher publishes order events to Kafka
type OrderPublisher struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

// NewOrderPublisher creates a publisher for the configured order topic.
// Without brokers the publisher only logs the events it is given.
func NewOrderPublisher(cfg config.KafkaConfig, logger *logrus.Logger) *OrderPublisher {
	p := &OrderPublisher{topic: cfg.OrderTopic, logger: logger}
	if len(cfg.Brokers) == 0 {
		logger.Info("no kafka brokers configured, order events will not be published")
		return p
	}

	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.OrderTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return p
}

// PublishOrderCreated writes the event keyed by order id so all events of one
// order land on the same partition.
func (p *OrderPublisher) PublishOrderCreated(ctx context.Context, event order.CreatedEvent) error {
	if p.writer == nil {
		p.logger.WithField("order_id", event.OrderID).Debug("order event dropped, publishing disabled")
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.created")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending messages
func (p *OrderPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
