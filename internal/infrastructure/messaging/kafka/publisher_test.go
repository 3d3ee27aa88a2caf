package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() order.CreatedEvent {
	return order.CreatedEvent{
		OrderID:       42,
		OrderNumber:   "ORD-20260101-ABCDEF12",
		UserID:        7,
		Email:         "jane@example.com",
		TotalAmount:   60000,
		Currency:      "USD",
		PaymentMethod: "credit",
		ItemCount:     2,
		CreatedAt:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishOrderCreated(t *testing.T) {
	w := &fakeWriter{}
	p := &OrderPublisher{writer: w, topic: "orders.created", logger: logger.Discard()}

	require.NoError(t, p.PublishOrderCreated(context.Background(), sampleEvent()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var decoded order.CreatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, sampleEvent(), decoded)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishOrderCreatedWrapsWriterError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := &OrderPublisher{writer: &fakeWriter{err: boom}, topic: "orders.created", logger: logger.Discard()}

	err := p.PublishOrderCreated(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "orders.created")
}

func TestPublisherWithoutBrokersIsNoop(t *testing.T) {
	p := NewOrderPublisher(config.KafkaConfig{OrderTopic: "orders.created"}, logger.Discard())

	assert.NoError(t, p.PublishOrderCreated(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}

func TestPublisherWithBrokersBuildsWriter(t *testing.T) {
	p := NewOrderPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, OrderTopic: "orders.created"}, logger.Discard())

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "orders.created", w.Topic)
	assert.NoError(t, p.Close())
}
