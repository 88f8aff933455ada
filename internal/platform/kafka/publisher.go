// Package kafka publishes payment events to Kafka. Exchanges map to topics and
// routing keys travel as message key and header.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RoutingKeyHeader carries the routing key of every message.
const RoutingKeyHeader = "routing-key"

// Publisher implements domain.EventPublisher with an asynchronous kafka-go writer.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewPublisher creates a publisher for brokers. Topics are chosen per message.
func NewPublisher(brokers []string, logger *zap.Logger) *Publisher {
	logger = logger.With(zap.String("component", "kafka"))

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafkago.RequireAll,
		MaxAttempts:            3,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Logger:                 kafkago.LoggerFunc(func(msg string, args ...interface{}) { logger.Debug(fmt.Sprintf(msg, args...)) }),
		ErrorLogger:            kafkago.LoggerFunc(func(msg string, args ...interface{}) { logger.Error(fmt.Sprintf(msg, args...)) }),
	}

	writer.Completion = func(messages []kafkago.Message, err error) {
		for _, msg := range messages {
			if err != nil {
				logger.Error("failed to write message to Kafka",
					zap.String("topic", msg.Topic),
					zap.String("key", string(msg.Key)),
					zap.Error(err))
				continue
			}
			logger.Debug("message written to Kafka",
				zap.String("topic", msg.Topic),
				zap.String("key", string(msg.Key)))
		}
	}

	return &Publisher{writer: writer, logger: logger}
}

// Publish enqueues message on topic exchange. Write failures surface in the logs only.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, message any) error {
	msg, err := NewMessage(exchange, routingKey, message)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to produce message to Kafka: %w", err)
	}
	return nil
}

// NewMessage encodes message for topic with routingKey as key and header.
func NewMessage(topic, routingKey string, message any) (kafkago.Message, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(routingKey),
		Value: body,
		Headers: []kafkago.Header{
			{Key: RoutingKeyHeader, Value: []byte(routingKey)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: time.Now(),
	}, nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("failed to close Kafka producer", zap.Error(err))
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}
