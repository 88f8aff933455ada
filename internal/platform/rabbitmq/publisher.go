// Package rabbitmq publishes payment events to RabbitMQ exchanges.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Topology names the exchanges and queues declared on connect.
type Topology struct {
	PaymentsExchange      string
	NotificationsExchange string
	PaymentRequestsQueue  string
	PaymentResultsQueue   string
}

// Publisher implements domain.EventPublisher over a single AMQP channel.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	mu     sync.Mutex
	logger *zap.Logger
}

// Dial connects to url and declares the topology:
// a topic payments exchange, a direct notifications exchange, and the request
// and result queues bound to payment.request and payment.result.
func Dial(url string, topology Topology, logger *zap.Logger) (*Publisher, error) {
	logger = logger.With(zap.String("component", "rabbitmq"))

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, topology); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to RabbitMQ",
		zap.String("payments_exchange", topology.PaymentsExchange),
		zap.String("notifications_exchange", topology.NotificationsExchange))

	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

func declare(ch *amqp.Channel, t Topology) error {
	if err := ch.ExchangeDeclare(t.PaymentsExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", t.PaymentsExchange, err)
	}
	if err := ch.ExchangeDeclare(t.NotificationsExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", t.NotificationsExchange, err)
	}

	bindings := []struct {
		queue string
		key   string
	}{
		{t.PaymentRequestsQueue, "payment.request"},
		{t.PaymentResultsQueue, "payment.result"},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, t.PaymentsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

// Publish sends message as persistent JSON. Delivery is not confirmed.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}

	p.logger.Debug("message published",
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey))
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.logger.Warn("failed to close channel", zap.Error(err))
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
	}
	p.logger.Info("RabbitMQ connection closed")
	return nil
}
