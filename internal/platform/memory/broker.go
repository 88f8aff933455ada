package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Message is one publication recorded by Broker.
type Message struct {
	Exchange   string
	RoutingKey string
	Body       []byte
}

// Decode unmarshals the body into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Body, v)
}

// Broker records published messages in order. It serializes messages the way
// the real brokers do, so unencodable payloads fail here too.
type Broker struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{}
}

// Publish records the JSON encoding of message.
func (b *Broker) Publish(_ context.Context, exchange, routingKey string, message any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b.err
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	b.messages = append(b.messages, Message{Exchange: exchange, RoutingKey: routingKey, Body: body})
	return nil
}

// FailWith makes every following Publish return err. A nil err restores publishing.
func (b *Broker) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Messages returns a copy of everything published so far.
func (b *Broker) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// ByRoutingKey returns the messages published with key.
func (b *Broker) ByRoutingKey(key string) []Message {
	var out []Message
	for _, m := range b.Messages() {
		if m.RoutingKey == key {
			out = append(out, m)
		}
	}
	return out
}

// Close is a no-op.
func (b *Broker) Close() error {
	return nil
}
