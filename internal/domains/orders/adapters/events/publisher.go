// Package events publishes committed order transitions to RabbitMQ so other
// services (analytics, vendor dashboards) can react without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/societyos/laundry-api/internal/domains/orders/ports"
)

const (
	defaultExchange   = "laundry.orders"
	routingKeyChanged = "order.status.changed"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// statusChangedEvent is the wire shape of an order transition event.
type statusChangedEvent struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	ResidentID  string `json:"resident_id"`
	VendorID    string `json:"vendor_id"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
	ServiceID   *int64 `json:"service_id,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

// Publisher emits order lifecycle events on a topic exchange. A single
// channel is guarded by a mutex; amqp channels are not safe for concurrent
// publishes.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

type Option func(*Publisher)

// WithExchange overrides the topic exchange name.
func WithExchange(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.exchange = name
		}
	}
}

// NewPublisher connects to the broker and declares the topic exchange.
func NewPublisher(url string, opts ...Option) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp broker: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	p := &Publisher{conn: conn, channel: channel, exchange: defaultExchange}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	err = channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", p.exchange, err)
	}
	return p, nil
}

// PublishStatusChanged emits one transition event. The message is persistent
// so a broker restart does not drop committed transitions.
func (p *Publisher) PublishStatusChanged(ctx context.Context, change ports.StatusChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := statusChangedEvent{
		OrderID:     change.OrderID.String(),
		OrderNumber: change.OrderNumber,
		ResidentID:  change.ResidentID.String(),
		VendorID:    change.VendorID.String(),
		FromStatus:  string(change.From),
		ToStatus:    string(change.To),
		ServiceID:   change.ServiceID,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode status change event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(p.exchange, routingKeyChanged, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKeyChanged, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
