package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends BookingEvents to a durable queue.  Each publish dials,
// declares the queue and closes again; booking writes are rare enough that
// holding a channel open is not worth the reconnect handling.
type Publisher struct {
	url    string
	queue  string
	logger *slog.Logger
}

// NewPublisher returns nil when url is empty.  A nil *Publisher accepts
// and drops events.
func NewPublisher(url, queue string, logger *slog.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, queue: queue, logger: logger}
}

// Publish marshals ev and publishes it persistently on the default
// exchange.  Errors are logged and returned so the caller can ignore them
// without interrupting the main request flow.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq: dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.logger.Warn("rabbitmq: queue declare failed", "queue", p.queue, "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Warn("rabbitmq: publish failed", "type", ev.Type, "err", err)
		return err
	}
	return nil
}
