package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher writes exhausted messages to the parked (dead-letter) queue so
// they can be inspected offline instead of cycling through the work queue
// forever.  It shares the consumer's connection but uses its own channel.
type Publisher struct {
	ch    *amqp.Channel
	queue string
}

// NewPublisher opens a channel on conn and declares the durable parked
// queue.  The declare is idempotent, so multiple worker instances can
// start in any order.
func NewPublisher(conn *amqp.Connection, queueName string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("parked queue declare: %w", err)
	}
	return &Publisher{ch: ch, queue: queueName}, nil
}

// Park publishes the original message body to the parked queue.  Messages
// are marked persistent so they survive broker restarts like the work
// queue's contents do.  The caller acks the original delivery only after
// Park returns nil; on error it keeps requeueing instead, so a parking
// failure never loses the message.
func (p *Publisher) Park(ctx context.Context, body []byte) error {
	pub := amqp.Publishing{
		ContentType:  "text/plain",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish parked message: %w", err)
	}
	return nil
}

// Close releases the publisher's channel.
func (p *Publisher) Close() { _ = p.ch.Close() }
