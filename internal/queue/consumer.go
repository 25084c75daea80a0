package queue

import (
	"context"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Disposition is the terminal decision for one delivered message.
type Disposition int

const (
	// Ack confirms the message: the commit succeeded (or the message was
	// parked) and the broker may delete it.
	Ack Disposition = iota
	// RejectDiscard drops the message without redelivery; used for
	// payloads that can never be processed.
	RejectDiscard
	// RejectRequeue returns the message to the queue for another attempt.
	RejectRequeue
)

// Message is one delivery handed to the handler.  The delivery handle
// itself stays inside the consumer; handlers only see the payload.
type Message struct {
	Body        []byte
	Redelivered bool
}

// HandlerFunc processes one message and returns its disposition.
type HandlerFunc func(ctx context.Context, m Message) Disposition

// Consumer owns the broker connection and the durable work queue.  One
// consumer serves one worker instance; with prefetch 1 the broker never
// hands it a second message before the first is resolved, which is what
// gives fair dispatch across competing instances.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// Connect dials the broker, opens a channel, declares the durable queue and
// applies the prefetch limit.  Any failure here is fatal to the worker: the
// caller is expected to exit non-zero and let the process supervisor
// restart it, rather than retrying in-process.
func Connect(url, queueName string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("broker dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Durable so messages survive broker restarts; declare is idempotent.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queueName}, nil
}

// Consume blocks, invoking handler once per delivered message, strictly
// sequentially.  The handler's disposition is signalled to the broker
// before the next delivery is taken; after that signal the delivery handle
// is never touched again.  Consume returns when ctx is cancelled or the
// delivery channel closes (broker restart, connection loss).
func (c *Consumer) Consume(ctx context.Context, handler HandlerFunc) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	return dispatch(ctx, msgs, handler)
}

// dispatch runs the delivery loop.  Cancellation only stops the intake of
// new deliveries; the handler runs under a detached context so a drain
// never aborts an in-flight payment or transaction mid-message.  The
// executor's own per-step timeouts still bound the handler.
func dispatch(ctx context.Context, msgs <-chan amqp.Delivery, handler HandlerFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			switch handler(context.WithoutCancel(ctx), Message{Body: d.Body, Redelivered: d.Redelivered}) {
			case Ack:
				if err := d.Ack(false); err != nil {
					log.Printf("consumer: ack failed: %v", err)
				}
			case RejectDiscard:
				if err := d.Nack(false, false); err != nil {
					log.Printf("consumer: discard nack failed: %v", err)
				}
			case RejectRequeue:
				if err := d.Nack(false, true); err != nil {
					log.Printf("consumer: requeue nack failed: %v", err)
				}
			}
		}
	}
}

// Connection exposes the underlying broker connection so the parked-queue
// publisher can share it instead of dialling again.
func (c *Consumer) Connection() *amqp.Connection { return c.conn }

// IsClosed reports whether the broker connection has been lost.
func (c *Consumer) IsClosed() bool { return c.conn.IsClosed() }

// Close shuts the channel and connection down.  Safe to call once the
// consume loop has returned.
func (c *Consumer) Close() {
	_ = c.ch.Close()
	_ = c.conn.Close()
}
