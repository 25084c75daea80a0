package worker

import (
	"context"
	"log"

	"github.com/cinetick/booking-worker/internal/model"
	"github.com/cinetick/booking-worker/internal/queue"
)

// Runner is the execution step of the pipeline; satisfied by *Executor.
type Runner interface {
	Execute(ctx context.Context, intent *queue.BookingIntent) (*model.Booking, error)
}

// Parker moves an exhausted message to the dead-letter queue; satisfied by
// *queue.Publisher.
type Parker interface {
	Park(ctx context.Context, body []byte) error
}

// Worker is one sequential fulfilment pipeline.  It decodes each delivery,
// runs the executor and resolves the disposition, consulting the retry
// tracker before any requeue.  Horizontal throughput comes from running
// several worker processes against the same queue, not from concurrency
// inside one instance.
type Worker struct {
	exec          Runner
	retries       RetryTracker
	parker        Parker
	defaultShowID uint64
	maxAttempts   int
}

// New wires a worker pipeline.  maxAttempts <= 0 disables parking: every
// failed execution requeues, matching the original worker's behaviour.
func New(exec Runner, retries RetryTracker, parker Parker, defaultShowID uint64, maxAttempts int) *Worker {
	return &Worker{
		exec:          exec,
		retries:       retries,
		parker:        parker,
		defaultShowID: defaultShowID,
		maxAttempts:   maxAttempts,
	}
}

// Handle processes one delivered message and returns its disposition.  It
// is the HandlerFunc passed to the queue consumer.
func (w *Worker) Handle(ctx context.Context, m queue.Message) queue.Disposition {
	intent, err := queue.DecodeIntent(m.Body, w.defaultShowID)
	if err != nil {
		log.Printf("worker: discarding poison message: %v", err)
		return queue.RejectDiscard
	}

	booking, execErr := w.exec.Execute(ctx, intent)
	disp := Resolve(execErr)

	switch disp {
	case queue.Ack:
		w.retries.Reset(ctx, intent.IdempotencyKey())
		if booking.ID != 0 {
			log.Printf("worker: ticket generated: booking_id=%d user_id=%d seat_id=%d show_id=%d",
				booking.ID, intent.UserID, intent.SeatID, intent.ShowID)
		} else {
			log.Printf("worker: intent already fulfilled, acking redelivery: user_id=%d seat_id=%d show_id=%d",
				intent.UserID, intent.SeatID, intent.ShowID)
		}
		return queue.Ack
	case queue.RejectRequeue:
		return w.requeueOrPark(ctx, m, intent, execErr)
	default:
		return disp
	}
}

// requeueOrPark decides between another delivery attempt and the parked
// queue.  The message is parked only after the publish succeeds; if the
// parked queue is unavailable the message keeps cycling, which is safe
// under at-least-once delivery.
func (w *Worker) requeueOrPark(ctx context.Context, m queue.Message, intent *queue.BookingIntent, execErr error) queue.Disposition {
	key := intent.IdempotencyKey()
	attempts := w.retries.Record(ctx, key)
	if w.maxAttempts <= 0 || attempts == 0 || attempts <= w.maxAttempts {
		log.Printf("worker: requeueing (attempt %d): %v", attempts, execErr)
		return queue.RejectRequeue
	}
	if err := w.parker.Park(ctx, m.Body); err != nil {
		log.Printf("worker: park failed, requeueing instead: %v", err)
		return queue.RejectRequeue
	}
	w.retries.Reset(ctx, key)
	log.Printf("worker: parked message after %d failed attempts: %v", attempts, execErr)
	// The copy is durable on the parked queue; drop the original delivery.
	return queue.Ack
}
