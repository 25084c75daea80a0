package queue

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAcker stands in for the broker side of a delivery handle.
type fakeAcker struct {
	acks  int
	nacks []bool // requeue flag of each nack, in order
}

func (a *fakeAcker) Ack(tag uint64, multiple bool) error { a.acks++; return nil }

func (a *fakeAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacks = append(a.nacks, requeue)
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error { return nil }

func TestDispatchSignalsEachDisposition(t *testing.T) {
	acker := &fakeAcker{}
	msgs := make(chan amqp.Delivery, 3)
	for i := 0; i < 3; i++ {
		msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: uint64(i + 1), Body: []byte("BOOK 5 42")}
	}
	close(msgs)

	dispositions := []Disposition{Ack, RejectDiscard, RejectRequeue}
	next := 0
	err := dispatch(context.Background(), msgs, func(ctx context.Context, m Message) Disposition {
		d := dispositions[next]
		next++
		return d
	})

	require.EqualError(t, err, "deliveries channel closed")
	assert.Equal(t, 3, next, "one handler call per delivery")
	assert.Equal(t, 1, acker.acks)
	assert.Equal(t, []bool{false, true}, acker.nacks, "discard then requeue")
}

func TestDispatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msgs := make(chan amqp.Delivery) // never delivers
	err := dispatch(ctx, msgs, func(ctx context.Context, m Message) Disposition {
		t.Fatal("handler must not run after cancellation")
		return Ack
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatchDrainFinishesInFlightMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	acker := &fakeAcker{}
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: []byte("BOOK 5 42")}

	var handlerCtxErr error
	err := dispatch(ctx, msgs, func(hctx context.Context, m Message) Disposition {
		cancel() // drain begins while this message is being processed
		handlerCtxErr = hctx.Err()
		return Ack
	})

	require.ErrorIs(t, err, context.Canceled, "loop stops before taking another delivery")
	assert.NoError(t, handlerCtxErr, "the in-flight message keeps a live context")
	assert.Equal(t, 1, acker.acks, "its disposition is still signalled")
}
