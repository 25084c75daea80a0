package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/booking-worker/internal/model"
	"github.com/cinetick/booking-worker/internal/payment"
	"github.com/cinetick/booking-worker/internal/queue"
	"github.com/cinetick/booking-worker/internal/repository"
)

// BookingStore writes a booking and its seat link atomically.  Implemented
// by repository.BookingRepo.
type BookingStore interface {
	CreateWithSeat(ctx context.Context, b *model.Booking, seatID uint64) error
}

// Executor performs one fulfilment attempt: charge the gateway, then
// commit the booking transaction.  Each step runs under its own deadline
// so a stuck collaborator surfaces as a retryable timeout instead of
// stalling the instance forever.
type Executor struct {
	gateway        payment.Gateway
	store          BookingStore
	ticketAmount   float64
	paymentTimeout time.Duration
	storageTimeout time.Duration
}

// NewExecutor wires an executor from its collaborators.
func NewExecutor(gateway payment.Gateway, store BookingStore, ticketAmount float64, paymentTimeout, storageTimeout time.Duration) *Executor {
	return &Executor{
		gateway:        gateway,
		store:          store,
		ticketAmount:   ticketAmount,
		paymentTimeout: paymentTimeout,
		storageTimeout: storageTimeout,
	}
}

// Execute fulfils one intent.  On success the returned booking is durably
// committed together with its seat link; a booking with ID 0 means an
// earlier delivery of the same intent had already committed and this
// attempt wrote nothing.  On error nothing from this attempt is visible.
//
// The executor does not check seat availability: intents only reach the
// queue after the reservation service has locked the seat exclusively.
func (e *Executor) Execute(ctx context.Context, intent *queue.BookingIntent) (*model.Booking, error) {
	chargeCtx, cancel := context.WithTimeout(ctx, e.paymentTimeout)
	defer cancel()
	if err := e.gateway.Charge(chargeCtx, intent.UserID, e.ticketAmount); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ExecError{Kind: TimedOut, Err: err}
		}
		return nil, &ExecError{Kind: PaymentFailed, Err: err}
	}

	b := &model.Booking{
		UserID:         intent.UserID,
		ShowID:         intent.ShowID,
		Status:         model.BookingStatusConfirmed,
		TotalAmount:    e.ticketAmount,
		IdempotencyKey: intent.IdempotencyKey(),
	}
	storeCtx, cancel := context.WithTimeout(ctx, e.storageTimeout)
	defer cancel()
	err := e.store.CreateWithSeat(storeCtx, b, intent.SeatID)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, repository.ErrDuplicateBooking):
		// Crash-window redelivery: the previous attempt committed but its
		// ack never reached the broker.  Nothing left to do.
		return b, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, &ExecError{Kind: TimedOut, Err: err}
	default:
		return nil, &ExecError{Kind: StorageFailed, Err: err}
	}
}
