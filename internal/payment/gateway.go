// Package payment defines the payment collaborator consumed by the booking
// executor.  The worker only ships a simulated gateway; a real integration
// implements the same interface.
package payment

import (
	"context"
	"time"
)

// Gateway charges a user for a booking.  Implementations must honour the
// context deadline: the executor maps expiry to a retryable timeout.
type Gateway interface {
	Charge(ctx context.Context, userID uint64, amount float64) error
}

// SimulatedGateway stands in for the external payment provider by sleeping
// for a fixed duration, the way the original fulfilment pipeline modelled
// the bank call.  It always succeeds unless the context expires first.
type SimulatedGateway struct {
	Delay time.Duration
}

func (g *SimulatedGateway) Charge(ctx context.Context, userID uint64, amount float64) error {
	timer := time.NewTimer(g.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
