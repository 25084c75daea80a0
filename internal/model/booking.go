package model

import "time"

// Booking statuses.  The worker only ever writes CONFIRMED; the other
// values exist in the shared schema and may be produced by other services.
const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking records a committed ticket purchase for a show.  A row is
// written only inside the fulfilment transaction together with its
// seat link, so the two are never observed independently.
//
// Fields:
//
//	ID             – primary key identifier, assigned by the store.
//	UserID         – user the ticket was purchased for.
//	ShowID         – show being booked.
//	Status         – state of the booking (always CONFIRMED here).
//	TotalAmount    – total price for the booking.
//	IdempotencyKey – deterministic key derived from the intent; a unique
//	                 index on it makes redelivered intents a no-op.
//	BookingTime    – commit timestamp, assigned by the store.
type Booking struct {
	ID             uint64    // bookings.id
	UserID         uint64    // bookings.user_id
	ShowID         uint64    // bookings.show_id
	Status         string    // bookings.status
	TotalAmount    float64   // bookings.total_amount
	IdempotencyKey string    // bookings.idempotency_key
	BookingTime    time.Time // bookings.booking_time
}

// BookingSeat links a booking to a physical seat in the screen.  Each
// record represents one seat covered by the booking; the pair
// (BookingID, ScreenSeatID) is the primary key.
type BookingSeat struct {
	BookingID    uint64 // booking_seats.booking_id
	ScreenSeatID uint64 // booking_seats.screen_seat_id
}
