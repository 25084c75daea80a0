// Package queue connects the worker to the message broker: it declares the
// durable bookings queue, runs the sequential delivery loop, decodes intent
// payloads and publishes exhausted messages to the parked queue.
package queue

import (
	"fmt"
	"strconv"
	"strings"
)

// intentTag is the leading token of a booking command.  The producer also
// has a JSON event variant on other queues; this worker standardises on the
// text command and rejects anything else at the boundary.
const intentTag = "BOOK"

// BookingIntent is the unit of work taken off the queue: one seat to be
// booked for one user.  The wire format carries no show id, so ShowID is
// filled from configuration.  Raw keeps the original payload for
// diagnostics and for parking.
type BookingIntent struct {
	SeatID uint64
	UserID uint64
	ShowID uint64
	Raw    []byte
}

// IdempotencyKey derives a deterministic key for the intent.  The same
// message content always yields the same key, so a redelivered intent maps
// to the same bookings row and the same retry counter.
func (i *BookingIntent) IdempotencyKey() string {
	return fmt.Sprintf("%d:%d:%d", i.UserID, i.ShowID, i.SeatID)
}

// DecodeError reports a payload that can never become a valid intent.
// It is terminal for the message: redelivering an unparsable payload
// cannot change the outcome, so the caller discards instead of requeueing.
type DecodeError struct {
	Raw    []byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %s", e.Raw, e.Reason)
}

// DecodeIntent parses a raw message body in the canonical text format
// "BOOK <seatId> <userId>" (three space-delimited tokens).  Both ids must
// be positive integers.  defaultShowID is attached to the intent since the
// wire format does not carry a show.
func DecodeIntent(body []byte, defaultShowID uint64) (*BookingIntent, error) {
	fields := strings.Fields(strings.TrimSpace(string(body)))
	if len(fields) != 3 {
		return nil, &DecodeError{Raw: body, Reason: fmt.Sprintf("expected 3 tokens, got %d", len(fields))}
	}
	if fields[0] != intentTag {
		return nil, &DecodeError{Raw: body, Reason: fmt.Sprintf("unknown command %q", fields[0])}
	}
	seatID, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil || seatID == 0 {
		return nil, &DecodeError{Raw: body, Reason: fmt.Sprintf("seat id %q is not a positive integer", fields[1])}
	}
	userID, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil || userID == 0 {
		return nil, &DecodeError{Raw: body, Reason: fmt.Sprintf("user id %q is not a positive integer", fields[2])}
	}
	return &BookingIntent{
		SeatID: seatID,
		UserID: userID,
		ShowID: defaultShowID,
		Raw:    body,
	}, nil
}
