// Package repository implements the storage layer of the worker on top of
// database/sql.  It defines sentinel error values that let the executor
// distinguish failure scenarios without inspecting driver errors itself.
package repository

import "errors"

// ErrDuplicateBooking is returned when an insert hits the unique index on
// bookings.idempotency_key.  It means an earlier delivery of the same
// intent already committed (typically a crash between commit and ack), so
// the caller should treat the attempt as already fulfilled rather than as
// a storage failure.
var ErrDuplicateBooking = errors.New("booking already committed for this intent")
