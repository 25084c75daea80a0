package worker

import (
	"errors"

	"github.com/cinetick/booking-worker/internal/queue"
)

// Resolve maps the outcome of one processing attempt to its disposition:
//
//	nil                → Ack            (committed, or already committed)
//	queue.DecodeError  → RejectDiscard  (poison; redelivery cannot help)
//	anything else      → RejectRequeue  (transient until proven otherwise)
//
// Unrecognised errors requeue rather than discard: under at-least-once
// delivery, dropping work is the only unrecoverable mistake.
func Resolve(err error) queue.Disposition {
	if err == nil {
		return queue.Ack
	}
	var de *queue.DecodeError
	if errors.As(err, &de) {
		return queue.RejectDiscard
	}
	return queue.RejectRequeue
}
